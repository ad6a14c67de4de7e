package material

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vm "renderbase/vector_math"
)

const stoneJSON = `{
	"Stone":  {"Name": "Stone",  "Color": {"r": 0.5, "g": 0.5, "b": 0.55}},
	"Grass":  {"Name": "Grass",  "Color": {"r": 0.1, "g": 0.8, "b": 0.2}},
	"Copper": {"Name": "Copper", "Color": {"r": 0.72, "g": 0.45, "b": 0.2}}
}`

func TestParseObjectKeepsOrder(t *testing.T) {
	lib, err := Parse([]byte(stoneJSON))
	require.NoError(t, err)
	require.Equal(t, 3, lib.Len())

	var names []string
	for _, m := range lib.Materials() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Stone", "Grass", "Copper"}, names)

	grass, ok := lib.Lookup("Grass")
	require.True(t, ok)
	assert.Equal(t, vm.Vec3{X: 0.1, Y: 0.8, Z: 0.2}, grass.Color.Vec3())
}

func TestParseArray(t *testing.T) {
	lib, err := Parse([]byte(`[{"Name": "Sand", "Color": {"r": 1, "g": 0.9, "b": 0.6}}]`))
	require.NoError(t, err)
	sand, ok := lib.Lookup("Sand")
	require.True(t, ok)
	assert.Equal(t, float32(0.9), sand.Color.G)
	_, ok = lib.Lookup("Stone")
	assert.False(t, ok)
}

func TestParseRejectsBrokenDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "  ",
		"scalar":    "42",
		"truncated": `{"Stone": {"Name": "Stone"`,
		"unnamed":   `[{"Color": {"r": 1}}]`,
		"duplicate": `[{"Name": "A"}, {"Name": "A"}]`,
		"bad color": `[{"Name": "A", "Color": {"r": "red"}}]`,
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stone.json")
	require.NoError(t, os.WriteFile(path, []byte(stoneJSON), 0o644))

	lib, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, lib.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMaterialString(t *testing.T) {
	m := Material{Name: "Stone", Color: Color{R: 0.5, G: 0.25, B: 1}}
	assert.Equal(t, "Stone: 0.5, 0.25, 1", m.String())
}
