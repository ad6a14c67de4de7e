package obj

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vm "renderbase/vector_math"
)

const quad = `# unit quad
o quad
v 0 0 0
v 2 0 0
v 2 2 0
v 0 2 0
vn 0 0 1
usemtl none
f 1//1 2//1 3//1 4//1
`

func TestDecodeTriangulatesAndNormalizes(t *testing.T) {
	m, err := Decode("quad", strings.NewReader(quad))
	require.NoError(t, err)

	require.Len(t, m.Vertices, 6, "a quad is two triangles with their own vertices")
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5}, m.Indices)

	// farthest vertex (2, 2, 0) ends up at distance 1
	far := m.Vertices[2].Pos
	assert.InDelta(t, 1, far.Len(), 1e-6)
	assert.True(t, far.ApproxEqual(vm.Vec3{X: 0.70710677, Y: 0.70710677}, 1e-6))
	assert.Equal(t, vm.Vec3{}, m.Vertices[0].Pos)

	for _, v := range m.Vertices {
		assert.Equal(t, vm.Vec3{X: 0.5, Y: 0.5, Z: 1}, v.Color)
	}
	// fan order: (1 2 3) (1 3 4)
	assert.Equal(t, m.Vertices[0].Pos, m.Vertices[3].Pos)
	assert.Equal(t, m.Vertices[2].Pos, m.Vertices[4].Pos)
}

func TestDecodeCornersWithoutNormalsAreWhite(t *testing.T) {
	src := "v 1 0 0\nv 0 1 0\nv 0 0 1\nvt 0 0\nf 1/1 2/1 3/1\n"
	m, err := Decode("tri", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, m.Vertices, 3)
	for _, v := range m.Vertices {
		assert.Equal(t, vm.Vec3{X: 1, Y: 1, Z: 1}, v.Color)
	}
}

func TestDecodeNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := Decode("tri", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, vm.Vec3{X: 1}, m.Vertices[1].Pos)
	assert.Equal(t, vm.Vec3{Y: 1}, m.Vertices[2].Pos)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"index past end", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"short vertex", "v 0 0\n"},
		{"bad number", "v 0 x 0\n"},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("bad", strings.NewReader(tt.src))
			assert.ErrorContains(t, err, "line ")
		})
	}

	_, err := Decode("empty", strings.NewReader("v 0 0 0\n"))
	assert.ErrorIs(t, err, ErrNoFaces)
}

func TestDecodeTooLarge(t *testing.T) {
	var b strings.Builder
	b.WriteString("v 0 0 0\nv 1 0 0\nv 0 1 0\n")
	// 21846 triangles need 65538 vertices
	for i := 0; i < 21846; i++ {
		b.WriteString("f 1 2 3\n")
	}
	_, err := Decode("big", strings.NewReader(b.String()))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Teapot.obj")
	require.NoError(t, os.WriteFile(path, []byte(quad), 0o644))

	m, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Teapot", m.Name)
	assert.NoError(t, m.Validate())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
}
