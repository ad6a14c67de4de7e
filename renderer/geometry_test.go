package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renderbase/model"
	"renderbase/renderer"
	"renderbase/renderer/fakegpu"
)

func TestUploadGeometry(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	g, err := renderer.UploadGeometry(gpu, model.NewTriangleMesh("triangle"))
	require.NoError(t, err)

	assert.Equal(t, uint32(3), g.IndexCount())
	assert.Equal(t, "triangle", g.Name())
	assert.Equal(t, 1, gpu.Live())
}

func TestUploadEmptyMeshFails(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	_, err := renderer.UploadGeometry(gpu, model.NewMesh("empty", nil, nil))

	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.ErrorIs(t, err, model.ErrEmptyMesh)
	assert.Empty(t, gpu.OpsOf(fakegpu.OpCreateGeometry), "nothing is allocated for an empty mesh")
}

func TestUploadFactoryFailure(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	gpu.FailGeometry = true
	_, err := renderer.UploadGeometry(gpu, model.NewCubeMesh("cube"))
	assert.ErrorIs(t, err, fakegpu.ErrInjected)
}

func TestGeometryReleaseOnce(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	g, err := renderer.UploadGeometry(gpu, model.NewCubeMesh("cube"))
	require.NoError(t, err)

	g.Release()
	g.Release()
	assert.Len(t, gpu.OpsOf(fakegpu.OpDestroyGeometry), 1)
	assert.True(t, g.Released())
	assert.Zero(t, gpu.Live())
}
