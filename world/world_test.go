package world

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renderbase/config"
	"renderbase/ecs"
	"renderbase/material"
	"renderbase/model"
	"renderbase/renderer"
	"renderbase/renderer/fakegpu"
	vm "renderbase/vector_math"
)

func newWorld(t *testing.T, objs []config.Object, lib material.Library) (*World, *fakegpu.GPU) {
	t.Helper()
	gpu := fakegpu.New(2, 3)
	w := New(ecs.NewStore())
	require.NoError(t, w.Init(gpu, gpu.RenderTarget(), gpu.SlotCount(), objs, lib))
	return w, gpu
}

func TestInitBuildsConfiguredObjectsAndRay(t *testing.T) {
	w, gpu := newWorld(t, config.DefaultObjects(), material.Library{})

	rs := w.Renderables()
	require.Len(t, rs, 3)
	for _, r := range rs {
		assert.True(t, r.Drawable())
	}
	assert.Equal(t, 6, gpu.Live(), "one geometry and one pipeline per entity")

	grid, err := w.Find("grid")
	require.NoError(t, err)
	assert.Equal(t, renderer.Wireframe, grid.Pipeline.Style())
	ps, err := w.Positions("grid")
	require.NoError(t, err)
	assert.Equal(t, []vm.Vec3{{Y: -1}}, ps)

	ray, err := w.Find(RayName)
	require.NoError(t, err)
	assert.Zero(t, ray.Pipeline.InstanceCount())
	assert.Equal(t, renderer.Wireframe, ray.Pipeline.Style())
	assert.Equal(t, uint32(3), ray.Geometry.IndexCount())
}

func TestFindUnknown(t *testing.T) {
	w, _ := newWorld(t, nil, material.Library{})
	_, err := w.Find("teapot")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddRayPlacesInstanceInFrontOfCamera(t *testing.T) {
	w, _ := newWorld(t, nil, material.Library{})
	cam := model.NewCamera(model.DefaultCameraConfig(), 800, 600)

	require.NoError(t, w.AddRay(cam))
	require.NoError(t, w.AddRay(cam))

	ps, err := w.Positions(RayName)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	want := cam.Position().Add(cam.Front().ScalarMul(3))
	for _, p := range ps {
		assert.True(t, p.ApproxEqual(want, 1e-5), "ray at %v, want %v", p, want)
	}

	ray, err := w.Find(RayName)
	require.NoError(t, err)
	assert.Equal(t, model.NewInstancePushConstants(ps[1]), ray.Pipeline.PushConstants()[1])
}

func TestMaterialTintsMesh(t *testing.T) {
	lib, err := material.NewLibrary(material.Material{Name: "Stone", Color: material.Color{R: 0.5, G: 0.5, B: 0.5}})
	require.NoError(t, err)
	objs := []config.Object{{Name: "block", Mesh: config.MeshCube, Material: "Stone"}}
	_, gpu := newWorld(t, objs, lib)
	assert.Len(t, gpu.OpsOf(fakegpu.OpCreateGeometry), 2)

	objs[0].Material = "Lava"
	w := New(ecs.NewStore())
	err = w.Init(gpu, gpu.RenderTarget(), gpu.SlotCount(), objs, lib)
	assert.ErrorContains(t, err, "Lava")
}

func TestInitFailureReleasesEverything(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	w := New(ecs.NewStore())
	objs := []config.Object{
		{Name: "cube", Mesh: config.MeshCube},
		{Name: "missing", Mesh: filepath.Join(t.TempDir(), "missing.stl")},
	}
	err := w.Init(gpu, gpu.RenderTarget(), gpu.SlotCount(), objs, material.Library{})
	require.Error(t, err)
	assert.Zero(t, gpu.Live())
}

func TestReservedRayName(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	w := New(ecs.NewStore())
	err := w.Init(gpu, gpu.RenderTarget(), gpu.SlotCount(), []config.Object{{Name: RayName, Mesh: config.MeshRay}}, material.Library{})
	assert.Error(t, err)
}

func TestSTLObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wedge.stl")
	require.NoError(t, os.WriteFile(path, singleFacetSTL(), 0o644))

	w, _ := newWorld(t, []config.Object{{Name: "wedge", Mesh: path, Positions: [][3]float32{{1, 2, 3}}}}, material.Library{})
	r, err := w.Find("wedge")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), r.Geometry.IndexCount())
	assert.Equal(t, 1, r.Pipeline.InstanceCount())
}

func TestOBJObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Teapot.obj")
	src := "v -1 0 0\nv 1 0 0\nv 1 4 0\nv -1 4 0\nf 1 2 3 4\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	w, _ := newWorld(t, []config.Object{{Name: "teapot", Mesh: path, Positions: [][3]float32{{0, 0, 0}}}}, material.Library{})
	r, err := w.Find("teapot")
	require.NoError(t, err)
	assert.Equal(t, uint32(6), r.Geometry.IndexCount())
}

func TestDestroyReleasesAll(t *testing.T) {
	w, gpu := newWorld(t, config.DefaultObjects(), material.Library{})
	w.Destroy()
	assert.Zero(t, gpu.Live())
	for _, r := range w.Renderables() {
		assert.False(t, r.Drawable())
	}
	w.Destroy()
	assert.Zero(t, gpu.Live())
}

func singleFacetSTL() []byte {
	b := make([]byte, 80)
	b = binary.LittleEndian.AppendUint32(b, 1)
	for _, f := range []float32{0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0} {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return append(b, 0, 0)
}
