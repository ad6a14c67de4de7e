package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renderbase/model"
	"renderbase/renderer"
	"renderbase/renderer/fakegpu"
	vm "renderbase/vector_math"
)

func newPipeline(t *testing.T, gpu *fakegpu.GPU, style renderer.RasterStyle) *renderer.DrawPipeline {
	t.Helper()
	p, err := renderer.NewDrawPipeline(gpu, renderer.PipelineDesc{
		Name:   "test",
		Target: gpu.RenderTarget(),
		Slots:  gpu.SlotCount(),
		Style:  style,
	})
	require.NoError(t, err)
	return p
}

func TestPipelineStartsWithoutInstances(t *testing.T) {
	p := newPipeline(t, fakegpu.New(2, 3), renderer.Solid)
	assert.Zero(t, p.InstanceCount())
	assert.Empty(t, p.PushConstants())
	assert.Equal(t, renderer.Solid, p.Style())
}

func TestSetInstanceCountKeepsExistingPositions(t *testing.T) {
	p := newPipeline(t, fakegpu.New(2, 3), renderer.Solid)
	p.SetInstanceCount(1)
	p.SetPosition(vm.Vec3{X: 1, Y: 2, Z: 3}, 0)

	p.SetInstanceCount(3)
	require.Equal(t, 3, p.InstanceCount())
	pos, ok := p.Position(0)
	require.True(t, ok)
	assert.Equal(t, vm.Vec3{X: 1, Y: 2, Z: 3}, pos)
	for i := 1; i < 3; i++ {
		pos, ok := p.Position(i)
		require.True(t, ok)
		assert.Equal(t, vm.Vec3{}, pos, "new instance %d starts at the origin", i)
		assert.Equal(t, model.NewInstancePushConstants(vm.Vec3{}), p.PushConstants()[i])
	}
	assert.Equal(t, model.NewInstancePushConstants(vm.Vec3{X: 1, Y: 2, Z: 3}), p.PushConstants()[0])
}

func TestSetInstanceCountIsIdempotent(t *testing.T) {
	p := newPipeline(t, fakegpu.New(2, 3), renderer.Solid)
	p.SetInstanceCount(2)
	p.SetPosition(vm.Vec3{X: 5}, 1)
	before := append([]model.PushConstants(nil), p.PushConstants()...)

	p.SetInstanceCount(2)
	assert.Equal(t, before, p.PushConstants())
}

func TestSetInstanceCountTruncates(t *testing.T) {
	p := newPipeline(t, fakegpu.New(2, 3), renderer.Solid)
	p.SetInstanceCount(4)
	p.SetPosition(vm.Vec3{Y: 7}, 0)
	p.SetInstanceCount(1)
	assert.Equal(t, 1, p.InstanceCount())
	assert.Len(t, p.PushConstants(), 1)
	pos, _ := p.Position(0)
	assert.Equal(t, vm.Vec3{Y: 7}, pos)
	_, ok := p.Position(1)
	assert.False(t, ok)

	p.SetInstanceCount(-3)
	assert.Zero(t, p.InstanceCount())
}

func TestSetPositionRecomputesPushConstant(t *testing.T) {
	p := newPipeline(t, fakegpu.New(2, 3), renderer.Solid)
	p.SetInstanceCount(1)
	p.SetPosition(vm.Vec3{X: 2, Y: 2, Z: 2}, 0)

	pc := p.PushConstants()[0]
	assert.Equal(t, vm.Translation(vm.Vec3{X: 2, Y: 2, Z: 2}), pc.Model)
	assert.Equal(t, float32(2), pc.Model[3][0])
	assert.Equal(t, float32(2), pc.Model[3][1])
	assert.Equal(t, float32(2), pc.Model[3][2])
	assert.Equal(t, float32(1), pc.Model[3][3])
}

func TestSetPositionOutOfRangeIsIgnored(t *testing.T) {
	p := newPipeline(t, fakegpu.New(2, 3), renderer.Solid)
	p.SetInstanceCount(2)
	before := append([]model.PushConstants(nil), p.PushConstants()...)

	p.SetPosition(vm.Vec3{X: 9}, 2)
	p.SetPosition(vm.Vec3{X: 9}, -1)
	p.SetPosition(vm.Vec3{X: 9}, 100)

	assert.Equal(t, 2, p.InstanceCount())
	assert.Equal(t, before, p.PushConstants())
}

func TestPipelineCleanupOrder(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	p := newPipeline(t, gpu, renderer.Wireframe)
	id := p.Handles().ID
	gpu.ClearOps()

	p.Cleanup()
	p.Cleanup()

	assert.Equal(t, []fakegpu.OpKind{
		fakegpu.OpDestroySetLayout,
		fakegpu.OpDestroyPool,
		fakegpu.OpDestroyLayout,
		fakegpu.OpDestroyPipeline,
	}, gpu.Kinds())
	for _, op := range gpu.Ops {
		assert.Equal(t, id, op.ID)
	}
	assert.True(t, p.CleanedUp())
	assert.Zero(t, gpu.Live())
}

func TestPipelineCreationFailure(t *testing.T) {
	gpu := fakegpu.New(2, 3)
	gpu.FailPipeline = true
	_, err := renderer.NewDrawPipeline(gpu, renderer.PipelineDesc{Name: "broken", Target: gpu.RenderTarget(), Slots: 2})

	var rce *renderer.ResourceCreationError
	require.ErrorAs(t, err, &rce)
	assert.Equal(t, "pipeline broken", rce.Resource)
	assert.ErrorIs(t, err, fakegpu.ErrInjected)
}

func TestParseRasterStyle(t *testing.T) {
	for in, want := range map[string]renderer.RasterStyle{"": renderer.Solid, "solid": renderer.Solid, "wireframe": renderer.Wireframe} {
		got, err := renderer.ParseRasterStyle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := renderer.ParseRasterStyle("points")
	assert.Error(t, err)
	assert.Equal(t, "wireframe", renderer.Wireframe.String())
}
