package renderer

import (
	"renderbase/model"
	vm "renderbase/vector_math"
)

// DrawPipeline is a graphics pipeline with its descriptor resources and the instance list drawn with it. Every
// instance is one position, turned into a model matrix push constant as soon as it changes.
type DrawPipeline struct {
	name          string
	style         RasterStyle
	factory       ResourceFactory
	handles       PipelineHandles
	positions     []vm.Vec3
	pushConstants []model.PushConstants
	cleaned       bool
}

func NewDrawPipeline(f ResourceFactory, desc PipelineDesc) (*DrawPipeline, error) {
	h, err := f.CreatePipeline(desc)
	if err != nil {
		return nil, creationError("pipeline "+desc.Name, err)
	}
	return &DrawPipeline{
		name:    desc.Name,
		style:   desc.Style,
		factory: f,
		handles: h,
	}, nil
}

// SetInstanceCount resizes the instance list. Existing instances keep their position, new ones start at the
// origin. Negative counts are treated as zero.
func (p *DrawPipeline) SetInstanceCount(n int) {
	if n < 0 {
		n = 0
	}
	cur := len(p.positions)
	if n <= cur {
		p.positions = p.positions[:n]
		p.pushConstants = p.pushConstants[:n]
		return
	}
	for i := cur; i < n; i++ {
		p.positions = append(p.positions, vm.Vec3{})
		p.pushConstants = append(p.pushConstants, model.NewInstancePushConstants(vm.Vec3{}))
	}
}

// SetPosition moves instance i. Indices outside [0, InstanceCount) are ignored.
func (p *DrawPipeline) SetPosition(pos vm.Vec3, i int) {
	if i < 0 || i >= len(p.positions) {
		return
	}
	p.positions[i] = pos
	p.pushConstants[i] = model.NewInstancePushConstants(pos)
}

func (p *DrawPipeline) InstanceCount() int {
	return len(p.positions)
}

// Position returns the position of instance i and false if there is no such instance.
func (p *DrawPipeline) Position(i int) (vm.Vec3, bool) {
	if i < 0 || i >= len(p.positions) {
		return vm.Vec3{}, false
	}
	return p.positions[i], true
}

// PushConstants returns the per instance blocks in instance order. The slice is owned by the pipeline.
func (p *DrawPipeline) PushConstants() []model.PushConstants {
	return p.pushConstants
}

func (p *DrawPipeline) Name() string {
	return p.name
}

func (p *DrawPipeline) Style() RasterStyle {
	return p.style
}

func (p *DrawPipeline) Handles() PipelineHandles {
	return p.handles
}

func (p *DrawPipeline) CleanedUp() bool {
	return p.cleaned
}

// Cleanup destroys the device objects. The pipeline must not be bound by any in flight frame, callers wait for
// the device to go idle first. Further calls do nothing.
func (p *DrawPipeline) Cleanup() {
	if p.cleaned {
		return
	}
	p.factory.DestroyPipeline(p.handles)
	p.handles = PipelineHandles{}
	p.cleaned = true
}
