// Package fakegpu is a recording stand in for the Vulkan backend. It implements renderer.Backend and
// renderer.ResourceFactory without touching a device and keeps a log of every call, so frame protocol and
// resource lifetimes can be checked in tests.
package fakegpu

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"renderbase/model"
	"renderbase/renderer"
)

type OpKind string

const (
	OpWait             OpKind = "wait"
	OpAcquire          OpKind = "acquire"
	OpResetFence       OpKind = "reset-fence"
	OpWriteUniform     OpKind = "write-uniform"
	OpResetCmd         OpKind = "reset-cmd"
	OpBegin            OpKind = "begin"
	OpBindPipeline     OpKind = "bind-pipeline"
	OpBindGeometry     OpKind = "bind-geometry"
	OpPush             OpKind = "push"
	OpDraw             OpKind = "draw"
	OpEnd              OpKind = "end"
	OpSubmit           OpKind = "submit"
	OpPresent          OpKind = "present"
	OpRecreate         OpKind = "recreate"
	OpCreateGeometry   OpKind = "create-geometry"
	OpDestroyGeometry  OpKind = "destroy-geometry"
	OpCreatePipeline   OpKind = "create-pipeline"
	OpDestroySetLayout OpKind = "destroy-set-layout"
	OpDestroyPool      OpKind = "destroy-pool"
	OpDestroyLayout    OpKind = "destroy-pipeline-layout"
	OpDestroyPipeline  OpKind = "destroy-pipeline"
)

// Op is one logged call. Only the fields meaningful for the kind are set.
type Op struct {
	Kind       OpKind
	Slot       int
	Image      uint32
	ID         uint64 // geometry or pipeline
	IndexCount uint32
	Push       model.PushConstants
	UBO        model.UniformBufferObject
	Extra      int // additional command buffers on submit
}

var ErrInjected = errors.New("injected failure")

// GPU is not safe for concurrent use.
type GPU struct {
	Ops []Op

	// AcquireScript and PresentScript are consumed front to back, an empty script yields OK.
	AcquireScript []renderer.AcquireStatus
	PresentScript []renderer.PresentStatus
	// StaleRecreates makes the next n recreations fail with a *renderer.SwapchainStaleError.
	StaleRecreates int

	FailGeometry bool
	FailPipeline bool

	slots      int
	images     uint32
	nextImage  uint32
	extent     vk.Extent2D
	pending    *vk.Extent2D
	nextID     uint64
	fenceReset []bool
	live       map[uint64]bool
}

func New(slots int, images uint32) *GPU {
	return &GPU{
		slots:      slots,
		images:     images,
		extent:     vk.Extent2D{Width: 800, Height: 600},
		fenceReset: make([]bool, slots),
		live:       make(map[uint64]bool),
	}
}

// SetExtent changes the surface size. Extent reports it after the next successful recreation.
func (g *GPU) SetExtent(w, h uint32) {
	g.pending = &vk.Extent2D{Width: w, Height: h}
}

func (g *GPU) log(op Op) {
	g.Ops = append(g.Ops, op)
}

// Kinds returns the logged op kinds in call order.
func (g *GPU) Kinds() []OpKind {
	kinds := make([]OpKind, len(g.Ops))
	for i, op := range g.Ops {
		kinds[i] = op.Kind
	}
	return kinds
}

// OpsOf filters the log by kind.
func (g *GPU) OpsOf(kind OpKind) []Op {
	var ops []Op
	for _, op := range g.Ops {
		if op.Kind == kind {
			ops = append(ops, op)
		}
	}
	return ops
}

func (g *GPU) ClearOps() {
	g.Ops = nil
}

// Live reports the number of created but not yet destroyed geometries and pipelines.
func (g *GPU) Live() int {
	return len(g.live)
}

// FenceSignalled reports whether the slot's fence was not reset since the last submit.
func (g *GPU) FenceSignalled(slot int) bool {
	return !g.fenceReset[slot]
}

// Backend

func (g *GPU) SlotCount() int {
	return g.slots
}

func (g *GPU) WaitForFence(slot int) error {
	if g.fenceReset[slot] {
		// an unsignalled fence without pending submission would block forever
		return fmt.Errorf("wait on reset fence of slot %d would never return", slot)
	}
	g.log(Op{Kind: OpWait, Slot: slot})
	return nil
}

func (g *GPU) AcquireNextImage(slot int) (uint32, renderer.AcquireStatus, error) {
	status := renderer.AcquireOK
	if len(g.AcquireScript) > 0 {
		status = g.AcquireScript[0]
		g.AcquireScript = g.AcquireScript[1:]
	}
	img := g.nextImage
	if status != renderer.AcquireOutOfDate {
		g.nextImage = (g.nextImage + 1) % g.images
	}
	g.log(Op{Kind: OpAcquire, Slot: slot, Image: img})
	return img, status, nil
}

func (g *GPU) ResetFence(slot int) error {
	g.fenceReset[slot] = true
	g.log(Op{Kind: OpResetFence, Slot: slot})
	return nil
}

func (g *GPU) WriteUniform(slot int, ubo model.UniformBufferObject) {
	g.log(Op{Kind: OpWriteUniform, Slot: slot, UBO: ubo})
}

func (g *GPU) ResetCommandBuffer(slot int) error {
	g.log(Op{Kind: OpResetCmd, Slot: slot})
	return nil
}

func (g *GPU) BeginFrame(slot int, image uint32) (renderer.Recorder, error) {
	if image >= g.images {
		return nil, fmt.Errorf("image index %d out of %d", image, g.images)
	}
	g.log(Op{Kind: OpBegin, Slot: slot, Image: image})
	return &recorder{gpu: g, slot: slot}, nil
}

func (g *GPU) Submit(slot int, extra []vk.CommandBuffer) error {
	// the fake device finishes work instantly and signals the fence
	g.fenceReset[slot] = false
	g.log(Op{Kind: OpSubmit, Slot: slot, Extra: len(extra)})
	return nil
}

func (g *GPU) Present(slot int, image uint32) (renderer.PresentStatus, error) {
	status := renderer.PresentOK
	if len(g.PresentScript) > 0 {
		status = g.PresentScript[0]
		g.PresentScript = g.PresentScript[1:]
	}
	g.log(Op{Kind: OpPresent, Slot: slot, Image: image})
	return status, nil
}

func (g *GPU) RecreateSwapChain() error {
	g.log(Op{Kind: OpRecreate})
	if g.StaleRecreates > 0 {
		g.StaleRecreates--
		return &renderer.SwapchainStaleError{Reason: "surface extent is 0x0"}
	}
	if g.pending != nil {
		g.extent = *g.pending
		g.pending = nil
	}
	g.nextImage = 0
	return nil
}

func (g *GPU) Extent() vk.Extent2D {
	return g.extent
}

func (g *GPU) WaitIdle() error {
	return nil
}

func (g *GPU) RenderTarget() renderer.RenderTarget {
	return renderer.RenderTarget{
		UniformBuffers: make([]vk.Buffer, g.slots),
		UniformSize:    model.SizeOfUbo(),
	}
}

// ResourceFactory

func (g *GPU) CreateGeometry(vertices, indices []byte) (renderer.GeometryHandles, error) {
	if g.FailGeometry {
		return renderer.GeometryHandles{}, ErrInjected
	}
	g.nextID++
	g.live[g.nextID] = true
	g.log(Op{Kind: OpCreateGeometry, ID: g.nextID})
	return renderer.GeometryHandles{ID: g.nextID}, nil
}

func (g *GPU) DestroyGeometry(h renderer.GeometryHandles) {
	delete(g.live, h.ID)
	g.log(Op{Kind: OpDestroyGeometry, ID: h.ID})
}

func (g *GPU) CreatePipeline(desc renderer.PipelineDesc) (renderer.PipelineHandles, error) {
	if g.FailPipeline {
		return renderer.PipelineHandles{}, ErrInjected
	}
	if desc.Slots != len(desc.Target.UniformBuffers) {
		return renderer.PipelineHandles{}, fmt.Errorf("%d slots for %d uniform buffers", desc.Slots, len(desc.Target.UniformBuffers))
	}
	g.nextID++
	g.live[g.nextID] = true
	g.log(Op{Kind: OpCreatePipeline, ID: g.nextID})
	return renderer.PipelineHandles{ID: g.nextID, Sets: make([]vk.DescriptorSet, desc.Slots)}, nil
}

func (g *GPU) DestroyPipeline(h renderer.PipelineHandles) {
	delete(g.live, h.ID)
	g.log(Op{Kind: OpDestroySetLayout, ID: h.ID})
	g.log(Op{Kind: OpDestroyPool, ID: h.ID})
	g.log(Op{Kind: OpDestroyLayout, ID: h.ID})
	g.log(Op{Kind: OpDestroyPipeline, ID: h.ID})
}

type recorder struct {
	gpu  *GPU
	slot int
}

func (r *recorder) BindPipeline(p *renderer.DrawPipeline, slot int) {
	r.gpu.log(Op{Kind: OpBindPipeline, Slot: slot, ID: p.Handles().ID})
}

func (r *recorder) BindGeometry(geo *renderer.GeometryBuffer) {
	r.gpu.log(Op{Kind: OpBindGeometry, Slot: r.slot, ID: geo.Handles().ID})
}

func (r *recorder) PushConstants(p *renderer.DrawPipeline, pc model.PushConstants) {
	r.gpu.log(Op{Kind: OpPush, Slot: r.slot, ID: p.Handles().ID, Push: pc})
}

func (r *recorder) DrawIndexed(indexCount uint32) {
	r.gpu.log(Op{Kind: OpDraw, Slot: r.slot, IndexCount: indexCount})
}

func (r *recorder) End() error {
	r.gpu.log(Op{Kind: OpEnd, Slot: r.slot})
	return nil
}

var (
	_ renderer.Backend         = (*GPU)(nil)
	_ renderer.ResourceFactory = (*GPU)(nil)
)
