package renderer

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"renderbase/model"
)

type AcquireStatus int

const (
	AcquireOK AcquireStatus = iota
	AcquireSuboptimal
	AcquireOutOfDate
)

type PresentStatus int

const (
	PresentOK PresentStatus = iota
	PresentSuboptimal
	PresentOutOfDate
)

// Backend is the device side of the frame loop. Slots index the per frame resources (command buffer, fence,
// semaphores, uniform buffer), images index the swap chain.
type Backend interface {
	SlotCount() int
	// WaitForFence blocks without timeout until the slot's last submission has finished.
	WaitForFence(slot int) error
	AcquireNextImage(slot int) (uint32, AcquireStatus, error)
	ResetFence(slot int) error
	WriteUniform(slot int, ubo model.UniformBufferObject)
	ResetCommandBuffer(slot int) error
	// BeginFrame starts the slot's command buffer and the render pass on the image's frame buffer.
	BeginFrame(slot int, image uint32) (Recorder, error)
	Submit(slot int, extra []vk.CommandBuffer) error
	Present(slot int, image uint32) (PresentStatus, error)
	// RecreateSwapChain waits for the device to go idle and rebuilds everything that depends on the surface size.
	// While the surface has no area it returns a *SwapchainStaleError.
	RecreateSwapChain() error
	Extent() vk.Extent2D
	WaitIdle() error
	RenderTarget() RenderTarget
}

// Recorder records the draw commands of one frame into the command buffer returned by BeginFrame.
type Recorder interface {
	BindPipeline(p *DrawPipeline, slot int)
	BindGeometry(g *GeometryBuffer)
	PushConstants(p *DrawPipeline, pc model.PushConstants)
	DrawIndexed(indexCount uint32)
	End() error
}

// ResourceFactory creates and destroys the device objects behind GeometryBuffer and DrawPipeline.
type ResourceFactory interface {
	CreateGeometry(vertices, indices []byte) (GeometryHandles, error)
	DestroyGeometry(h GeometryHandles)
	CreatePipeline(desc PipelineDesc) (PipelineHandles, error)
	// DestroyPipeline releases set layout, descriptor pool, pipeline layout and pipeline in that order.
	DestroyPipeline(h PipelineHandles)
}

// RenderTarget describes what a pipeline renders into and which per slot uniform buffers its descriptor sets
// point at. It stays valid across swap chain recreation.
type RenderTarget struct {
	RenderPass     vk.RenderPass
	UniformBuffers []vk.Buffer
	UniformSize    vk.DeviceSize
}

type RasterStyle int

const (
	Solid RasterStyle = iota
	Wireframe
)

func (s RasterStyle) String() string {
	switch s {
	case Solid:
		return "solid"
	case Wireframe:
		return "wireframe"
	default:
		return fmt.Sprintf("RasterStyle(%d)", int(s))
	}
}

func ParseRasterStyle(s string) (RasterStyle, error) {
	switch s {
	case "", "solid":
		return Solid, nil
	case "wireframe":
		return Wireframe, nil
	default:
		return Solid, fmt.Errorf("unknown raster style %q", s)
	}
}

type PipelineDesc struct {
	Name   string
	Target RenderTarget
	Slots  int
	Style  RasterStyle
}

// GeometryHandles are the device objects of an uploaded mesh. ID is assigned by the factory and unique per
// factory.
type GeometryHandles struct {
	ID           uint64
	VertexBuffer vk.Buffer
	VertexMem    vk.DeviceMemory
	IndexBuffer  vk.Buffer
	IndexMem     vk.DeviceMemory
}

// PipelineHandles are the device objects of one DrawPipeline. Sets holds one descriptor set per frame slot.
type PipelineHandles struct {
	ID        uint64
	SetLayout vk.DescriptorSetLayout
	Pool      vk.DescriptorPool
	Sets      []vk.DescriptorSet
	Layout    vk.PipelineLayout
	Pipeline  vk.Pipeline
}
