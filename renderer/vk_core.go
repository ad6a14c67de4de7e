package renderer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"unsafe"

	vk "github.com/goki/vulkan"
	com "renderbase/common"
	"renderbase/model"
)

const DefaultFramesInFlight = 2

var (
	_ Backend         = (*VulkanBackend)(nil)
	_ ResourceFactory = (*VulkanBackend)(nil)
)

type VulkanConfig struct {
	FramesInFlight int
	PresentMode    vk.PresentMode
	ClearColor     [4]float32
	VertShader     string // path to SPIR-V
	FragShader     string // path to SPIR-V
}

// VulkanBackend owns everything between the logical device and the DrawPipelines: swap chain, render pass,
// depth buffer, per slot command buffers, sync objects and uniform buffers. It implements Backend and
// ResourceFactory.
type VulkanBackend struct {
	// OS/Window level
	win    *com.Window
	device *com.Device
	cfg    VulkanConfig

	// Target level
	swapChain   *com.SwapChain
	depthFormat vk.Format
	depth       *com.Image

	// Drawing infrastructure level
	renderPass  vk.RenderPass
	commandPool vk.CommandPool
	vertCode    []byte
	fragCode    []byte

	// Frame level
	commandBuffers     []vk.CommandBuffer
	imageAvailableSems []vk.Semaphore
	renderFinishedSems []vk.Semaphore
	inFlightFens       []vk.Fence

	// Data level
	uniformBuffers       []*com.Buffer
	uniformBuffersMapped []unsafe.Pointer

	nextID   uint64
	teardown com.Teardown
}

// NewVulkanBackend builds the rendering infrastructure on an existing device. On failure everything created so
// far is released again.
func NewVulkanBackend(win *com.Window, device *com.Device, cfg VulkanConfig) (*VulkanBackend, error) {
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = DefaultFramesInFlight
	}
	b := &VulkanBackend{
		win:    win,
		device: device,
		cfg:    cfg,
	}
	steps := []struct {
		name string
		fn   func() error
	}{
		{"shaders", b.readShaders},
		{"swap chain", b.createSwapChain},
		{"render pass", b.createRenderPass},
		{"command pool", b.createCommandPool},
		{"depth resources", b.createDepthResources},
		{"frame buffers", b.createFrameBuffers},
		{"uniform buffers", b.createUniformBuffers},
		{"command buffers", b.createCommandBuffers},
		{"sync objects", b.createSyncObjects},
	}
	for _, s := range steps {
		if err := s.fn(); err != nil {
			b.Destroy()
			return nil, creationError(s.name, err)
		}
	}
	log.Printf("Vulkan backend ready: %d frames in flight, extent %dx%d",
		cfg.FramesInFlight, b.swapChain.Extent.Width, b.swapChain.Extent.Height)
	return b, nil
}

// Destroy waits for the device to go idle and releases everything the backend created. DrawPipelines and
// GeometryBuffers must be released before.
func (b *VulkanBackend) Destroy() {
	if err := b.device.WaitIdle(); err != nil {
		log.Printf("Failed to wait for device idle before teardown: %v", err)
	}
	b.destroySwapChainAndDerivatives()
	b.teardown.Release()
}

func (b *VulkanBackend) readShaders() error {
	var err error
	if b.vertCode, err = readShaderCode(b.cfg.VertShader); err != nil {
		return err
	}
	b.fragCode, err = readShaderCode(b.cfg.FragShader)
	return err
}

func (b *VulkanBackend) createSwapChain() error {
	sc, err := com.NewSwapChain(b.device, b.win, b.cfg.PresentMode)
	if err != nil {
		return err
	}
	b.swapChain = sc
	return nil
}

func (b *VulkanBackend) destroySwapChainAndDerivatives() {
	if b.depth != nil {
		com.DestroyImage(b.device, b.depth)
		b.depth = nil
	}
	if b.swapChain != nil {
		b.swapChain.Destroy(b.device)
		b.swapChain = nil
	}
}

func (b *VulkanBackend) createRenderPass() error {
	depthFormat, err := b.device.FindDepthFormat()
	if err != nil {
		return err
	}
	b.depthFormat = depthFormat

	colorAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         b.swapChain.Format.Format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
	colorAttachmentRef := vk.AttachmentReference{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}
	depthAttachment := vk.AttachmentDescription{
		Flags:          0,
		Format:         depthFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	depthAttachmentRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	subpass := vk.SubpassDescription{
		Flags:                   0,
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    1,
		PColorAttachments:       []vk.AttachmentReference{colorAttachmentRef},
		PDepthStencilAttachment: &depthAttachmentRef,
	}
	dependency := vk.SubpassDependency{
		SrcSubpass:      vk.SubpassExternal,
		DstSubpass:      0,
		SrcStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		DstStageMask:    vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit),
		SrcAccessMask:   0,
		DstAccessMask:   vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
		DependencyFlags: 0,
	}
	renderPassInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		PNext:           nil,
		Flags:           0,
		AttachmentCount: 2,
		PAttachments:    []vk.AttachmentDescription{colorAttachment, depthAttachment},
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}
	rp, err := com.VkCreateRenderPass(b.device.D, &renderPassInfo, nil)
	if err != nil {
		return err
	}
	b.renderPass = rp
	b.teardown.Push("render pass", func() { vk.DestroyRenderPass(b.device.D, rp, nil) })
	return nil
}

func (b *VulkanBackend) createCommandPool() error {
	pool, err := com.VKSCreateCommandPool(
		b.device.D,
		vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		*b.device.QFamilies.GraphicsFamily,
	)
	if err != nil {
		return err
	}
	b.commandPool = pool
	b.teardown.Push("command pool", func() { vk.DestroyCommandPool(b.device.D, pool, nil) })
	return nil
}

func (b *VulkanBackend) createDepthResources() error {
	img, err := com.CreateImage(
		b.device,
		b.swapChain.Extent.Width,
		b.swapChain.Extent.Height,
		b.depthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	)
	if err != nil {
		return err
	}
	b.depth = img
	return b.transitionDepthLayout(img.Handle, b.depthFormat)
}

func (b *VulkanBackend) createFrameBuffers() error {
	return b.swapChain.CreateFrameBuffers(b.device, b.renderPass, b.depth.View)
}

func (b *VulkanBackend) createUniformBuffers() error {
	uboBufSize := model.SizeOfUbo()
	n := b.cfg.FramesInFlight
	b.uniformBuffers = make([]*com.Buffer, 0, n)
	b.uniformBuffersMapped = make([]unsafe.Pointer, 0, n)

	memProps := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	for i := 0; i < n; i++ {
		buf, err := com.CreateBuffer(b.device, uboBufSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), memProps)
		if err != nil {
			return err
		}
		b.teardown.Push(fmt.Sprintf("uniform buffer %d", i), func() { com.DestroyBuffer(b.device, buf) })
		mapped, err := com.MapPersistent(b.device, buf)
		if err != nil {
			return err
		}
		b.uniformBuffers = append(b.uniformBuffers, buf)
		b.uniformBuffersMapped = append(b.uniformBuffersMapped, mapped)
	}
	log.Printf("Created %d uniform buffers of %d Byte", n, uboBufSize)
	return nil
}

func (b *VulkanBackend) createCommandBuffers() error {
	buffers, err := com.VKAllocateCommandBuffersPrimary(b.device.D, b.commandPool, uint32(b.cfg.FramesInFlight))
	if err != nil {
		return err
	}
	b.commandBuffers = buffers
	return nil
}

func (b *VulkanBackend) createSyncObjects() error {
	for i := 0; i < b.cfg.FramesInFlight; i++ {
		ias, err := com.VKSCreateSemaphore(b.device.D)
		if err != nil {
			return err
		}
		b.teardown.Push("image available semaphore", func() { vk.DestroySemaphore(b.device.D, ias, nil) })
		rfs, err := com.VKSCreateSemaphore(b.device.D)
		if err != nil {
			return err
		}
		b.teardown.Push("render finished semaphore", func() { vk.DestroySemaphore(b.device.D, rfs, nil) })
		// signalled, the first wait on every slot must not block
		fen, err := com.VKSCreateFence(b.device.D, true)
		if err != nil {
			return err
		}
		b.teardown.Push("in flight fence", func() { vk.DestroyFence(b.device.D, fen, nil) })

		b.imageAvailableSems = append(b.imageAvailableSems, ias)
		b.renderFinishedSems = append(b.renderFinishedSems, rfs)
		b.inFlightFens = append(b.inFlightFens, fen)
	}
	return nil
}

// Backend

func (b *VulkanBackend) SlotCount() int {
	return b.cfg.FramesInFlight
}

func (b *VulkanBackend) WaitForFence(slot int) error {
	return vk.Error(vk.WaitForFences(b.device.D, 1, []vk.Fence{b.inFlightFens[slot]}, vk.True, math.MaxUint64))
}

func (b *VulkanBackend) AcquireNextImage(slot int) (uint32, AcquireStatus, error) {
	var imgIdx uint32
	result := vk.AcquireNextImage(b.device.D, b.swapChain.Handle, math.MaxUint64, b.imageAvailableSems[slot], nil, &imgIdx)
	switch result {
	case vk.Success:
		return imgIdx, AcquireOK, nil
	case vk.Suboptimal:
		return imgIdx, AcquireSuboptimal, nil
	case vk.ErrorOutOfDate:
		return 0, AcquireOutOfDate, nil
	default:
		return 0, AcquireOutOfDate, fmt.Errorf("AcquireNextImage(...) result code: %d", result)
	}
}

func (b *VulkanBackend) ResetFence(slot int) error {
	return vk.Error(vk.ResetFences(b.device.D, 1, []vk.Fence{b.inFlightFens[slot]}))
}

func (b *VulkanBackend) WriteUniform(slot int, ubo model.UniformBufferObject) {
	vk.Memcopy(b.uniformBuffersMapped[slot], ubo.Bytes())
}

func (b *VulkanBackend) ResetCommandBuffer(slot int) error {
	return vk.Error(vk.ResetCommandBuffer(b.commandBuffers[slot], 0))
}

func (b *VulkanBackend) BeginFrame(slot int, image uint32) (Recorder, error) {
	if int(image) >= len(b.swapChain.FrameBuffers) {
		return nil, fmt.Errorf("image index %d out of %d frame buffers", image, len(b.swapChain.FrameBuffers))
	}
	rec, err := beginRecording(b, b.commandBuffers[slot], b.swapChain.FrameBuffers[image])
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *VulkanBackend) Submit(slot int, extra []vk.CommandBuffer) error {
	buffers := append([]vk.CommandBuffer{b.commandBuffers[slot]}, extra...)
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{b.imageAvailableSems[slot]},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   uint32(len(buffers)),
		PCommandBuffers:      buffers,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{b.renderFinishedSems[slot]},
	}
	return vk.Error(vk.QueueSubmit(b.device.GraphicsQ, 1, []vk.SubmitInfo{submitInfo}, b.inFlightFens[slot]))
}

func (b *VulkanBackend) Present(slot int, image uint32) (PresentStatus, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		PNext:              nil,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{b.renderFinishedSems[slot]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{b.swapChain.Handle},
		PImageIndices:      []uint32{image},
		PResults:           nil,
	}
	result := vk.QueuePresent(b.device.PresentQ, &presentInfo)
	switch result {
	case vk.Success:
		return PresentOK, nil
	case vk.Suboptimal:
		return PresentSuboptimal, nil
	case vk.ErrorOutOfDate:
		return PresentOutOfDate, nil
	default:
		return PresentOK, fmt.Errorf("QueuePresent(...) result code: %d", result)
	}
}

func (b *VulkanBackend) RecreateSwapChain() error {
	if b.win.Minimized {
		return &SwapchainStaleError{Reason: "window is minimized"}
	}
	if err := b.device.WaitIdle(); err != nil {
		return err
	}
	b.destroySwapChainAndDerivatives()
	err := b.createSwapChain()
	if errors.Is(err, com.ErrZeroExtent) {
		return &SwapchainStaleError{Reason: err.Error()}
	}
	if err != nil {
		return creationError("swap chain", err)
	}
	if err := b.createDepthResources(); err != nil {
		return creationError("depth resources", err)
	}
	if err := b.createFrameBuffers(); err != nil {
		return creationError("frame buffers", err)
	}
	return nil
}

func (b *VulkanBackend) Extent() vk.Extent2D {
	if b.swapChain == nil {
		return vk.Extent2D{}
	}
	return b.swapChain.Extent
}

func (b *VulkanBackend) WaitIdle() error {
	return b.device.WaitIdle()
}

func (b *VulkanBackend) RenderTarget() RenderTarget {
	buffers := make([]vk.Buffer, len(b.uniformBuffers))
	for i, ub := range b.uniformBuffers {
		buffers[i] = ub.Handle
	}
	return RenderTarget{
		RenderPass:     b.renderPass,
		UniformBuffers: buffers,
		UniformSize:    model.SizeOfUbo(),
	}
}

// Device exposes the device for overlays that record their own command buffers.
func (b *VulkanBackend) Device() *com.Device {
	return b.device
}

func readShaderCode(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader file: %w", err)
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("shader file %s: invalid SPIR-V size %d", path, len(code))
	}
	log.Printf("Read shader file (%s) of size: %dByte", path, len(code))
	return code, nil
}
