package renderer

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"renderbase/model"
)

// vkRecorder records into one frame slot's command buffer. The render pass is already begun, viewport and
// scissor cover the whole swap chain extent.
type vkRecorder struct {
	buffer vk.CommandBuffer
}

func beginRecording(b *VulkanBackend, buffer vk.CommandBuffer, fb vk.Framebuffer) (*vkRecorder, error) {
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            0,
		PInheritanceInfo: nil,
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffer, &beginInfo)); err != nil {
		return nil, fmt.Errorf("begin command buffer: %w", err)
	}

	extent := b.swapChain.Extent
	renderArea := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	clearValues := []vk.ClearValue{
		vk.NewClearValue(b.cfg.ClearColor[:]),
		vk.NewClearDepthStencil(1, 0),
	}
	renderPassInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		PNext:           nil,
		RenderPass:      b.renderPass,
		Framebuffer:     fb,
		RenderArea:      renderArea,
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(buffer, &renderPassInfo, vk.SubpassContentsInline)

	viewport := []vk.Viewport{
		{
			X:        0,
			Y:        0,
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1.0,
		},
	}
	vk.CmdSetViewport(buffer, 0, 1, viewport)
	vk.CmdSetScissor(buffer, 0, 1, []vk.Rect2D{renderArea})
	return &vkRecorder{buffer: buffer}, nil
}

func (r *vkRecorder) BindPipeline(p *DrawPipeline, slot int) {
	h := p.Handles()
	vk.CmdBindPipeline(r.buffer, vk.PipelineBindPointGraphics, h.Pipeline)
	vk.CmdBindDescriptorSets(r.buffer, vk.PipelineBindPointGraphics, h.Layout, 0, 1, []vk.DescriptorSet{h.Sets[slot]}, 0, nil)
}

func (r *vkRecorder) BindGeometry(g *GeometryBuffer) {
	h := g.Handles()
	vertBuffers := []vk.Buffer{h.VertexBuffer}
	offsets := []vk.DeviceSize{0}
	vk.CmdBindVertexBuffers(r.buffer, 0, uint32(len(vertBuffers)), vertBuffers, offsets)
	vk.CmdBindIndexBuffer(r.buffer, h.IndexBuffer, 0, vk.IndexTypeUint16)
}

func (r *vkRecorder) PushConstants(p *DrawPipeline, pc model.PushConstants) {
	vk.CmdPushConstants(r.buffer, p.Handles().Layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, model.PushConstantsSize(), pc.Pointer())
}

func (r *vkRecorder) DrawIndexed(indexCount uint32) {
	vk.CmdDrawIndexed(r.buffer, indexCount, 1, 0, 0, 0)
}

func (r *vkRecorder) End() error {
	vk.CmdEndRenderPass(r.buffer)
	return vk.Error(vk.EndCommandBuffer(r.buffer))
}
