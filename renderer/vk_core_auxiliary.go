package renderer

import (
	vk "github.com/goki/vulkan"
	com "renderbase/common"
)

// Auxiliary functions tied to the backend's command pool and graphics queue. Unlike the VKS functions in
// common they assume the backend's defaults instead of abstracting the raw API.

func (b *VulkanBackend) beginSingleTimeCommands() (vk.CommandBuffer, error) {
	return com.VKBeginSingleTimeCommands(b.device.D, b.commandPool)
}

func (b *VulkanBackend) endSingleTimeCommands(cmdBuf vk.CommandBuffer) error {
	return com.VKEndSingleTimeCommands(b.device.D, b.commandPool, b.device.GraphicsQ, cmdBuf)
}

// copyBuffer records a full copy of src into dst, submits it and waits for the graphics queue to go idle.
func (b *VulkanBackend) copyBuffer(src *com.Buffer, dst *com.Buffer, s vk.DeviceSize) error {
	cmdBuf, err := b.beginSingleTimeCommands()
	if err != nil {
		return err
	}
	copyRegions := []vk.BufferCopy{
		{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      s,
		},
	}
	vk.CmdCopyBuffer(cmdBuf, src.Handle, dst.Handle, 1, copyRegions)
	return b.endSingleTimeCommands(cmdBuf)
}

// transitionDepthLayout moves a freshly created depth image into the attachment layout.
func (b *VulkanBackend) transitionDepthLayout(img vk.Image, format vk.Format) error {
	cmdBuf, err := b.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	aspectFlags := vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	if com.HasStencilComponent(format) {
		aspectFlags = vk.ImageAspectFlags(vk.ImageAspectDepthBit | vk.ImageAspectStencilBit)
	}
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		PNext:               nil,
		SrcAccessMask:       0,
		DstAccessMask:       vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
		OldLayout:           vk.ImageLayoutUndefined,
		NewLayout:           vk.ImageLayoutDepthStencilAttachmentOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	vk.CmdPipelineBarrier(
		cmdBuf,
		vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit),
		vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit),
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier},
	)
	return b.endSingleTimeCommands(cmdBuf)
}
