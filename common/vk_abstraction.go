package common

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// Utility functions that reduce visual clutter by abstracting some of the common default values into very obvious
// functions that should cover their respective use case most of the time. The main way typing is reduced by moving or
// defaulting parameters from 'createInfo' structs.

func VKAllocateCommandBuffersPrimary(device vk.Device, cmdPool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	cbAllocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		PNext:              nil,
		CommandPool:        cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	return VkAllocateCommandBuffers(device, &cbAllocateInfo, count)
}

// VKBeginSingleTimeCommands allocates a primary command buffer from the pool and starts recording it for a single
// submission. It is meant to be paired with VKEndSingleTimeCommands.
func VKBeginSingleTimeCommands(device vk.Device, cmdPool vk.CommandPool) (vk.CommandBuffer, error) {
	buffers, err := VKAllocateCommandBuffersPrimary(device, cmdPool, 1)
	if err != nil {
		return nil, err
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType:            vk.StructureTypeCommandBufferBeginInfo,
		PNext:            nil,
		Flags:            vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
		PInheritanceInfo: nil,
	}
	if err := vk.Error(vk.BeginCommandBuffer(buffers[0], &beginInfo)); err != nil {
		vk.FreeCommandBuffers(device, cmdPool, 1, buffers)
		return nil, err
	}
	return buffers[0], nil
}

// VKEndSingleTimeCommands ends recording, submits the buffer to the queue, waits for the queue to go idle and frees
// the buffer again.
func VKEndSingleTimeCommands(device vk.Device, cmdPool vk.CommandPool, queue vk.Queue, cmdBuf vk.CommandBuffer) error {
	buffers := []vk.CommandBuffer{cmdBuf}
	defer vk.FreeCommandBuffers(device, cmdPool, 1, buffers)

	if err := vk.Error(vk.EndCommandBuffer(cmdBuf)); err != nil {
		return fmt.Errorf("end single time command buffer: %w", err)
	}
	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		PNext:              nil,
		CommandBufferCount: 1,
		PCommandBuffers:    buffers,
	}
	if err := vk.Error(vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, nil)); err != nil {
		return fmt.Errorf("submit single time command buffer: %w", err)
	}
	return vk.Error(vk.QueueWaitIdle(queue))
}
