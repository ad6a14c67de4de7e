package common

import (
	vk "github.com/goki/vulkan"
)

// Utility functions providing slightly altered versions of the raw go bindings and wrapped functions. These altered
// versions of common functions should only hide very obvious default values that will not need to change most of the
// time. Each simplification function should specify the simplification it does. Names are prefixed with VKS which
// stands for (V)ul(K)an (S)implified.

// VKSCreateCommandPool implicitly instantiates the CreateInfo for the command pool based on the provided arguments.
func VKSCreateCommandPool(device vk.Device, flags vk.CommandPoolCreateFlags, queueFamilyIndex uint32) (vk.CommandPool, error) {
	poolInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		PNext:            nil,
		Flags:            flags,
		QueueFamilyIndex: queueFamilyIndex,
	}
	return VkCreateCommandPool(device, &poolInfo, nil)
}

// VKSCreateSemaphore creates a binary semaphore without flags.
func VKSCreateSemaphore(device vk.Device) (vk.Semaphore, error) {
	semCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
		PNext: nil,
		Flags: 0,
	}
	return VkCreateSemaphore(device, &semCreateInfo, nil)
}

// VKSCreateFence creates a fence, optionally already in the signalled state so the first wait on it returns.
func VKSCreateFence(device vk.Device, signalled bool) (vk.Fence, error) {
	fenCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		PNext: nil,
		Flags: 0,
	}
	if signalled {
		fenCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	return VkCreateFence(device, &fenCreateInfo, nil)
}

// VKSCreate2DImageView creates a view on the first mip level and array layer of a 2D image using the identity
// swizzle for all components.
func VKSCreate2DImageView(device vk.Device, image vk.Image, format vk.Format, aspectFlags vk.ImageAspectFlags) (vk.ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		PNext:    nil,
		Flags:    0,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspectFlags,
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	return VkCreateImageView(device, createInfo, nil)
}
