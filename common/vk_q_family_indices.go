package common

import (
	"errors"

	vk "github.com/goki/vulkan"
)

type QueueFamilyIndices struct {
	GraphicsFamily *uint32
	PresentFamily  *uint32
}

func findQueueFamilies(pd vk.PhysicalDevice, surf vk.Surface) (*QueueFamilyIndices, error) {
	qFamilies := ReadQueueFamilies(pd)
	return pickQueueFamilies(qFamilies, func(i uint32) bool {
		var presentSupport vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(pd, i, surf, &presentSupport)
		return presentSupport > 0
	})
}

// pickQueueFamilies selects the first graphics capable family and the first family that can present.
func pickQueueFamilies(qFamilies []vk.QueueFamilyProperties, canPresent func(uint32) bool) (*QueueFamilyIndices, error) {
	indices := &QueueFamilyIndices{}
	for i := range qFamilies {
		if indices.GraphicsFamily == nil && isBitSet(qFamilies[i], vk.QueueGraphicsBit) {
			indices.GraphicsFamily = new(uint32)
			*indices.GraphicsFamily = uint32(i)
		}
		if indices.PresentFamily == nil && canPresent(uint32(i)) {
			indices.PresentFamily = new(uint32)
			*indices.PresentFamily = uint32(i)
		}
		if indices.isAllQueuesFound() {
			break
		}
	}
	if indices.GraphicsFamily == nil {
		return nil, errors.New("unable to find graphics capable queue family")
	}
	if indices.PresentFamily == nil {
		return nil, errors.New("unable to find present capable queue family for given surface")
	}
	return indices, nil
}

func isBitSet(qFamily vk.QueueFamilyProperties, bit vk.QueueFlagBits) bool {
	return vk.QueueFlagBits(qFamily.QueueFlags)&bit > 0
}

func (q *QueueFamilyIndices) isAllQueuesFound() bool {
	return q.GraphicsFamily != nil && q.PresentFamily != nil
}

// Shared reports whether graphics and presentation happen on the same family.
func (q *QueueFamilyIndices) Shared() bool {
	return q.isAllQueuesFound() && *q.GraphicsFamily == *q.PresentFamily
}

func (q *QueueFamilyIndices) toQueueCreateInfos() ([]vk.DeviceQueueCreateInfo, error) {
	if !q.isAllQueuesFound() {
		return nil, errors.New("queue family indices incomplete")
	}
	uniqIndices := []uint32{*q.GraphicsFamily}
	if !q.Shared() {
		uniqIndices = append(uniqIndices, *q.PresentFamily)
	}
	infos := make([]vk.DeviceQueueCreateInfo, len(uniqIndices))
	for i := range uniqIndices {
		infos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			PNext:            nil,
			Flags:            0,
			QueueFamilyIndex: uniqIndices[i],
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}
	}
	return infos, nil
}
