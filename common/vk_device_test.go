package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestRateDevice(t *testing.T) {
	noWireframe := vk.PhysicalDeviceFeatures{}
	assert.Zero(t, rateDevice(vk.PhysicalDeviceTypeDiscreteGpu, noWireframe))

	wireframe := vk.PhysicalDeviceFeatures{FillModeNonSolid: vk.True}
	wide := vk.PhysicalDeviceFeatures{FillModeNonSolid: vk.True, WideLines: vk.True}

	discrete := rateDevice(vk.PhysicalDeviceTypeDiscreteGpu, wireframe)
	integrated := rateDevice(vk.PhysicalDeviceTypeIntegratedGpu, wide)
	cpu := rateDevice(vk.PhysicalDeviceTypeCpu, wireframe)

	assert.Greater(t, discrete, integrated)
	assert.Greater(t, integrated, cpu)
	assert.Positive(t, cpu)
	assert.Greater(t, rateDevice(vk.PhysicalDeviceTypeDiscreteGpu, wide), discrete)
}

func TestHasStencilComponent(t *testing.T) {
	assert.True(t, HasStencilComponent(vk.FormatD24UnormS8Uint))
	assert.True(t, HasStencilComponent(vk.FormatD32SfloatS8Uint))
	assert.False(t, HasStencilComponent(vk.FormatD32Sfloat))
}
