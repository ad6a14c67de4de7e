package common

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestVendorAndDriverNames(t *testing.T) {
	assert.Equal(t, "NVIDIA", asVendorName(0x10DE))
	assert.Equal(t, "unknown", asVendorName(0xBEEF))
	// 535.113.1.0 packed the NVIDIA way
	raw := uint32(535<<22 | 113<<14 | 1<<6)
	assert.Equal(t, "535.113.1.0", asDriverVersion(0x10DE, raw))
}

func TestQueueFlags(t *testing.T) {
	flags := vk.QueueFlags(vk.QueueGraphicsBit | vk.QueueTransferBit)
	assert.Equal(t, []string{"GRAPHICS", "TRANSFER"}, toStringQueueFlags(flags))
	assert.Empty(t, toStringQueueFlags(0))
}

func TestPhysicalDeviceTable(t *testing.T) {
	var props vk.PhysicalDeviceProperties
	copy(props.DeviceName[:], "Test GPU")
	props.DeviceType = vk.PhysicalDeviceTypeDiscreteGpu
	features := vk.PhysicalDeviceFeatures{FillModeNonSolid: vk.True}
	fams := []vk.QueueFamilyProperties{
		{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit), QueueCount: 16},
	}

	table := ToStringPhysicalDeviceTable(props, features, fams)
	assert.Contains(t, table, "Test GPU:")
	assert.Contains(t, table, "discrete Gpu")
	assert.Contains(t, table, "fillModeNonSolid: true, wideLines: false")
	assert.Contains(t, table, "|_ Qfamily[0] Count: 16, Flags: [GRAPHICS]")
}
