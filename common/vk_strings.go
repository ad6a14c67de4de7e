package common

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
)

// Human readable renderings of device information for the bring-up log.

// ToStringPhysicalDeviceTable renders a device, the features the renderer cares about and its queue families as a
// small tree.
func ToStringPhysicalDeviceTable(
	pdProps vk.PhysicalDeviceProperties,
	pdFeatures vk.PhysicalDeviceFeatures,
	qFamilies []vk.QueueFamilyProperties,
) string {
	strBuilder := strings.Builder{}
	for i := range qFamilies {
		prefix := "|"
		if i == len(qFamilies)-1 {
			prefix = "|_"
		}
		strBuilder.WriteString(fmt.Sprintf("%s Qfamily[%d] %s\n", prefix, i, toStringQueueFamilyProps(qFamilies[i])))
	}
	return fmt.Sprintf(
		"%s:\n|_%s\n|_%s\n%s",
		vk.ToString(pdProps.DeviceName[:]),
		toStringPhysicalDeviceProps(pdProps),
		toStringPhysicalDeviceFeatures(pdFeatures),
		strBuilder.String(),
	)
}

func asVendorName(v uint32) string {
	// There seem to only be a handful of vendors and Ids as stated in:
	// https://www.reddit.com/r/vulkan/comments/4ta9nj/is_there_a_comprehensive_list_of_the_names_and/
	switch v {
	case 0x1002:
		return "AMD"
	case 0x1010:
		return "ImgTec"
	case 0x10DE:
		return "NVIDIA"
	case 0x13B5:
		return "ARM"
	case 0x5143:
		return "Qualcomm"
	case 0x8086:
		return "INTEL"
	case 0x10005:
		return "Mesa"
	default:
		return "unknown"
	}
}

func asDriverVersion(vendor uint32, raw uint32) string {
	if vendor == 0x10DE {
		return nvidiaVer(raw)
	}
	return vk.Version(raw).String()
}

func nvidiaVer(i uint32) string {
	return fmt.Sprintf(
		"%d.%d.%d.%d",
		(i>>22)&0x3ff,
		(i>>14)&0x0ff,
		(i>>6)&0x0ff,
		i&0x003f,
	)
}

func toStringPhysicalDeviceProps(pdProps vk.PhysicalDeviceProperties) string {
	return fmt.Sprintf("api: %s, driver: %s, vendor: %s, deviceId: %d, deviceType: %s",
		vk.Version(pdProps.ApiVersion).String(),
		asDriverVersion(pdProps.VendorID, pdProps.DriverVersion),
		asVendorName(pdProps.VendorID),
		pdProps.DeviceID,
		toStringDeviceType(pdProps.DeviceType),
	)
}

func toStringPhysicalDeviceFeatures(pdFeatures vk.PhysicalDeviceFeatures) string {
	return fmt.Sprintf("fillModeNonSolid: %t, wideLines: %t",
		pdFeatures.FillModeNonSolid == vk.True,
		pdFeatures.WideLines == vk.True,
	)
}

func toStringDeviceType(dt vk.PhysicalDeviceType) string {
	switch dt {
	case vk.PhysicalDeviceTypeOther:
		return "other"
	case vk.PhysicalDeviceTypeIntegratedGpu:
		return "integrated Gpu"
	case vk.PhysicalDeviceTypeDiscreteGpu:
		return "discrete Gpu"
	case vk.PhysicalDeviceTypeVirtualGpu:
		return "virtual Gpu"
	case vk.PhysicalDeviceTypeCpu:
		return "cpu"
	default:
		return "unknown"
	}
}

func toStringQueueFamilyProps(q vk.QueueFamilyProperties) string {
	return fmt.Sprintf("Count: %2d, Flags: %v", q.QueueCount, toStringQueueFlags(q.QueueFlags))
}

func toStringQueueFlags(bits vk.QueueFlags) []string {
	var properties []string
	flags := vk.QueueFlagBits(bits)
	if flags&vk.QueueGraphicsBit > 0 {
		properties = append(properties, "GRAPHICS")
	}
	if flags&vk.QueueComputeBit > 0 {
		properties = append(properties, "COMPUTE")
	}
	if flags&vk.QueueTransferBit > 0 {
		properties = append(properties, "TRANSFER")
	}
	if flags&vk.QueueSparseBindingBit > 0 {
		properties = append(properties, "SPARSE_BINDING")
	}
	if flags&vk.QueueProtectedBit > 0 {
		properties = append(properties, "PROTECTED")
	}
	return properties
}
