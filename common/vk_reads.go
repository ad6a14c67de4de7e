package common

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
)

// Read operations that require duplicated function calls, allocations and dereferencing. It is pulled out to
// provide a more go-lang feel and tidy the core code.

// ReadInstanceExtensionPropertyNames is a convenience method hiding the Vulkan defined []vk.ExtensionProperties
// type in favor of their respective names in order to simplify support checks to a point of string comparisons.
func ReadInstanceExtensionPropertyNames() ([]string, error) {
	extensionCount := uint32(0)
	err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &extensionCount, nil))
	if err != nil {
		return nil, fmt.Errorf("read number of InstanceExtensionProperties: %w", err)
	}
	extensionProperties := make([]vk.ExtensionProperties, extensionCount)
	err = vk.Error(vk.EnumerateInstanceExtensionProperties("", &extensionCount, extensionProperties))
	if err != nil {
		return nil, fmt.Errorf("read %d InstanceExtensionProperties: %w", extensionCount, err)
	}
	names := make([]string, len(extensionProperties))
	for i := range extensionProperties {
		extensionProperties[i].Deref()
		names[i] = vk.ToString(extensionProperties[i].ExtensionName[:])
	}
	return names, nil
}

// ReadInstanceLayerPropertyNames is the layer counterpart of ReadInstanceExtensionPropertyNames.
func ReadInstanceLayerPropertyNames() ([]string, error) {
	layerCount := uint32(0)
	err := vk.Error(vk.EnumerateInstanceLayerProperties(&layerCount, nil))
	if err != nil {
		return nil, fmt.Errorf("read number of InstanceLayerProperties: %w", err)
	}
	layers := make([]vk.LayerProperties, layerCount)
	err = vk.Error(vk.EnumerateInstanceLayerProperties(&layerCount, layers))
	if err != nil {
		return nil, fmt.Errorf("read %d InstanceLayerProperties: %w", layerCount, err)
	}
	names := make([]string, len(layers))
	for i := range layers {
		layers[i].Deref()
		names[i] = vk.ToString(layers[i].LayerName[:])
	}
	return names, nil
}

func ReadPhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var gpuCount uint32
	err := vk.Error(vk.EnumeratePhysicalDevices(instance, &gpuCount, nil))
	if err != nil {
		return nil, fmt.Errorf("read number of PhysicalDevices: %w", err)
	}
	if gpuCount == 0 {
		return nil, errors.New("there are 0 physical devices available")
	}
	physDevices := make([]vk.PhysicalDevice, gpuCount)
	err = vk.Error(vk.EnumeratePhysicalDevices(instance, &gpuCount, physDevices))
	if err != nil {
		return nil, fmt.Errorf("read %d PhysicalDevices: %w", gpuCount, err)
	}
	return physDevices, nil
}

func ReadPhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	var pdProps vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(pd, &pdProps)
	pdProps.Deref()
	return pdProps
}

func ReadPhysicalDeviceFeatures(pd vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var pdFeatures vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(pd, &pdFeatures)
	pdFeatures.Deref()
	return pdFeatures
}

func ReadQueueFamilies(pd vk.PhysicalDevice) []vk.QueueFamilyProperties {
	qFamilyCount := uint32(0)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, nil)
	qFamilyProps := make([]vk.QueueFamilyProperties, qFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &qFamilyCount, qFamilyProps)
	for i := range qFamilyProps {
		qFamilyProps[i].Deref()
		qFamilyProps[i].MinImageTransferGranularity.Deref()
	}
	return qFamilyProps
}

func ReadDeviceExtensionPropertyNames(pd vk.PhysicalDevice) ([]string, error) {
	extensionCount := uint32(0)
	err := vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, nil))
	if err != nil {
		return nil, fmt.Errorf("read number of DeviceExtensionProperties: %w", err)
	}
	extensionProperties := make([]vk.ExtensionProperties, extensionCount)
	err = vk.Error(vk.EnumerateDeviceExtensionProperties(pd, "", &extensionCount, extensionProperties))
	if err != nil {
		return nil, fmt.Errorf("read %d DeviceExtensionProperties: %w", extensionCount, err)
	}
	names := make([]string, len(extensionProperties))
	for i := range extensionProperties {
		extensionProperties[i].Deref()
		names[i] = vk.ToString(extensionProperties[i].ExtensionName[:])
	}
	return names, nil
}

func ReadSwapChainSupportDetails(pd vk.PhysicalDevice, surface vk.Surface) SwapChainDetails {
	scDetails := SwapChainDetails{}
	vk.GetPhysicalDeviceSurfaceCapabilities(pd, surface, &scDetails.capabilities)
	scDetails.capabilities.Deref()
	scDetails.capabilities.CurrentExtent.Deref()
	scDetails.capabilities.MinImageExtent.Deref()
	scDetails.capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, nil)
	scDetails.formats = make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(pd, surface, &formatCount, scDetails.formats)
	for i := range scDetails.formats {
		scDetails.formats[i].Deref()
	}

	var presentModeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, nil)
	scDetails.presentModes = make([]vk.PresentMode, presentModeCount)
	vk.GetPhysicalDeviceSurfacePresentModes(pd, surface, &presentModeCount, scDetails.presentModes)

	return scDetails
}

func ReadSwapChainImages(device vk.Device, swapChain vk.Swapchain) []vk.Image {
	var imgCount uint32
	vk.GetSwapchainImages(device, swapChain, &imgCount, nil)
	imgs := make([]vk.Image, imgCount)
	vk.GetSwapchainImages(device, swapChain, &imgCount, imgs)
	return imgs
}

func ReadDeviceMemoryProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceMemoryProperties {
	var pdMemProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &pdMemProps)
	pdMemProps.Deref()
	for i := range pdMemProps.MemoryTypes {
		pdMemProps.MemoryTypes[i].Deref()
	}
	for i := range pdMemProps.MemoryHeaps {
		pdMemProps.MemoryHeaps[i].Deref()
	}
	return pdMemProps
}

func ReadBufferMemoryRequirements(device vk.Device, b vk.Buffer) vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, b, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}

func ReadImageMemoryRequirements(device vk.Device, img vk.Image) vk.MemoryRequirements {
	var memRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(device, img, &memRequirements)
	memRequirements.Deref()
	return memRequirements
}

func ReadFormatProperties(pd vk.PhysicalDevice, format vk.Format) vk.FormatProperties {
	var fProps vk.FormatProperties
	vk.GetPhysicalDeviceFormatProperties(pd, format, &fProps)
	fProps.Deref()
	return fProps
}
