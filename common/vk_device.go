package common

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
)

var ValidationLayers = []string{
	"VK_LAYER_KHRONOS_validation",
}

var DeviceExtensions = []string{
	"VK_KHR_swapchain",
}

// Device represents the interfacing objects between the SDL window, the Hardware running Vulkan
// and the rest of the rendering engine. Its main purpose is to encapsulate the corresponding objects
// to make the initialization and teardown of a given application neater.
type Device struct {
	PD            vk.PhysicalDevice
	PdProps       vk.PhysicalDeviceProperties
	PdMemoryProps vk.PhysicalDeviceMemoryProperties
	QFamilies     QueueFamilyIndices

	// Optional features that were found and enabled on D
	WideLines bool

	D         vk.Device
	GraphicsQ vk.Queue
	PresentQ  vk.Queue
}

func NewDevice(w *Window, validation bool) (*Device, error) {
	dc := &Device{}
	if err := dc.selectPhysicalDevice(w.Inst, w.Surf); err != nil {
		return nil, err
	}
	if err := dc.createLogicalDevice(validation); err != nil {
		return nil, err
	}
	return dc, nil
}

// Destroy all objects created by itself. It does not destroy the window provided for instantiation.
func (dc *Device) Destroy() {
	vk.DestroyDevice(dc.D, nil)
}

func (dc *Device) WaitIdle() error {
	return vk.Error(vk.DeviceWaitIdle(dc.D))
}

func (dc *Device) selectPhysicalDevice(in vk.Instance, su vk.Surface) error {
	availableDevices, err := ReadPhysicalDevices(in)
	if err != nil {
		return err
	}
	var pd vk.PhysicalDevice
	bestScore := 0
	for i := range availableDevices {
		score := scoreDevice(availableDevices[i], su)
		if score > bestScore {
			pd = availableDevices[i]
			bestScore = score
		}
	}
	if pd == nil {
		return errors.New("no suitable physical device (GPU) found")
	}
	dc.PD = pd

	// Also set related member variables for dc.PD as they are needed later
	qf, err := findQueueFamilies(dc.PD, su)
	if err != nil {
		return fmt.Errorf("read queue families from selected device: %w", err)
	}
	dc.QFamilies = *qf
	dc.PdProps = ReadPhysicalDeviceProperties(dc.PD)
	dc.PdProps.Limits.Deref()
	dc.PdMemoryProps = ReadDeviceMemoryProperties(dc.PD)
	dc.WideLines = ReadPhysicalDeviceFeatures(dc.PD).WideLines == vk.True
	log.Printf("Selected device %s (score %d, wide lines: %t)", vk.ToString(dc.PdProps.DeviceName[:]), bestScore, dc.WideLines)
	return nil
}

// scoreDevice returns 0 for devices that can not run the renderer and a positive score otherwise.
func scoreDevice(pd vk.PhysicalDevice, su vk.Surface) int {
	pdProps := ReadPhysicalDeviceProperties(pd)
	pdFeatures := ReadPhysicalDeviceFeatures(pd)
	pdQueueFams := ReadQueueFamilies(pd)

	log.Printf("Physical device\n%s", ToStringPhysicalDeviceTable(pdProps, pdFeatures, pdQueueFams))

	indices, err := findQueueFamilies(pd, su)
	if err != nil {
		log.Printf("Failed to get required queue families: %s", err)
		return 0
	}
	extensionsSupported := checkDeviceExtensionSupport(pd, DeviceExtensions)
	isSwapChainAdequate := false
	if extensionsSupported {
		isSwapChainAdequate = checkSwapChainAdequacy(pd, su)
	}
	if !indices.isAllQueuesFound() || !extensionsSupported || !isSwapChainAdequate {
		return 0
	}
	return rateDevice(pdProps.DeviceType, pdFeatures)
}

// rateDevice scores device type and features. Wireframe rendering needs fillModeNonSolid, everything else only
// adds to the score.
func rateDevice(deviceType vk.PhysicalDeviceType, features vk.PhysicalDeviceFeatures) int {
	if features.FillModeNonSolid != vk.True {
		return 0
	}
	score := 1
	switch deviceType {
	case vk.PhysicalDeviceTypeDiscreteGpu:
		score += 1000
	case vk.PhysicalDeviceTypeIntegratedGpu:
		score += 100
	case vk.PhysicalDeviceTypeVirtualGpu:
		score += 10
	}
	if features.WideLines == vk.True {
		score += 50
	}
	return score
}

func (dc *Device) createLogicalDevice(validation bool) error {
	queueInfos, err := dc.QFamilies.toQueueCreateInfos()
	if err != nil {
		return err
	}
	deviceFeatures := vk.PhysicalDeviceFeatures{
		FillModeNonSolid: vk.True,
	}
	if dc.WideLines {
		deviceFeatures.WideLines = vk.True
	}
	deviceCreatInfo := &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       0,
		PpEnabledLayerNames:     nil,
		EnabledExtensionCount:   uint32(len(DeviceExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(DeviceExtensions),
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
	}
	if validation {
		deviceCreatInfo.EnabledLayerCount = uint32(len(ValidationLayers))
		deviceCreatInfo.PpEnabledLayerNames = TerminatedStrs(ValidationLayers)
	}

	dc.D, err = VkCreateDevice(dc.PD, deviceCreatInfo, nil)
	if err != nil {
		return fmt.Errorf("create logical device: %w", err)
	}
	dc.GraphicsQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.GraphicsFamily, 0)
	if err != nil {
		return fmt.Errorf("get 'graphics' device queue: %w", err)
	}
	dc.PresentQ, err = VkGetDeviceQueue(dc.D, dc.QFamilies.PresentFamily, 0)
	if err != nil {
		return fmt.Errorf("get 'present' device queue: %w", err)
	}
	log.Println("Successfully created logical device")
	return nil
}

// FindSupportedFormat returns the first candidate supporting all features with the given tiling.
func (dc *Device) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	for _, format := range candidates {
		fProps := ReadFormatProperties(dc.PD, format)
		if tiling == vk.ImageTilingLinear && (fProps.LinearTilingFeatures&features) == features {
			return format, nil
		} else if tiling == vk.ImageTilingOptimal && (fProps.OptimalTilingFeatures&features) == features {
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.New("no supported format found")
}

func (dc *Device) FindDepthFormat() (vk.Format, error) {
	return dc.FindSupportedFormat(
		[]vk.Format{vk.FormatD32Sfloat, vk.FormatD32SfloatS8Uint, vk.FormatD24UnormS8Uint},
		vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit),
	)
}

func HasStencilComponent(format vk.Format) bool {
	return format == vk.FormatD32SfloatS8Uint || format == vk.FormatD24UnormS8Uint
}

func checkDeviceExtensionSupport(pd vk.PhysicalDevice, requiredDeviceExt []string) bool {
	supportedExtNames, err := ReadDeviceExtensionPropertyNames(pd)
	if err != nil {
		log.Printf("Failed to read device extensions: %s", err)
		return false
	}
	log.Printf("Required device extensions: %v", requiredDeviceExt)
	log.Printf("Available device extensions (%d) [...]\n", len(supportedExtNames))
	return AllOfAinB(requiredDeviceExt, supportedExtNames)
}
