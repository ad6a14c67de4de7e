package common

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
)

// ErrZeroExtent is returned while the surface has no area, e.g. when the window is minimized.
var ErrZeroExtent = errors.New("surface extent is 0x0")

type SwapChain struct {
	supDetails SwapChainDetails
	Handle     vk.Swapchain

	Format      vk.SurfaceFormat
	PresentMode vk.PresentMode
	Extent      vk.Extent2D

	Images   []vk.Image
	ImgViews []vk.ImageView

	FrameBuffers []vk.Framebuffer
}

func NewSwapChain(dc *Device, w *Window, preferredMode vk.PresentMode) (*SwapChain, error) {
	sc := &SwapChain{}
	if err := sc.chooseConfiguration(dc, w, preferredMode); err != nil {
		return nil, err
	}
	if err := sc.createSwapChainHandle(dc, w); err != nil {
		return nil, err
	}
	sc.Images = ReadSwapChainImages(dc.D, sc.Handle)
	if err := sc.createImageViews(dc); err != nil {
		sc.Destroy(dc)
		return nil, err
	}
	return sc, nil
}

// Aspect is width / height of the swap chain images.
func (sc *SwapChain) Aspect() float32 {
	return float32(sc.Extent.Width) / float32(sc.Extent.Height)
}

func (sc *SwapChain) CreateFrameBuffers(dc *Device, renderPass vk.RenderPass, depthImageView vk.ImageView) error {
	sc.FrameBuffers = make([]vk.Framebuffer, 0, len(sc.ImgViews))
	for i := range sc.ImgViews {
		attachments := []vk.ImageView{sc.ImgViews[i]}
		if depthImageView != nil {
			attachments = append(attachments, depthImageView)
		}
		framebufferInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			PNext:           nil,
			Flags:           0,
			RenderPass:      renderPass,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           sc.Extent.Width,
			Height:          sc.Extent.Height,
			Layers:          1,
		}
		fb, err := VkCreateFrameBuffer(dc.D, &framebufferInfo, nil)
		if err != nil {
			return fmt.Errorf("create frame buffer [%d]: %w", i, err)
		}
		sc.FrameBuffers = append(sc.FrameBuffers, fb)
	}
	log.Printf("Successfully created %d frame buffers", len(sc.FrameBuffers))
	return nil
}

func (sc *SwapChain) chooseConfiguration(dc *Device, w *Window, preferredMode vk.PresentMode) error {
	sc.supDetails = ReadSwapChainSupportDetails(dc.PD, w.Surf)
	if len(sc.supDetails.formats) == 0 {
		return errors.New("surface reports no formats")
	}
	sc.Format = sc.supDetails.selectSwapSurfaceFormat(vk.FormatB8g8r8a8Srgb, vk.ColorSpaceSrgbNonlinear)
	sc.PresentMode = sc.supDetails.selectSwapPresentMode(preferredMode)
	width, height := w.DrawableSize()
	sc.Extent = chooseSwapExtent(sc.supDetails.capabilities, uint32(width), uint32(height))
	if sc.Extent.Width == 0 || sc.Extent.Height == 0 {
		return ErrZeroExtent
	}
	return nil
}

func (sc *SwapChain) createSwapChainHandle(dc *Device, w *Window) error {
	imgCount := chooseImageCount(sc.supDetails.capabilities)

	// Depending on whether our queue families are the same for graphics and presentation, we need to choose different
	// swap chain configurations: https://vulkan-tutorial.com/Drawing_a_triangle/Presentation/Swap_chain
	indices := dc.QFamilies
	sharingMode := vk.SharingModeExclusive
	var qFamIndices []uint32
	if !indices.Shared() {
		sharingMode = vk.SharingModeConcurrent
		qFamIndices = []uint32{*indices.GraphicsFamily, *indices.PresentFamily}
	}

	createInfo := &vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		PNext:                 nil,
		Flags:                 0,
		Surface:               w.Surf,
		MinImageCount:         imgCount,
		ImageFormat:           sc.Format.Format,
		ImageColorSpace:       sc.Format.ColorSpace,
		ImageExtent:           sc.Extent,
		ImageArrayLayers:      1,
		ImageUsage:            vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode:      sharingMode,
		QueueFamilyIndexCount: uint32(len(qFamIndices)),
		PQueueFamilyIndices:   qFamIndices,
		PreTransform:          sc.supDetails.capabilities.CurrentTransform,
		CompositeAlpha:        vk.CompositeAlphaOpaqueBit,
		PresentMode:           sc.PresentMode,
		Clipped:               vk.True,
		OldSwapchain:          nil,
	}

	var err error
	sc.Handle, err = VkCreateSwapChain(dc.D, createInfo, nil)
	if err != nil {
		return fmt.Errorf("create swapchain: %w", err)
	}
	log.Printf("Successfully created swap chain (%dx%d, %d images)", sc.Extent.Width, sc.Extent.Height, imgCount)
	return nil
}

func (sc *SwapChain) createImageViews(dc *Device) error {
	sc.ImgViews = make([]vk.ImageView, 0, len(sc.Images))
	for i := range sc.Images {
		view, err := VKSCreate2DImageView(dc.D, sc.Images[i], sc.Format.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return fmt.Errorf("create swap chain image view [%d]: %w", i, err)
		}
		sc.ImgViews = append(sc.ImgViews, view)
	}
	log.Printf("Successfully created %d image views", len(sc.ImgViews))
	return nil
}

// Destroy releases frame buffers, image views and the swap chain itself. It tolerates partially built swap chains.
func (sc *SwapChain) Destroy(dc *Device) {
	for i := range sc.FrameBuffers {
		vk.DestroyFramebuffer(dc.D, sc.FrameBuffers[i], nil)
	}
	sc.FrameBuffers = nil
	for i := range sc.ImgViews {
		vk.DestroyImageView(dc.D, sc.ImgViews[i], nil)
	}
	sc.ImgViews = nil
	if sc.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(dc.D, sc.Handle, nil)
		sc.Handle = vk.NullSwapchain
	}
}

type SwapChainDetails struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func (s *SwapChainDetails) selectSwapSurfaceFormat(desiredFormat vk.Format, desiredColorSpace vk.ColorSpace) vk.SurfaceFormat {
	for _, af := range s.formats {
		if af.Format == desiredFormat && af.ColorSpace == desiredColorSpace {
			return af
		}
	}
	fallbackFormat := s.formats[0]
	log.Printf("Did not find prefered SurfaceFormat, selecting first one available. (%v)", fallbackFormat)
	return fallbackFormat
}

func (s *SwapChainDetails) selectSwapPresentMode(desiredMode vk.PresentMode) vk.PresentMode {
	for _, pm := range s.presentModes {
		if pm == desiredMode {
			return pm
		}
	}
	// FIFO is the only mode Vulkan guarantees to be available
	log.Printf("Did not find prefered PresentMode %d, selecting FIFO", desiredMode)
	return vk.PresentModeFifo
}

// chooseSwapExtent uses the surface's current extent unless the platform leaves it to the application
// (0xFFFFFFFF), in which case the drawable size clamped to the supported range is used.
func chooseSwapExtent(caps vk.SurfaceCapabilities, drawableW, drawableH uint32) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampU32(drawableW, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(drawableH, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, a MaxImageCount of 0 means there is no upper limit.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	imgCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imgCount > caps.MaxImageCount {
		imgCount = caps.MaxImageCount
	}
	return imgCount
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkSwapChainAdequacy(pd vk.PhysicalDevice, surface vk.Surface) bool {
	scDetails := ReadSwapChainSupportDetails(pd, surface)
	return len(scDetails.formats) > 0 && len(scDetails.presentModes) > 0
}
