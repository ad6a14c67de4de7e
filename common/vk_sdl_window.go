package common

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
	"github.com/veandco/go-sdl2/sdl"
)

const APPLICATION_NAME = "Clever"
const APP_MAJOR, APP_MINOR, APP_PATCH = 1, 0, 0
const ENGINE_NAME = "renderbase"
const ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH = 1, 0, 0

const SDL_MAJOR, SDL_MINOR, SDL_PATCH = int(sdl.MAJOR_VERSION), int(sdl.MINOR_VERSION), int(sdl.PATCHLEVEL)

// Vulkan spec go bindings = v1.0.7, as per: https://github.com/goki/vulkan = 1.3.239
const VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH int = 1, 3, 239

// Window encapsulates all window handling components and vulkan access objects to talk, to actual draw on screen. It
// uses SDL for window management and user input, for a Vulkan application. Thus simplifying the process of getting a
// vk.Surface to draw on and interact with.
type Window struct {
	sdlVersion string
	vkVersion  string

	Win       *sdl.Window
	Resized   bool
	Minimized bool
	Close     bool

	Inst vk.Instance
	Surf vk.Surface
}

// NewWindow initializes SDL, opens a resizable Vulkan capable window, creates the Vulkan instance and the surface
// of the window. On tear down, Destroy releases them in reverse order.
func NewWindow(title string, w int32, h int32, validation bool) (*Window, error) {
	window := &Window{
		sdlVersion: fmt.Sprintf("v%d.%d.%d", SDL_MAJOR, SDL_MINOR, SDL_PATCH),
		vkVersion:  fmt.Sprintf("v%d.%d.%d", VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	if err := window.initSDLWindow(title, w, h); err != nil {
		return nil, err
	}
	if err := window.initVulkan(); err != nil {
		window.destroySDL()
		return nil, err
	}
	var layers []string
	if validation {
		layers = ValidationLayers
	}
	if err := window.createVulkanInstance(layers); err != nil {
		window.destroySDL()
		return nil, err
	}
	surf, err := SdlCreateVkSurface(window.Win, window.Inst)
	if err != nil {
		vk.DestroyInstance(window.Inst, nil)
		window.destroySDL()
		return nil, fmt.Errorf("create SDL window's Vulkan-surface: %w", err)
	}
	window.Surf = surf
	log.Printf("Generated SDL/Vulkan window - SDL: %s Vulkan Spec: %s", window.sdlVersion, window.vkVersion)
	return window, nil
}

// Destroy tears down the vk.Surface, vk.Instance and sdl.Window that have been initialized by itself.
func (w *Window) Destroy() {
	vk.DestroySurface(w.Inst, w.Surf, nil)
	vk.DestroyInstance(w.Inst, nil)
	w.destroySDL()
}

func (w *Window) destroySDL() {
	if err := w.Win.Destroy(); err != nil {
		log.Printf("Failed to destroy SDL window: %v", err)
	}
	sdl.Quit()
}

// DrawableSize is the size of the surface in pixels, which may differ from the window size on high dpi screens.
func (w *Window) DrawableSize() (int32, int32) {
	return w.Win.VulkanGetDrawableSize()
}

// Size is the window size in screen coordinates, the unit of mouse positions.
func (w *Window) Size() (int32, int32) {
	return w.Win.GetSize()
}

// WarpMouse moves the cursor to a position relative to the window.
func (w *Window) WarpMouse(x, y int32) {
	w.Win.WarpMouseInWindow(x, y)
}

// SetMouseCaptured hides the cursor and confines it to the window, or releases it again.
func (w *Window) SetMouseCaptured(captured bool) {
	w.Win.SetGrab(captured)
	toggle := sdl.ENABLE
	if captured {
		toggle = sdl.DISABLE
	}
	if _, err := sdl.ShowCursor(toggle); err != nil {
		log.Printf("Failed to toggle cursor visibility: %v", err)
	}
}

// HandleEvent tracks the window state flags. It returns true when the event was a window level event.
func (w *Window) HandleEvent(event sdl.Event) bool {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		w.Close = true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			w.Resized = true
		case sdl.WINDOWEVENT_MINIMIZED:
			w.Minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			w.Minimized = false
		case sdl.WINDOWEVENT_CLOSE:
			w.Close = true
		}
	default:
		return false
	}
	return true
}

func (w *Window) initSDLWindow(title string, width int32, height int32) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initialize SDL: %w", err)
	}
	log.Println("Initialized SDL")
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		width,
		height,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE|sdl.WINDOW_VULKAN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("create SDL window for use with Vulkan: %w", err)
	}
	log.Printf("Created SDL window for use with Vulkan. Title: \"%s\", Width: %d, Height: %d", title, width, height)
	w.Win = win
	return nil
}

func (w *Window) initVulkan() error {
	// Find and load Vulkan addresses to be able to call driver level functions via provided mechanism
	vk.SetGetInstanceProcAddr(sdl.VulkanGetVkGetInstanceProcAddr())
	if err := vk.Init(); err != nil {
		return fmt.Errorf("initialize Vulkan API: %w", err)
	}
	return nil
}

func (w *Window) createVulkanInstance(validationLayers []string) error {
	requiredExtensions := w.Win.VulkanGetInstanceExtensions()
	if err := checkInstanceExtensionSupport(requiredExtensions); err != nil {
		return err
	}
	if len(validationLayers) > 0 {
		log.Printf("Validation enabled, checking layer support")
		if err := checkValidationLayerSupport(validationLayers); err != nil {
			return err
		}
	}
	applicationInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PNext:              nil,
		PApplicationName:   TerminatedStr(APPLICATION_NAME),
		ApplicationVersion: vk.MakeVersion(APP_MAJOR, APP_MINOR, APP_PATCH),
		PEngineName:        TerminatedStr(ENGINE_NAME),
		EngineVersion:      vk.MakeVersion(ENGINE_MAJOR, ENGINE_MINOR, ENGINE_PATCH),
		ApiVersion:         vk.MakeVersion(VK_SPEC_MAJOR, VK_SPEC_MINOR, VK_SPEC_PATCH),
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PNext:                   nil,
		Flags:                   0,
		PApplicationInfo:        applicationInfo,
		EnabledLayerCount:       uint32(len(validationLayers)),
		PpEnabledLayerNames:     TerminatedStrs(validationLayers),
		EnabledExtensionCount:   uint32(len(requiredExtensions)),
		PpEnabledExtensionNames: TerminatedStrs(requiredExtensions),
	}
	ins, err := VkCreateInstance(createInfo, nil)
	if err != nil {
		return fmt.Errorf("create vk instance: %w", err)
	}
	w.Inst = ins
	return nil
}

func checkInstanceExtensionSupport(requiredInstanceExt []string) error {
	supportedExtNames, err := ReadInstanceExtensionPropertyNames()
	if err != nil {
		return err
	}
	log.Printf("Required instance extensions: %v", requiredInstanceExt)
	log.Printf("Available extensions (%d): %v", len(supportedExtNames), supportedExtNames)
	if !AllOfAinB(requiredInstanceExt, supportedExtNames) {
		return errors.New("at least one required instance extension is not supported")
	}
	log.Println("Success - All required instance extensions are supported")
	return nil
}

func checkValidationLayerSupport(requiredLayers []string) error {
	supportedLayerNames, err := ReadInstanceLayerPropertyNames()
	if err != nil {
		return err
	}
	log.Printf("Desired validation layers: %v", requiredLayers)
	log.Printf("Supported layers (%d): %v", len(supportedLayerNames), supportedLayerNames)
	if !AllOfAinB(requiredLayers, supportedLayerNames) {
		return errors.New("at least one desired validation layer is not supported")
	}
	log.Println("Success - All desired validation layers are supported")
	return nil
}
