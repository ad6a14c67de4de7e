// Package app wires the window, the device, the renderer and the world together and runs the event loop.
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	com "renderbase/common"
	"renderbase/config"
	"renderbase/ecs"
	"renderbase/input"
	"renderbase/material"
	"renderbase/model"
	"renderbase/renderer"
	"renderbase/world"
)

const fpsInterval = 5 * time.Second

// Options are the command line overrides of the loaded config.
type Options struct {
	// MaxFrames stops the loop after that many rendered frames, 0 runs until the window closes.
	MaxFrames uint64
}

type App struct {
	cfg  config.Config
	opts Options

	window  *com.Window
	device  *com.Device
	backend *renderer.VulkanBackend
	world   *world.World
	input   *input.Context
	core    *renderer.Core

	verbose  bool
	teardown com.Teardown

	clock    frameClock
	now      func() time.Time
	onResize func()
}

// Run brings everything up, loops until the window is closed and releases everything in reverse order, also
// when bring up fails half way.
func Run(cfg config.Config, opts Options) error {
	a := &App{cfg: cfg, opts: opts, now: time.Now}
	defer a.teardown.Release()
	if err := a.init(); err != nil {
		return err
	}
	return a.loop()
}

func (a *App) init() error {
	var err error
	a.window, err = com.NewWindow(a.cfg.Window.Title, a.cfg.Window.Width, a.cfg.Window.Height, a.cfg.Renderer.Validation)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	a.teardown.Push("window", a.window.Destroy)

	a.device, err = com.NewDevice(a.window, a.cfg.Renderer.Validation)
	if err != nil {
		return fmt.Errorf("device: %w", err)
	}
	a.teardown.Push("device", a.device.Destroy)

	vkCfg, err := vulkanConfig(a.cfg.Renderer)
	if err != nil {
		return err
	}
	a.backend, err = renderer.NewVulkanBackend(a.window, a.device, vkCfg)
	if err != nil {
		return err
	}
	a.teardown.Push("backend", a.backend.Destroy)

	lib, err := loadMaterials(a.cfg.World.Materials)
	if err != nil {
		return err
	}

	a.world = world.New(ecs.NewStore())
	// the device must be idle before any pipeline or buffer of the world goes away
	a.teardown.Push("world", func() {
		if err := a.backend.WaitIdle(); err != nil {
			log.Printf("Wait idle before world tear down: %v", err)
		}
		a.world.Destroy()
	})
	if err := a.world.Init(a.backend, a.backend.RenderTarget(), a.backend.SlotCount(), a.cfg.World.Objects, lib); err != nil {
		return fmt.Errorf("world: %w", err)
	}

	w, h := a.window.Size()
	cam := model.NewCamera(a.cfg.Camera.ModelConfig(), float32(w), float32(h))
	if ext := a.backend.Extent(); ext.Height > 0 {
		cam.SetAspect(float32(ext.Width) / float32(ext.Height))
	}
	a.input = input.NewContext(a.window)
	a.core = renderer.NewCore(a.backend, cam, a.input)
	a.bindKeys(cam)
	a.onResize = func() {
		w, h := a.window.Size()
		cam.SetCursorRegion(float32(w), float32(h))
		a.core.NotifyResized()
	}
	return nil
}

func (a *App) bindKeys(cam *model.Camera) {
	a.input.Subscribe(input.KeySet{input.KeyR}, 0, input.OnPress, input.ActionFunc(func(*input.Context) {
		if err := a.world.AddRay(cam); err != nil {
			log.Printf("Spawning ray failed: %v", err)
		}
	}))
	a.input.Subscribe(input.KeySet{input.KeyF1}, 0, input.OnPress, input.ActionFunc(func(*input.Context) {
		a.verbose = !a.verbose
		log.Printf("Verbose frame stats: %v", a.verbose)
	}))
}

func (a *App) loop() error {
	t0 := a.now()
	a.clock.reset(t0)
	fps := newFPSCounter(t0, fpsInterval)
	src := sdlEvents{}
	for !a.window.Close {
		if !a.pumpEvents(src) {
			continue
		}
		a.input.Dispatch()

		now := a.now()
		if err := a.core.RenderFrame(a.clock.delta(now), a.world.Renderables()); err != nil {
			return fmt.Errorf("frame: %w", err)
		}

		stats := a.core.Stats()
		if line, ok := fps.tick(now, stats); ok {
			log.Print(line)
		}
		if a.verbose {
			log.Printf("Frame slot %d, stats %+v", a.core.CurrentSlot(), stats)
		}
		if a.opts.MaxFrames > 0 && stats.Rendered >= a.opts.MaxFrames {
			log.Printf("Rendered %d frames, stopping", stats.Rendered)
			break
		}
	}
	elapsed := a.now().Sub(t0)
	log.Printf("Elapsed: %v, rough avg fps: %v fps", elapsed, averageFPS(a.core.Stats().Rendered, elapsed))
	return nil
}

// pumpEvents drains the event queue and reports whether a frame should be rendered. While minimized it blocks
// for one event instead, and the time spent waiting is not counted as frame time.
func (a *App) pumpEvents(src events) bool {
	for event := src.Poll(); event != nil; event = src.Poll() {
		a.handleEvent(event)
	}
	if !a.window.Minimized {
		return true
	}
	if event := src.Wait(); event != nil {
		a.handleEvent(event)
	}
	a.clock.reset(a.now())
	return false
}

func (a *App) handleEvent(event sdl.Event) {
	a.window.HandleEvent(event)
	a.input.HandleEvent(event)
	if a.window.Resized {
		a.window.Resized = false
		if a.onResize != nil {
			a.onResize()
		}
	}
}

func vulkanConfig(r config.Renderer) (renderer.VulkanConfig, error) {
	mode, err := r.VkPresentMode()
	if err != nil {
		return renderer.VulkanConfig{}, err
	}
	return renderer.VulkanConfig{
		FramesInFlight: r.FramesInFlight,
		PresentMode:    mode,
		ClearColor:     r.ClearColor,
		VertShader:     r.VertShader,
		FragShader:     r.FragShader,
	}, nil
}

// loadMaterials reads the material library, an empty path yields an empty library.
func loadMaterials(path string) (material.Library, error) {
	if path == "" {
		return material.NewLibrary()
	}
	lib, err := material.Load(path)
	if err != nil {
		return lib, fmt.Errorf("materials: %w", err)
	}
	log.Printf("Loaded %d materials from %s", lib.Len(), path)
	return lib, nil
}
