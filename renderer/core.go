package renderer

import (
	"errors"
	"fmt"
	"log"

	vk "github.com/goki/vulkan"
	"renderbase/model"
)

type FrameStats struct {
	Rendered  uint64
	Skipped   uint64
	Recreated uint64
}

// Core drives the per frame protocol on top of a Backend. Frame slots are used round robin, the swap chain image
// is whatever the presentation engine hands out.
type Core struct {
	backend  Backend
	cam      *model.Camera
	controls model.Controls
	overlay  Overlay

	slot          int
	needsRecreate bool
	resized       bool
	stats         FrameStats
}

func NewCore(b Backend, cam *model.Camera, controls model.Controls) *Core {
	return &Core{
		backend:  b,
		cam:      cam,
		controls: controls,
	}
}

func (c *Core) SetOverlay(o Overlay) {
	c.overlay = o
}

// NotifyResized marks the swap chain for recreation after the next present.
func (c *Core) NotifyResized() {
	c.resized = true
}

func (c *Core) CurrentSlot() int {
	return c.slot
}

func (c *Core) Stats() FrameStats {
	return c.stats
}

func (c *Core) Camera() *model.Camera {
	return c.cam
}

// RenderFrame renders one frame of the given renderables. Skipped frames (stale swap chain) return nil, every
// other error is fatal.
func (c *Core) RenderFrame(dt float32, renderables []Renderable) error {
	if c.needsRecreate {
		stale, err := c.recreate()
		if err != nil {
			return err
		}
		if stale {
			c.stats.Skipped++
			return nil
		}
	}

	b := c.backend
	if err := b.WaitForFence(c.slot); err != nil {
		return fmt.Errorf("wait for frame fence: %w", err)
	}

	image, status, err := b.AcquireNextImage(c.slot)
	if err != nil {
		return fmt.Errorf("acquire swap chain image: %w", err)
	}
	if status == AcquireOutOfDate {
		// the fence stays signalled, the next attempt on this slot does not block
		c.stats.Skipped++
		if _, err := c.recreate(); err != nil {
			return err
		}
		return nil
	}

	if err := b.ResetFence(c.slot); err != nil {
		return fmt.Errorf("reset frame fence: %w", err)
	}

	c.cam.Update(dt, c.controls)
	b.WriteUniform(c.slot, c.cam.UniformBufferObject())

	if err := b.ResetCommandBuffer(c.slot); err != nil {
		return fmt.Errorf("reset command buffer: %w", err)
	}
	if err := c.record(image, renderables); err != nil {
		return err
	}

	var extra []vk.CommandBuffer
	if c.overlay != nil {
		if cb, ok := c.overlay.CommandBuffer(c.slot); ok {
			extra = append(extra, cb)
		}
	}
	if err := b.Submit(c.slot, extra); err != nil {
		return fmt.Errorf("submit frame: %w", err)
	}

	presented, err := b.Present(c.slot, image)
	if err != nil {
		return fmt.Errorf("present frame: %w", err)
	}
	if presented != PresentOK || c.resized {
		c.resized = false
		c.needsRecreate = true
	}

	c.slot = (c.slot + 1) % b.SlotCount()
	c.stats.Rendered++
	return nil
}

func (c *Core) record(image uint32, renderables []Renderable) error {
	rec, err := c.backend.BeginFrame(c.slot, image)
	if err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	for _, r := range renderables {
		if !r.Drawable() {
			continue
		}
		rec.BindPipeline(r.Pipeline, c.slot)
		rec.BindGeometry(r.Geometry)
		n := r.Geometry.IndexCount()
		for _, pc := range r.Pipeline.PushConstants() {
			rec.PushConstants(r.Pipeline, pc)
			rec.DrawIndexed(n)
		}
	}
	if err := rec.End(); err != nil {
		return fmt.Errorf("end frame: %w", err)
	}
	return nil
}

// recreate rebuilds the swap chain. A stale surface is reported as stale and leaves the recreation pending.
func (c *Core) recreate() (stale bool, err error) {
	err = c.backend.RecreateSwapChain()
	var staleErr *SwapchainStaleError
	if errors.As(err, &staleErr) {
		c.needsRecreate = true
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("recreate swap chain: %w", err)
	}
	c.needsRecreate = false
	c.resized = false
	c.stats.Recreated++

	ext := c.backend.Extent()
	// the extent is in pixels, only its ratio is meaningful to the camera
	if ext.Height > 0 {
		c.cam.SetAspect(float32(ext.Width) / float32(ext.Height))
	}
	log.Printf("swap chain recreated with extent %dx%d", ext.Width, ext.Height)
	return false, nil
}
