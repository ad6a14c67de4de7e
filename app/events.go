package app

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

// events is the platform event queue.
type events interface {
	Poll() sdl.Event
	Wait() sdl.Event
}

type sdlEvents struct{}

func (sdlEvents) Poll() sdl.Event {
	return sdl.PollEvent()
}

func (sdlEvents) Wait() sdl.Event {
	return sdl.WaitEvent()
}

// frameClock measures the time between rendered frames.
type frameClock struct {
	last time.Time
}

func (c *frameClock) reset(now time.Time) {
	c.last = now
}

func (c *frameClock) delta(now time.Time) float32 {
	dt := float32(now.Sub(c.last).Seconds())
	c.last = now
	return dt
}
