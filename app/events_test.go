package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
	com "renderbase/common"
	"renderbase/input"
)

type scriptedEvents struct {
	queued []sdl.Event
	waited []sdl.Event
	waits  int
}

func (s *scriptedEvents) Poll() sdl.Event {
	if len(s.queued) == 0 {
		return nil
	}
	ev := s.queued[0]
	s.queued = s.queued[1:]
	return ev
}

func (s *scriptedEvents) Wait() sdl.Event {
	s.waits++
	if len(s.waited) == 0 {
		return nil
	}
	ev := s.waited[0]
	s.waited = s.waited[1:]
	return ev
}

func windowEvent(e uint8) *sdl.WindowEvent {
	return &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: e}
}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time {
	return c.t
}

func newTestApp(clock *testClock) *App {
	a := &App{
		window: &com.Window{},
		input:  input.NewContext(nil),
		now:    clock.now,
	}
	a.clock.reset(clock.now())
	return a
}

func TestPumpEventsRendersWhenVisible(t *testing.T) {
	a := newTestApp(&testClock{t: time.Unix(10, 0)})
	src := &scriptedEvents{queued: []sdl.Event{&sdl.KeyboardEvent{
		Type:   sdl.KEYDOWN,
		Keysym: sdl.Keysym{Sym: sdl.K_w},
	}}}

	assert.True(t, a.pumpEvents(src))
	assert.True(t, a.input.KeyDown(input.KeyW))
	assert.Zero(t, src.waits)
}

func TestRestoreEndingTheWaitResumesRendering(t *testing.T) {
	a := newTestApp(&testClock{t: time.Unix(10, 0)})
	src := &scriptedEvents{
		queued: []sdl.Event{windowEvent(sdl.WINDOWEVENT_MINIMIZED)},
		waited: []sdl.Event{windowEvent(sdl.WINDOWEVENT_RESTORED)},
	}

	assert.False(t, a.pumpEvents(src), "minimized windows do not render")
	assert.Equal(t, 1, src.waits)
	assert.False(t, a.window.Minimized, "the event that ended the wait was applied")
	assert.True(t, a.pumpEvents(src))
}

func TestQuitWhileMinimizedCloses(t *testing.T) {
	a := newTestApp(&testClock{t: time.Unix(10, 0)})
	src := &scriptedEvents{
		queued: []sdl.Event{windowEvent(sdl.WINDOWEVENT_MINIMIZED)},
		waited: []sdl.Event{&sdl.QuitEvent{Type: sdl.QUIT}},
	}

	a.pumpEvents(src)
	assert.True(t, a.window.Close)
}

func TestResizeEventsNotify(t *testing.T) {
	a := newTestApp(&testClock{t: time.Unix(10, 0)})
	resizes := 0
	a.onResize = func() { resizes++ }
	src := &scriptedEvents{queued: []sdl.Event{
		windowEvent(sdl.WINDOWEVENT_RESIZED),
		windowEvent(sdl.WINDOWEVENT_SIZE_CHANGED),
	}}

	assert.True(t, a.pumpEvents(src))
	assert.Equal(t, 2, resizes)
	assert.False(t, a.window.Resized)
}

func TestMinimizedTimeIsNotFrameTime(t *testing.T) {
	clock := &testClock{t: time.Unix(10, 0)}
	a := newTestApp(clock)
	src := &scriptedEvents{
		queued: []sdl.Event{windowEvent(sdl.WINDOWEVENT_MINIMIZED)},
		waited: []sdl.Event{windowEvent(sdl.WINDOWEVENT_RESTORED)},
	}

	clock.t = clock.t.Add(30 * time.Second)
	a.pumpEvents(src)
	clock.t = clock.t.Add(20 * time.Millisecond)
	assert.InDelta(t, 0.02, a.clock.delta(clock.now()), 1e-6)
}

func TestFrameClockDelta(t *testing.T) {
	var c frameClock
	start := time.Unix(10, 0)
	c.reset(start)
	assert.InDelta(t, 0.5, c.delta(start.Add(500*time.Millisecond)), 1e-6)
	assert.InDelta(t, 0.25, c.delta(start.Add(750*time.Millisecond)), 1e-6)
}
