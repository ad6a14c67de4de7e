package input

import "sort"

// Platform lets the Context move and capture the operating system cursor. common.Window implements it.
type Platform interface {
	WarpMouse(x, y int32)
	SetMouseCaptured(captured bool)
}

// Context holds the input state of one window. It is created once by the application and passed by
// reference to everything that reads input, there is no package level state.
type Context struct {
	keys     [keyCount]bool
	prevKeys [keyCount]bool
	buttons  [mouseButtonCount]bool

	cursorX, cursorY float32
	cursorValid      bool
	captured         bool

	platform Platform
	subs     []subscription
}

func NewContext(p Platform) *Context {
	return &Context{platform: p}
}

func (c *Context) KeyDown(k Key) bool {
	if k < 0 || k >= keyCount {
		return false
	}
	return c.keys[k]
}

func (c *Context) SetKey(k Key, down bool) {
	if k < 0 || k >= keyCount {
		return
	}
	c.keys[k] = down
}

func (c *Context) ButtonDown(b MouseButton) bool {
	if b < 0 || b >= mouseButtonCount {
		return false
	}
	return c.buttons[b]
}

func (c *Context) SetButton(b MouseButton, down bool) {
	if b < 0 || b >= mouseButtonCount {
		return
	}
	c.buttons[b] = down
}

// CursorPos reports the last known cursor position. ok is false until the platform delivered one.
func (c *Context) CursorPos() (x, y float32, ok bool) {
	return c.cursorX, c.cursorY, c.cursorValid
}

func (c *Context) SetCursor(x, y float32) {
	c.cursorX, c.cursorY = x, y
	c.cursorValid = true
}

// WarpCursor moves the OS cursor and records the new position right away, so a read in the same tick
// does not see the old one.
func (c *Context) WarpCursor(x, y float32) {
	if c.platform != nil {
		c.platform.WarpMouse(int32(x), int32(y))
	}
	c.SetCursor(x, y)
}

func (c *Context) SetCursorCaptured(captured bool) {
	if c.captured == captured {
		return
	}
	c.captured = captured
	if c.platform != nil {
		c.platform.SetMouseCaptured(captured)
	}
}

func (c *Context) CursorCaptured() bool {
	return c.captured
}

// Reset releases every key and button, used when the window loses focus.
func (c *Context) Reset() {
	c.keys = [keyCount]bool{}
	c.buttons = [mouseButtonCount]bool{}
}

// Action is invoked by Dispatch when its key set is held.
type Action interface {
	Invoke(ctx *Context)
}

// ActionFunc adapts a plain function to an Action.
type ActionFunc func(ctx *Context)

func (f ActionFunc) Invoke(ctx *Context) {
	f(ctx)
}

type Trigger int

const (
	// WhileHeld fires on every Dispatch while the whole set is held.
	WhileHeld Trigger = iota
	// OnPress fires once on the tick the whole set becomes held.
	OnPress
)

type subscription struct {
	keys     KeySet
	priority int
	trigger  Trigger
	action   Action
}

// Subscribe registers an action for a key combination. Actions with a higher priority run first,
// equal priorities keep registration order.
func (c *Context) Subscribe(keys KeySet, priority int, trigger Trigger, a Action) {
	c.subs = append(c.subs, subscription{
		keys:     append(KeySet(nil), keys...),
		priority: priority,
		trigger:  trigger,
		action:   a,
	})
	sort.SliceStable(c.subs, func(i, j int) bool {
		return c.subs[i].priority > c.subs[j].priority
	})
}

// Dispatch runs all subscriptions matching the current key state. It must be called once per tick
// after the platform events have been applied.
func (c *Context) Dispatch() {
	for _, s := range c.subs {
		held := allHeld(&c.keys, s.keys)
		if !held {
			continue
		}
		if s.trigger == OnPress && allHeld(&c.prevKeys, s.keys) {
			continue
		}
		s.action.Invoke(c)
	}
	c.prevKeys = c.keys
}

func allHeld(state *[keyCount]bool, keys KeySet) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		if k < 0 || k >= keyCount || !state[k] {
			return false
		}
	}
	return true
}
