package input

import "github.com/veandco/go-sdl2/sdl"

// KeyFromSDL maps an SDL keycode onto the engine's key set.
func KeyFromSDL(sym sdl.Keycode) (Key, bool) {
	switch sym {
	case sdl.K_w:
		return KeyW, true
	case sdl.K_a:
		return KeyA, true
	case sdl.K_s:
		return KeyS, true
	case sdl.K_d:
		return KeyD, true
	case sdl.K_SPACE:
		return KeySpace, true
	case sdl.K_LSHIFT:
		return KeyLeftShift, true
	case sdl.K_ESCAPE:
		return KeyEscape, true
	case sdl.K_r:
		return KeyR, true
	case sdl.K_F1:
		return KeyF1, true
	default:
		return 0, false
	}
}

func ButtonFromSDL(b uint8) (MouseButton, bool) {
	switch b {
	case sdl.BUTTON_LEFT:
		return MouseLeft, true
	case sdl.BUTTON_RIGHT:
		return MouseRight, true
	case sdl.BUTTON_MIDDLE:
		return MouseMiddle, true
	default:
		return 0, false
	}
}

// HandleEvent applies one SDL input event to the context. Events that are not input related are
// ignored and reported as not handled.
func (c *Context) HandleEvent(event sdl.Event) bool {
	switch ev := event.(type) {
	case *sdl.KeyboardEvent:
		k, ok := KeyFromSDL(ev.Keysym.Sym)
		if !ok {
			return false
		}
		c.SetKey(k, ev.Type == sdl.KEYDOWN)
		return true
	case *sdl.MouseButtonEvent:
		b, ok := ButtonFromSDL(ev.Button)
		if !ok {
			return false
		}
		c.SetButton(b, ev.Type == sdl.MOUSEBUTTONDOWN)
		c.SetCursor(float32(ev.X), float32(ev.Y))
		return true
	case *sdl.MouseMotionEvent:
		c.SetCursor(float32(ev.X), float32(ev.Y))
		return true
	case *sdl.WindowEvent:
		if ev.Event == sdl.WINDOWEVENT_FOCUS_LOST {
			c.Reset()
			return true
		}
	}
	return false
}
