package input

// Key enumerates the keys the engine reacts to. Anything else coming from the platform is dropped.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeySpace
	KeyLeftShift
	KeyEscape
	KeyR
	KeyF1
	keyCount
)

var keyNames = [keyCount]string{
	KeyW:         "W",
	KeyA:         "A",
	KeyS:         "S",
	KeyD:         "D",
	KeySpace:     "Space",
	KeyLeftShift: "LeftShift",
	KeyEscape:    "Escape",
	KeyR:         "R",
	KeyF1:        "F1",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "Undefined"
	}
	return keyNames[k]
}

type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	mouseButtonCount
)

// KeySet is a combination of keys that must all be held for a subscription to fire.
type KeySet []Key
