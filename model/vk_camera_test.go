package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"renderbase/input"
	vm "renderbase/vector_math"
)

type fakeControls struct {
	keys     map[input.Key]bool
	buttons  map[input.MouseButton]bool
	x, y     float32
	hasPos   bool
	warps    []vm.Vec2
	captured bool
}

func newFakeControls() *fakeControls {
	return &fakeControls{
		keys:    map[input.Key]bool{},
		buttons: map[input.MouseButton]bool{},
	}
}

func (f *fakeControls) KeyDown(k input.Key) bool            { return f.keys[k] }
func (f *fakeControls) ButtonDown(b input.MouseButton) bool { return f.buttons[b] }
func (f *fakeControls) CursorPos() (float32, float32, bool) { return f.x, f.y, f.hasPos }
func (f *fakeControls) SetCursorCaptured(c bool)            { f.captured = c }

// WarpCursor is recorded but does not move the reported cursor, like a platform that applies the
// warp only with the next event batch.
func (f *fakeControls) WarpCursor(x, y float32) {
	f.warps = append(f.warps, vm.Vec2{X: x, Y: y})
}

func (f *fakeControls) moveTo(x, y float32) {
	f.x, f.y, f.hasPos = x, y, true
}

func newTestCamera() *Camera {
	return NewCamera(DefaultCameraConfig(), 800, 600)
}

func TestCameraDefaults(t *testing.T) {
	c := newTestCamera()
	assert.Equal(t, DefaultYaw, c.Yaw())
	assert.Equal(t, DefaultPitch, c.Pitch())
	assert.True(t, c.Front().ApproxEqual(vm.Vec3{Z: -1}, 1e-6), "front was %v", c.Front())
	assert.True(t, c.Right().ApproxEqual(vm.Vec3{X: 1}, 1e-6), "right was %v", c.Right())
	assert.InDelta(t, 800.0/600.0, c.Aspect(), 1e-6)
}

func TestCameraViewProjectionIsCached(t *testing.T) {
	c := newTestCamera()
	expected := vm.Mul(
		vm.Perspective(45, 800.0/600.0, 0.1, 100),
		vm.LookAt(c.Position(), c.Position().Add(c.Front()), c.Up()),
	)
	assert.Equal(t, expected, c.ViewProjection())
	assert.Equal(t, c.ViewProjection(), c.UniformBufferObject().ViewProj)
}

func TestCameraKeyboardTranslation(t *testing.T) {
	c := newTestCamera()
	in := newFakeControls()
	start := c.Position()

	in.keys[input.KeyW] = true
	c.Update(1, in)
	assert.True(t, c.Position().ApproxEqual(start.Add(vm.Vec3{Z: -DefaultMoveSpeed}), 1e-5), "pos was %v", c.Position())

	in.keys[input.KeyW] = false
	in.keys[input.KeySpace] = true
	c.Update(0.5, in)
	assert.InDelta(t, start.Y+DefaultMoveSpeed*0.5, c.Position().Y, 1e-5)

	in.keys[input.KeySpace] = false
	in.keys[input.KeyD] = true
	before := c.Position()
	c.Update(1, in)
	assert.InDelta(t, before.X+DefaultMoveSpeed, c.Position().X, 1e-5)

	// The cached matrix follows the moved position
	expected := vm.LookAt(c.Position(), c.Position().Add(c.Front()), c.Up())
	assert.Equal(t, expected, c.View())
}

func TestCameraPitchStaysClamped(t *testing.T) {
	c := newTestCamera()
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		c.ProcessMouseMovement(r.Float32()*400-200, r.Float32()*4000-2000)
		require.GreaterOrEqual(t, c.Pitch(), -PitchLimit)
		require.LessOrEqual(t, c.Pitch(), PitchLimit)
	}

	c.ProcessMouseMovement(0, 1e6)
	assert.Equal(t, PitchLimit, c.Pitch())
	c.ProcessMouseMovement(0, -1e6)
	assert.Equal(t, -PitchLimit, c.Pitch())
}

func TestCameraFirstMouseAfterLockHasNoRotation(t *testing.T) {
	for _, pos := range []vm.Vec2{{X: 0, Y: 0}, {X: 799, Y: 1}, {X: 123, Y: 456}, {X: 400, Y: 300}} {
		c := newTestCamera()
		in := newFakeControls()
		in.moveTo(pos.X, pos.Y)
		in.buttons[input.MouseRight] = true

		c.Update(0.016, in)

		assert.True(t, c.Locked())
		assert.True(t, in.captured)
		assert.Equal(t, DefaultYaw, c.Yaw(), "lock at %v", pos)
		assert.Equal(t, DefaultPitch, c.Pitch(), "lock at %v", pos)
	}
}

func TestCameraMouseLook(t *testing.T) {
	c := newTestCamera()
	in := newFakeControls()
	in.moveTo(400, 300)
	in.buttons[input.MouseRight] = true
	c.Update(0, in)

	in.moveTo(410, 290)
	c.Update(0, in)
	assert.InDelta(t, DefaultYaw+10*DefaultSensitivity, c.Yaw(), 1e-5)
	assert.InDelta(t, 10*DefaultSensitivity, c.Pitch(), 1e-5)
}

func TestCameraRecentersOutsideViewport(t *testing.T) {
	c := newTestCamera()
	in := newFakeControls()
	in.moveTo(400, 300)
	in.buttons[input.MouseRight] = true
	c.Update(0, in)
	lockWarps := len(in.warps)

	// Leaving the window still applies the delta once, then the reference becomes the centre
	in.moveTo(850, 300)
	c.Update(0, in)
	require.Len(t, in.warps, lockWarps+1)
	assert.Equal(t, vm.Vec2{X: 400, Y: 300}, in.warps[len(in.warps)-1])
	yaw := c.Yaw()
	assert.InDelta(t, DefaultYaw+450*DefaultSensitivity, yaw, 1e-4)

	// Next sample is measured against the centre, not the out of window position
	in.moveTo(405, 300)
	c.Update(0, in)
	assert.InDelta(t, yaw+5*DefaultSensitivity, c.Yaw(), 1e-4)
}

func TestCameraCursorRegionIsIndependentOfAspect(t *testing.T) {
	c := newTestCamera()
	aspect := c.Aspect()
	// high dpi: the window is half the size of the surface in each direction
	c.SetCursorRegion(400, 300)
	assert.Equal(t, aspect, c.Aspect())
	assert.Equal(t, vm.Vec2{X: 400, Y: 300}, c.CursorRegion())

	in := newFakeControls()
	in.moveTo(200, 150)
	in.buttons[input.MouseRight] = true
	c.Update(0, in)
	lockWarps := len(in.warps)
	assert.Equal(t, vm.Vec2{X: 200, Y: 150}, in.warps[lockWarps-1])

	in.moveTo(450, 150)
	c.Update(0, in)
	require.Len(t, in.warps, lockWarps+1, "leaving the window region recentres")
	assert.Equal(t, vm.Vec2{X: 200, Y: 150}, in.warps[lockWarps])
}

func TestCameraEscapeUnlocks(t *testing.T) {
	c := newTestCamera()
	in := newFakeControls()
	in.moveTo(400, 300)
	in.buttons[input.MouseRight] = true
	c.Update(0, in)
	require.True(t, c.Locked())

	in.buttons[input.MouseRight] = false
	in.keys[input.KeyEscape] = true
	c.Update(0, in)
	assert.False(t, c.Locked())
	assert.False(t, in.captured)

	// Unlocked cursor movement does not rotate
	in.keys[input.KeyEscape] = false
	in.moveTo(0, 0)
	c.Update(0, in)
	assert.Equal(t, DefaultYaw, c.Yaw())
}

func TestCameraCursorQueryFailureKeepsOrientation(t *testing.T) {
	c := newTestCamera()
	in := newFakeControls()
	in.buttons[input.MouseRight] = true
	c.Update(0, in)
	assert.Equal(t, DefaultYaw, c.Yaw())
	assert.Equal(t, DefaultPitch, c.Pitch())
}
