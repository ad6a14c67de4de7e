package model

import (
	"github.com/xlab/linmath"
	"renderbase/input"
	vm "renderbase/vector_math"
)

const (
	DefaultYaw         float32 = -90
	DefaultPitch       float32 = 0
	DefaultSensitivity float32 = 0.1
	DefaultMoveSpeed   float32 = 2.5
	PitchLimit         float32 = 89
)

// Controls is the input state a Camera reads on Update. input.Context implements it.
type Controls interface {
	KeyDown(k input.Key) bool
	ButtonDown(b input.MouseButton) bool
	CursorPos() (x, y float32, ok bool)
	WarpCursor(x, y float32)
	SetCursorCaptured(captured bool)
}

type CameraConfig struct {
	Position    vm.Vec3
	Fov         float32 // vertical field of view in degree
	Near        float32
	Far         float32
	MoveSpeed   float32 // world units per second
	Sensitivity float32 // degree per pixel of mouse movement
}

func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:    vm.Vec3{Z: 3},
		Fov:         45,
		Near:        0.1,
		Far:         100,
		MoveSpeed:   DefaultMoveSpeed,
		Sensitivity: DefaultSensitivity,
	}
}

// Camera is a free-fly camera. Yaw and pitch are kept in degree, the basis vectors and matrices are
// derived from them and cached until the state changes again.
type Camera struct {
	pos     vm.Vec3
	yaw     float32
	pitch   float32
	front   vm.Vec3
	right   vm.Vec3
	up      vm.Vec3
	worldUp vm.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	MoveSpeed   float32
	Sensitivity float32

	// Captured cursor region, the window size in the units cursor positions arrive in
	viewport vm.Vec2

	locked     bool
	firstMouse bool
	last       vm.Vec2

	dirty    bool
	view     linmath.Mat4x4
	proj     linmath.Mat4x4
	viewProj linmath.Mat4x4
}

func NewCamera(cfg CameraConfig, width, height float32) *Camera {
	c := &Camera{
		pos:         cfg.Position,
		yaw:         DefaultYaw,
		pitch:       DefaultPitch,
		worldUp:     vm.Vec3{Y: 1},
		fov:         cfg.Fov,
		near:        cfg.Near,
		far:         cfg.Far,
		aspect:      1,
		MoveSpeed:   cfg.MoveSpeed,
		Sensitivity: cfg.Sensitivity,
		firstMouse:  true,
	}
	c.SetViewport(width, height)
	c.recalculate()
	return c
}

// Update advances the camera by dt seconds using the current input state.
func (c *Camera) Update(dt float32, in Controls) {
	if in != nil {
		c.handleKeys(dt, in)
		c.handleMouse(in)
	}
	if c.dirty {
		c.recalculate()
	}
}

func (c *Camera) handleKeys(dt float32, in Controls) {
	var move vm.Vec3
	if in.KeyDown(input.KeyW) {
		move = move.Add(c.front)
	}
	if in.KeyDown(input.KeyS) {
		move = move.Sub(c.front)
	}
	if in.KeyDown(input.KeyA) {
		move = move.Sub(c.right)
	}
	if in.KeyDown(input.KeyD) {
		move = move.Add(c.right)
	}
	if in.KeyDown(input.KeySpace) {
		move = move.Add(c.worldUp)
	}
	if in.KeyDown(input.KeyLeftShift) {
		move = move.Sub(c.worldUp)
	}
	if move == (vm.Vec3{}) {
		return
	}
	c.pos = c.pos.Add(move.ScalarMul(c.MoveSpeed * dt))
	c.dirty = true
}

func (c *Camera) handleMouse(in Controls) {
	if !c.locked && in.ButtonDown(input.MouseRight) {
		c.lock(in)
	}
	if c.locked && in.KeyDown(input.KeyEscape) {
		c.unlock(in)
	}
	if !c.locked {
		return
	}

	x, y, ok := in.CursorPos()
	if !ok {
		return
	}
	cur := vm.Vec2{X: x, Y: y}
	if c.firstMouse {
		c.last = cur
		c.firstMouse = false
	}
	dx := cur.X - c.last.X
	dy := c.last.Y - cur.Y // screen y grows downwards

	if cur.Inside(c.viewport) {
		c.last = cur
	} else {
		center := c.viewport.ScalarMul(0.5)
		in.WarpCursor(center.X, center.Y)
		c.last = center
	}
	if dx != 0 || dy != 0 {
		c.ProcessMouseMovement(dx, dy)
	}
}

func (c *Camera) lock(in Controls) {
	c.locked = true
	c.firstMouse = true
	in.SetCursorCaptured(true)
	center := c.viewport.ScalarMul(0.5)
	in.WarpCursor(center.X, center.Y)
}

func (c *Camera) unlock(in Controls) {
	c.locked = false
	in.SetCursorCaptured(false)
}

// ProcessMouseMovement turns the camera by a cursor delta in pixels. Pitch is clamped so the view
// never flips over the world up axis.
func (c *Camera) ProcessMouseMovement(dx, dy float32) {
	c.yaw += dx * c.Sensitivity
	c.pitch = vm.Clamp(c.pitch+dy*c.Sensitivity, -PitchLimit, PitchLimit)
	c.dirty = true
}

func (c *Camera) recalculate() {
	c.front = vm.SphericalDir(c.yaw, c.pitch)
	c.right = c.front.Cross(c.worldUp).Norm()
	c.up = c.right.Cross(c.front).Norm()

	c.view = vm.LookAt(c.pos, c.pos.Add(c.front), c.up)
	c.proj = vm.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProj = vm.Mul(c.proj, c.view)
	c.dirty = false
}

func (c *Camera) SetPosition(p vm.Vec3) {
	c.pos = p
	c.recalculate()
}

// SetAspect is called whenever the swapchain extent changes.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.recalculate()
}

// SetViewport updates the captured cursor region and the aspect ratio from a window size.
func (c *Camera) SetViewport(width, height float32) {
	c.SetCursorRegion(width, height)
	if height > 0 {
		c.SetAspect(width / height)
	}
}

// SetCursorRegion sets the region the cursor is kept in while the camera is locked. On high dpi screens it is
// smaller than the swapchain extent.
func (c *Camera) SetCursorRegion(width, height float32) {
	c.viewport = vm.Vec2{X: width, Y: height}
}

func (c *Camera) CursorRegion() vm.Vec2 {
	return c.viewport
}

func (c *Camera) Position() vm.Vec3 {
	return c.pos
}

func (c *Camera) Front() vm.Vec3 {
	return c.front
}

func (c *Camera) Right() vm.Vec3 {
	return c.right
}

func (c *Camera) Up() vm.Vec3 {
	return c.up
}

func (c *Camera) Yaw() float32 {
	return c.yaw
}

func (c *Camera) Pitch() float32 {
	return c.pitch
}

func (c *Camera) Aspect() float32 {
	return c.aspect
}

func (c *Camera) Locked() bool {
	return c.locked
}

func (c *Camera) View() linmath.Mat4x4 {
	return c.view
}

func (c *Camera) Projection() linmath.Mat4x4 {
	return c.proj
}

// ViewProjection returns the cached projection * view matrix.
func (c *Camera) ViewProjection() linmath.Mat4x4 {
	return c.viewProj
}

func (c *Camera) UniformBufferObject() UniformBufferObject {
	return UniformBufferObject{ViewProj: c.viewProj}
}
