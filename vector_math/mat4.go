package vector_math

import (
	"unsafe"

	"github.com/xlab/linmath"
)

// Matrices are linmath.Mat4x4 values: column major, m[col][row], laid out contiguously so they can be
// copied to the GPU as they are.

// Mat4Size is the size of a 4x4 float32 matrix in bytes.
const Mat4Size = int(unsafe.Sizeof(linmath.Mat4x4{}))

func Identity() linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Identity()
	return m
}

// Translation returns translate(identity, v).
func Translation(v Vec3) linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Translate(v.X, v.Y, v.Z)
	return m
}

// LookAt builds a right-handed view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) linmath.Mat4x4 {
	var m linmath.Mat4x4
	e, c, u := eye.Lin(), center.Lin(), up.Lin()
	m.LookAt(&e, &c, &u)
	return m
}

// Perspective builds a projection for Vulkan clip space. The y-axis is flipped as Vulkan's
// framebuffer origin is top left.
func Perspective(fovDeg, aspect, near, far float32) linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Perspective(ToRad(fovDeg), aspect, near, far)
	m[1][1] *= -1
	return m
}

// Mul returns a*b.
func Mul(a, b linmath.Mat4x4) linmath.Mat4x4 {
	var m linmath.Mat4x4
	m.Mult(&a, &b)
	return m
}

// Mat4Bytes returns a copy of the matrix memory, ready for vk.Memcopy.
func Mat4Bytes(m *linmath.Mat4x4) []byte {
	b := make([]byte, Mat4Size)
	copy(b, unsafe.Slice((*byte)(unsafe.Pointer(m)), Mat4Size))
	return b
}

// MulVec4 applies m to the homogeneous point (v, w).
func MulVec4(m linmath.Mat4x4, v Vec3, w float32) Vec3 {
	in := [4]float32{v.X, v.Y, v.Z, w}
	var out [4]float32
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			out[row] += m[col][row] * in[col]
		}
	}
	return Vec3{X: out[0], Y: out[1], Z: out[2]}
}
