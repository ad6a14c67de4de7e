package vector_math

import (
	"github.com/chewxy/math32"
	"github.com/xlab/linmath"
)

type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		X: (v.Y * w.Z) - (v.Z * w.Y),
		Y: (v.Z * w.X) - (v.X * w.Z),
		Z: (v.X * w.Y) - (v.Y * w.X),
	}
}

func (v Vec3) Dot(w Vec3) float32 {
	return (v.X * w.X) + (v.Y * w.Y) + (v.Z * w.Z)
}

func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{
		X: v.X - w.X,
		Y: v.Y - w.Y,
		Z: v.Z - w.Z,
	}
}

func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{
		X: v.X + w.X,
		Y: v.Y + w.Y,
		Z: v.Z + w.Z,
	}
}

func (v Vec3) ScalarMul(factor float32) Vec3 {
	return Vec3{
		X: v.X * factor,
		Y: v.Y * factor,
		Z: v.Z * factor,
	}
}

func (v Vec3) Len() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Norm returns the unit vector pointing in the direction of v. The zero vector is returned unchanged
// instead of producing NaN components.
func (v Vec3) Norm() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vec3{
		X: v.X / l,
		Y: v.Y / l,
		Z: v.Z / l,
	}
}

// ApproxEqual compares component wise with an absolute tolerance.
func (v Vec3) ApproxEqual(w Vec3, eps float32) bool {
	return math32.Abs(v.X-w.X) <= eps && math32.Abs(v.Y-w.Y) <= eps && math32.Abs(v.Z-w.Z) <= eps
}

// Lin converts to the linmath representation used by the matrix helpers.
func (v Vec3) Lin() linmath.Vec3 {
	return linmath.Vec3{v.X, v.Y, v.Z}
}
