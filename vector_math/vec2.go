package vector_math

import "github.com/chewxy/math32"

type Vec2 struct {
	X, Y float32
}

func (v Vec2) Dot(w Vec2) float32 {
	return (v.X * w.X) + (v.Y * w.Y)
}

func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{
		X: v.X - w.X,
		Y: v.Y - w.Y,
	}
}

func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{
		X: v.X + w.X,
		Y: v.Y + w.Y,
	}
}

func (v Vec2) ScalarMul(factor float32) Vec2 {
	return Vec2{
		X: v.X * factor,
		Y: v.Y * factor,
	}
}

func (v Vec2) Len() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Inside reports whether v lies in the closed rectangle spanned by the origin and max.
func (v Vec2) Inside(max Vec2) bool {
	return v.X >= 0 && v.Y >= 0 && v.X <= max.X && v.Y <= max.Y
}
