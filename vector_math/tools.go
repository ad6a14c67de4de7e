package vector_math

import "github.com/chewxy/math32"

// ToRad is a helper function to turn degree to radians
func ToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// ToDeg is a helper function to turn radians to degree
func ToDeg(rad float32) float32 {
	return rad * 180 / math32.Pi
}

func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SphericalDir converts yaw and pitch (degrees) into a unit direction. A yaw of -90 with zero pitch
// looks down the negative z-axis.
func SphericalDir(yawDeg, pitchDeg float32) Vec3 {
	yaw := ToRad(yawDeg)
	pitch := ToRad(pitchDeg)
	return Vec3{
		X: math32.Cos(yaw) * math32.Cos(pitch),
		Y: math32.Sin(pitch),
		Z: math32.Sin(yaw) * math32.Cos(pitch),
	}.Norm()
}
