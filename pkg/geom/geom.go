// Package geom provides the 2D line and segment math used by the segment
// network mesher. Points live in the ground plane: X maps to world X and Y
// maps to world Z.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Epsilon is the tolerance below which two lines are treated as parallel.
const Epsilon = 1e-9

// Perp rotates v by +90 degrees.
func Perp(v mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{-v[1], v[0]}
}

// PerpDot returns the z component of the 3D cross product of a and b.
func PerpDot(a, b mgl32.Vec2) float32 {
	return a[0]*b[1] - a[1]*b[0]
}

// Angle returns the angle of v measured from the positive X axis, in (-π, π].
func Angle(v mgl32.Vec2) float32 {
	return float32(math.Atan2(float64(v[1]), float64(v[0])))
}

// SignedAngle returns the angle that rotates from onto to, in [-π, π].
// Positive angles are counter-clockwise.
func SignedAngle(from, to mgl32.Vec2) float32 {
	cross := float64(from[0])*float64(to[1]) - float64(from[1])*float64(to[0])
	dot := float64(from[0])*float64(to[0]) + float64(from[1])*float64(to[1])
	return float32(math.Atan2(cross, dot))
}

// NormalizeAngle maps an angle in [-π, π] to [0, 2π).
func NormalizeAngle(a float32) float32 {
	if a < 0 {
		return a + 2*math.Pi
	}
	return a
}

// WidthVector returns the vector of length halfWidth perpendicular to disp,
// pointing to the left of the direction of travel.
func WidthVector(disp mgl32.Vec2, halfWidth float32) mgl32.Vec2 {
	return Perp(disp).Normalize().Mul(halfWidth)
}

// Extend lifts a ground plane point to 3D at the given height.
func Extend(p mgl32.Vec2, height float32) mgl32.Vec3 {
	return mgl32.Vec3{p[0], height, p[1]}
}

// IsFinite reports whether both coordinates are finite numbers.
func IsFinite(p mgl32.Vec2) bool {
	for _, c := range p {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
