package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Line is an infinite line through two points.
type Line struct {
	A, B mgl32.Vec2
}

// LineWithOffset returns the line through start and end translated by offset.
func LineWithOffset(start, end, offset mgl32.Vec2) Line {
	return Line{A: start.Add(offset), B: end.Add(offset)}
}

// Intersection returns the point where l crosses other. The second result is
// false when the lines are parallel or either line is degenerate.
func (l Line) Intersection(other Line) (mgl32.Vec2, bool) {
	ax, ay := float64(l.A[0]), float64(l.A[1])
	dx, dy := float64(l.B[0])-ax, float64(l.B[1])-ay
	bx, by := float64(other.A[0]), float64(other.A[1])
	ex, ey := float64(other.B[0])-bx, float64(other.B[1])-by

	denom := dx*ey - dy*ex
	scale := math.Hypot(dx, dy) * math.Hypot(ex, ey)
	if !(scale > 0) || math.Abs(denom) <= Epsilon*scale {
		return mgl32.Vec2{}, false
	}

	t := ((bx-ax)*ey - (by-ay)*ex) / denom
	return mgl32.Vec2{float32(ax + t*dx), float32(ay + t*dy)}, true
}
