package mesher

import (
	"github.com/chazu/segnet/pkg/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// OffsetPoints returns the left and right boundary points at seg's start.
// width is seg's left width vector and halfWidth its half thickness.
//
// Without neighbors the points sit width away from the start. Otherwise
// each side is mitred against the neighbor that bounds it: the left side
// against the largest angle neighbor, the right side against the smallest.
func OffsetPoints(seg geom.Segment, width mgl32.Vec2, halfWidth float32, bounds Bounds) (left, right mgl32.Vec2) {
	switch bounds.Kind {
	case OneNeighbor, TwoNeighbors:
		maxWidth := bounds.Max.widthVector(halfWidth)
		minWidth := bounds.Min.widthVector(halfWidth)
		left = intersection(seg, width, bounds.Max.Segment, maxWidth.Mul(-1))
		right = intersection(seg, width.Mul(-1), bounds.Min.Segment.Inverse(), minWidth)
		return left, right
	default:
		return seg.Start.Add(width), seg.Start.Sub(width)
	}
}

// intersection returns where seg offset by width crosses other offset by
// otherWidth, or the start offset by width when the lines are parallel.
func intersection(seg geom.Segment, width mgl32.Vec2, other geom.Segment, otherWidth mgl32.Vec2) mgl32.Vec2 {
	otherLine := geom.LineWithOffset(other.Start, other.End, otherWidth)
	p, ok := geom.LineWithOffset(seg.Start, seg.End, width).Intersection(otherLine)
	if !ok {
		return seg.Start.Add(width)
	}
	return p
}
