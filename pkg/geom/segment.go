package geom

import "github.com/go-gl/mathgl/mgl32"

// PointKind names one of the two endpoints of a segment.
type PointKind int

const (
	Start PointKind = iota
	End
)

func (k PointKind) String() string {
	switch k {
	case Start:
		return "start"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Segment is one straight wall or road piece.
type Segment struct {
	Start mgl32.Vec2 `json:"start"`
	End   mgl32.Vec2 `json:"end"`
}

// Displacement returns End - Start.
func (s Segment) Displacement() mgl32.Vec2 {
	return s.End.Sub(s.Start)
}

// Inverse returns the segment with its endpoints swapped.
func (s Segment) Inverse() Segment {
	return Segment{Start: s.End, End: s.Start}
}

// IsDegenerate reports whether both endpoints coincide.
func (s Segment) IsDegenerate() bool {
	return s.Start == s.End
}

// Len returns the segment length.
func (s Segment) Len() float32 {
	return s.Displacement().Len()
}

// Point returns the endpoint named by kind.
func (s Segment) Point(kind PointKind) mgl32.Vec2 {
	if kind == End {
		return s.End
	}
	return s.Start
}
