package mesher

import (
	"github.com/chazu/segnet/pkg/geom"
	"github.com/go-gl/mathgl/mgl32"
)

// Connection records that another segment touches this one with its Kind
// endpoint.
type Connection struct {
	Segment geom.Segment
	Kind    geom.PointKind
	// HalfWidth is the neighbor's own half thickness. Zero means it has
	// the same thickness as the segment being generated.
	HalfWidth float32
}

// Connections lists the neighbors at each endpoint, in insertion order.
type Connections struct {
	Start []Connection
	End   []Connection
}

// At returns the connections at the given endpoint.
func (c Connections) At(kind geom.PointKind) []Connection {
	if kind == geom.End {
		return c.End
	}
	return c.Start
}

// BoundsKind says how many neighbors an endpoint has, capped at two.
type BoundsKind int

const (
	NoNeighbors BoundsKind = iota
	OneNeighbor
	TwoNeighbors
)

func (k BoundsKind) String() string {
	switch k {
	case NoNeighbors:
		return "none"
	case OneNeighbor:
		return "one"
	case TwoNeighbors:
		return "two"
	default:
		return "unknown"
	}
}

// Neighbor is a connected segment oriented to leave the shared point.
type Neighbor struct {
	Segment   geom.Segment
	HalfWidth float32
}

// widthVector returns the neighbor's left width vector, using fallback when
// the neighbor has no thickness of its own.
func (n Neighbor) widthVector(fallback float32) mgl32.Vec2 {
	hw := n.HalfWidth
	if hw <= 0 {
		hw = fallback
	}
	return geom.WidthVector(n.Segment.Displacement(), hw)
}

// Bounds holds the neighbors with the smallest and largest angle at one
// endpoint. For OneNeighbor, Min and Max are the same neighbor.
type Bounds struct {
	Kind BoundsKind
	Min  Neighbor
	Max  Neighbor
}

// MinMaxAngles picks the neighbors with the smallest and largest
// counter-clockwise angle measured from each neighbor's direction to
// direction, in [0, 2π). Neighbors are first oriented to leave the shared
// point. Ties go to the earliest connection for the minimum and the latest
// for the maximum. Degenerate neighbors are ignored.
func MinMaxAngles(direction mgl32.Vec2, kind geom.PointKind, connections []Connection) Bounds {
	var (
		b              Bounds
		minKey, maxKey float32
	)
	for _, c := range connections {
		seg := c.Segment
		if c.Kind == geom.End {
			seg = seg.Inverse()
		}
		if seg.IsDegenerate() {
			continue
		}

		n := Neighbor{Segment: seg, HalfWidth: c.HalfWidth}
		key := geom.NormalizeAngle(geom.SignedAngle(seg.Displacement(), direction))

		switch b.Kind {
		case NoNeighbors:
			b = Bounds{Kind: OneNeighbor, Min: n, Max: n}
			minKey, maxKey = key, key
		default:
			b.Kind = TwoNeighbors
			if key < minKey {
				b.Min, minKey = n, key
			}
			if key >= maxKey {
				b.Max, maxKey = n, key
			}
		}
	}
	return b
}
