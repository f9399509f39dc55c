package mesher

import (
	"math"

	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultRoadElevation lifts road surfaces just above the ground so they do
// not z-fight with it.
const DefaultRoadElevation float32 = 0.001

// Road emits a flat road surface with a fill triangle at junctions of three
// or more roads. Roads have no end caps.
type Road struct {
	Elevation float32
}

// NewRoad returns a road at the default elevation.
func NewRoad() Road {
	return Road{Elevation: DefaultRoadElevation}
}

// EmitFaces writes the road surface into buf. It never fails.
func (r Road) EmitFaces(buf *mesh.DynamicMesh, b Boundary) error {
	// The texture runs along the road, so U spans the width and V the length.
	rotation := mgl32.Rotate2D(b.Angle + math.Pi/2)
	width := 2 * b.HalfWidth
	v := func(p mgl32.Vec2) float32 {
		return rotation.Mul2x1(p.Sub(b.Segment.Start))[1] / width
	}

	begin := buf.VerticesCount()
	buf.PushVertex(geom.Extend(b.StartLeft, r.Elevation), mgl32.Vec2{0, v(b.StartLeft)}, up)
	buf.PushVertex(geom.Extend(b.StartRight, r.Elevation), mgl32.Vec2{1, v(b.StartRight)}, up)
	buf.PushVertex(geom.Extend(b.EndRight, r.Elevation), mgl32.Vec2{1, v(b.EndRight)}, up)
	buf.PushVertex(geom.Extend(b.EndLeft, r.Elevation), mgl32.Vec2{0, v(b.EndLeft)}, up)
	buf.PushTriangle(begin, begin+3, begin+1)
	buf.PushTriangle(begin+1, begin+3, begin+2)

	if b.Start.Kind == TwoNeighbors {
		j := buf.PushVertex(geom.Extend(b.Segment.Start, r.Elevation), mgl32.Vec2{0.5, 0}, up)
		buf.PushTriangle(begin+1, j, begin)
	}
	if b.End.Kind == TwoNeighbors {
		j := buf.PushVertex(geom.Extend(b.Segment.End, r.Elevation), mgl32.Vec2{0.5, v(b.Segment.End)}, up)
		buf.PushTriangle(begin+3, j, begin+2)
	}
	return nil
}
