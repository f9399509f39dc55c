// Package mesher generates the meshes of connected wall and road segments.
//
// Every segment gets its own mesh. At each endpoint the connected neighbors
// decide the shape of the joint: a lone endpoint is cut square, a single
// neighbor produces a mitre whose corners coincide with the neighbor's own,
// and two or more neighbors mitre against the outermost pair and fill the
// gap in the middle with a triangle.
package mesher

import (
	"errors"
	"fmt"

	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidWidth  = errors.New("mesher: half width must be positive")
	ErrInvalidHeight = errors.New("mesher: height must be positive")
	ErrNonFinite     = errors.New("mesher: non-finite endpoint")
)

var up = mgl32.Vec3{0, 1, 0}

// Boundary is the footprint of a segment after its joints are resolved.
type Boundary struct {
	Segment   geom.Segment
	Disp      mgl32.Vec2
	Width     mgl32.Vec2 // points to the left, length HalfWidth
	HalfWidth float32
	Angle     float32    // rotates Disp onto the +X axis
	Rotation  mgl32.Mat2 // rotation by Angle

	StartLeft, StartRight mgl32.Vec2
	EndLeft, EndRight     mgl32.Vec2

	Start, End Bounds
}

// Local returns p relative to the segment start in the segment frame:
// X along the segment, Y across it towards the left.
func (b Boundary) Local(p mgl32.Vec2) mgl32.Vec2 {
	return b.Rotation.Mul2x1(p.Sub(b.Segment.Start))
}

// FaceEmitter writes the faces of one segment kind into the buffer.
type FaceEmitter interface {
	EmitFaces(buf *mesh.DynamicMesh, b Boundary) error
}

// Generate clears buf and fills it with the mesh of seg. A degenerate
// segment produces an empty mesh. On error buf is left empty.
func Generate(buf *mesh.DynamicMesh, seg geom.Segment, conns Connections, halfWidth float32, faces FaceEmitter) error {
	buf.Clear()

	if seg.IsDegenerate() {
		return nil
	}
	if !geom.IsFinite(seg.Start) || !geom.IsFinite(seg.End) {
		return fmt.Errorf("%w: %v -> %v", ErrNonFinite, seg.Start, seg.End)
	}
	if !(halfWidth > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidWidth, halfWidth)
	}

	b := Resolve(seg, conns, halfWidth)
	if err := faces.EmitFaces(buf, b); err != nil {
		buf.Clear()
		return err
	}
	return nil
}

// Resolve computes the boundary of a non-degenerate segment.
func Resolve(seg geom.Segment, conns Connections, halfWidth float32) Boundary {
	disp := seg.Displacement()
	angle := -geom.Angle(disp)
	width := geom.WidthVector(disp, halfWidth)

	b := Boundary{
		Segment:   seg,
		Disp:      disp,
		Width:     width,
		HalfWidth: halfWidth,
		Angle:     angle,
		Rotation:  mgl32.Rotate2D(angle),
	}

	b.Start = MinMaxAngles(disp, geom.Start, conns.At(geom.Start))
	b.StartLeft, b.StartRight = OffsetPoints(seg, width, halfWidth, b.Start)

	// Seen from the end the segment runs backwards, so left and right swap.
	b.End = MinMaxAngles(disp.Mul(-1), geom.End, conns.At(geom.End))
	b.EndRight, b.EndLeft = OffsetPoints(seg.Inverse(), width.Mul(-1), halfWidth, b.End)

	return b
}

// Side names one of the two vertical faces of a wall.
type Side int

const (
	Right Side = iota
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// TriangulationError reports a side face that could not be triangulated,
// usually because of invalid aperture geometry.
type TriangulationError struct {
	Segment geom.Segment
	Side    Side
	Err     error
}

func (e *TriangulationError) Error() string {
	return fmt.Sprintf("mesher: %s side of segment %v -> %v: %v",
		e.Side, e.Segment.Start, e.Segment.End, e.Err)
}

func (e *TriangulationError) Unwrap() error { return e.Err }
