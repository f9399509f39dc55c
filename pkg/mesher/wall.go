package mesher

import (
	"fmt"

	"github.com/chazu/segnet/pkg/aperture"
	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/mesh"
	"github.com/chazu/segnet/pkg/triangulate"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultWallHeight is the height of a wall in meters.
	DefaultWallHeight float32 = 2.8
	// DefaultWallWidth is the full thickness of a wall in meters.
	DefaultWallWidth float32 = 0.15
)

// collapsedFace is the side face length below which a mitred face is
// treated as having no area.
const collapsedFace = 1e-5

// Wall emits a solid wall: a top face, two side faces with the apertures
// cut out, and end caps or junction fills depending on the neighbors.
type Wall struct {
	Height    float32
	Apertures []aperture.Aperture
	// CapBottom adds a downward face at ground level, closing the mesh.
	CapBottom bool
}

// NewWall returns a wall of the default height.
func NewWall(apertures ...aperture.Aperture) Wall {
	return Wall{Height: DefaultWallHeight, Apertures: apertures}
}

// EmitFaces writes the wall into buf. It fails with a *TriangulationError
// when the apertures do not fit a side face.
func (w Wall) EmitFaces(buf *mesh.DynamicMesh, b Boundary) error {
	if !(w.Height > 0) {
		return fmt.Errorf("%w: %g", ErrInvalidHeight, w.Height)
	}

	top := w.emitTop(buf, b)

	holes := aperture.Locals(w.Apertures)
	for _, side := range []Side{Right, Left} {
		if err := w.emitSide(buf, b, side, holes); err != nil {
			return err
		}
	}

	switch b.Start.Kind {
	case NoNeighbors:
		w.emitCap(buf, b.StartLeft, b.StartRight, b.Disp.Mul(-1), b.HalfWidth, false)
	case TwoNeighbors:
		j := buf.PushVertex(geom.Extend(b.Segment.Start, w.Height), mgl32.Vec2{0, 0}, up)
		buf.PushTriangle(top+1, j, top)
	}

	switch b.End.Kind {
	case NoNeighbors:
		w.emitCap(buf, b.EndLeft, b.EndRight, b.Disp, b.HalfWidth, true)
	case TwoNeighbors:
		j := buf.PushVertex(geom.Extend(b.Segment.End, w.Height), b.Local(b.Segment.End), up)
		buf.PushTriangle(top+3, j, top+2)
	}

	if w.CapBottom {
		w.emitBottom(buf, b)
	}
	return nil
}

// emitTop writes the top face with corners in the order start left, start
// right, end right, end left and returns the index of the first one.
func (w Wall) emitTop(buf *mesh.DynamicMesh, b Boundary) uint32 {
	begin := buf.VerticesCount()
	for _, c := range [4]mgl32.Vec2{b.StartLeft, b.StartRight, b.EndRight, b.EndLeft} {
		buf.PushVertex(geom.Extend(c, w.Height), b.Local(c), up)
	}
	buf.PushTriangle(begin, begin+3, begin+1)
	buf.PushTriangle(begin+1, begin+3, begin+2)
	return begin
}

func (w Wall) emitBottom(buf *mesh.DynamicMesh, b Boundary) {
	begin := buf.VerticesCount()
	down := up.Mul(-1)
	for _, c := range [4]mgl32.Vec2{b.StartLeft, b.StartRight, b.EndRight, b.EndLeft} {
		buf.PushVertex(geom.Extend(c, 0), b.Local(c), down)
	}
	buf.PushTriangle(begin, begin+1, begin+3)
	buf.PushTriangle(begin+1, begin+2, begin+3)
}

// SideFace returns the outline of one vertical face in the frame apertures
// are defined in: u along the wall from the segment start, v up. The face
// runs between the mitred corners of that side, so it can be shorter or
// longer than the segment.
func (w Wall) SideFace(b Boundary, side Side) []mgl32.Vec2 {
	start, end := b.StartLeft, b.EndLeft
	if side == Right {
		start, end = b.StartRight, b.EndRight
	}
	dir := b.Disp.Normalize()
	u0 := dir.Dot(start.Sub(b.Segment.Start))
	u1 := dir.Dot(end.Sub(b.Segment.Start))
	return []mgl32.Vec2{{u0, 0}, {u1, 0}, {u1, w.Height}, {u0, w.Height}}
}

// CheckApertures reports the first side face the apertures do not fit.
func (w Wall) CheckApertures(b Boundary) error {
	holes := aperture.Locals(w.Apertures)
	if len(holes) == 0 {
		return nil
	}
	for _, side := range []Side{Right, Left} {
		if err := checkSide(b, side, w.SideFace(b, side), holes); err != nil {
			return err
		}
	}
	return nil
}

func checkSide(b Boundary, side Side, face []mgl32.Vec2, holes [][]mgl32.Vec2) error {
	var err error
	if isCollapsed(face) {
		err = &aperture.Error{Index: aperture.FaceIndex, Reason: aperture.ErrZeroArea}
	} else {
		err = aperture.ValidateFace(face, holes)
	}
	if err != nil {
		return &TriangulationError{Segment: b.Segment, Side: side, Err: err}
	}
	return nil
}

func isCollapsed(face []mgl32.Vec2) bool {
	d := face[1][0] - face[0][0]
	return d < collapsedFace && d > -collapsedFace
}

// emitSide writes one vertical face. Triangles come out counter-clockwise in
// the face frame, which faces left, so the right side flips them. A face
// squeezed to nothing by its mitres is skipped unless it has apertures.
func (w Wall) emitSide(buf *mesh.DynamicMesh, b Boundary, side Side, holes [][]mgl32.Vec2) error {
	face := w.SideFace(b, side)
	if len(holes) == 0 && isCollapsed(face) {
		return nil
	}

	start, end, offset := b.StartLeft, b.EndLeft, b.Width
	if side == Right {
		start, end, offset = b.StartRight, b.EndRight, b.Width.Mul(-1)
	}
	across := b.Local(start)[1]
	dir := b.Disp.Normalize()

	if len(holes) > 0 {
		if err := checkSide(b, side, face, holes); err != nil {
			return err
		}
	}
	tris, err := triangulate.Triangulate(face, holes...)
	if err != nil {
		return &TriangulationError{Segment: b.Segment, Side: side, Err: err}
	}

	normal := geom.Extend(offset.Normalize(), 0)
	begin := buf.VerticesCount()

	corners := [4]mgl32.Vec3{
		geom.Extend(start, 0),
		geom.Extend(end, 0),
		geom.Extend(end, w.Height),
		geom.Extend(start, w.Height),
	}
	for i, p := range face {
		buf.PushVertex(corners[i], mgl32.Vec2{p[0], across + p[1]}, normal)
	}

	base := b.Segment.Start.Add(offset)
	for _, hole := range holes {
		for _, p := range hole {
			pos := geom.Extend(base.Add(dir.Mul(p[0])), p[1])
			buf.PushVertex(pos, mgl32.Vec2{p[0], across + p[1]}, normal)
		}
	}

	for i := 0; i+2 < len(tris); i += 3 {
		a, c := tris[i], tris[i+2]
		if side == Right {
			a, c = c, a
		}
		buf.PushTriangle(begin+uint32(a), begin+uint32(tris[i+1]), begin+uint32(c))
	}
	return nil
}

// emitCap closes a free end with a vertical quad facing normal.
func (w Wall) emitCap(buf *mesh.DynamicMesh, left, right, normal mgl32.Vec2, halfWidth float32, back bool) {
	begin := buf.VerticesCount()
	n := geom.Extend(normal.Normalize(), 0)
	width := 2 * halfWidth

	buf.PushVertex(geom.Extend(left, 0), mgl32.Vec2{0, 0}, n)
	buf.PushVertex(geom.Extend(left, w.Height), mgl32.Vec2{0, w.Height}, n)
	buf.PushVertex(geom.Extend(right, w.Height), mgl32.Vec2{width, w.Height}, n)
	buf.PushVertex(geom.Extend(right, 0), mgl32.Vec2{width, 0}, n)

	if back {
		buf.PushTriangle(begin, begin+3, begin+1)
		buf.PushTriangle(begin+1, begin+3, begin+2)
		return
	}
	buf.PushTriangle(begin, begin+1, begin+3)
	buf.PushTriangle(begin+1, begin+2, begin+3)
}
