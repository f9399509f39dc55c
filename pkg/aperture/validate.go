package aperture

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/segnet/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrTooFewVertices   = errors.New("fewer than 3 vertices")
	ErrZeroArea         = errors.New("zero area")
	ErrSelfIntersecting = errors.New("self-intersecting outline")
	ErrOutsideFace      = errors.New("not strictly inside the face")
	ErrOverlap          = errors.New("overlaps another aperture")
)

// ContactEpsilon is the minimum clearance between an aperture and the face
// boundary or another aperture.
const ContactEpsilon = 1e-4

// FaceIndex is the Error.Index used when the face itself is invalid.
const FaceIndex = -1

// Error reports which outline failed validation.
type Error struct {
	Index  int // aperture index, or FaceIndex
	Reason error
}

func (e *Error) Error() string {
	if e.Index == FaceIndex {
		return fmt.Sprintf("aperture: face: %v", e.Reason)
	}
	return fmt.Sprintf("aperture %d: %v", e.Index, e.Reason)
}

func (e *Error) Unwrap() error { return e.Reason }

// ValidateFace checks that face is a simple polygon and that every hole is
// a simple polygon lying strictly inside it without touching any other hole.
func ValidateFace(face []mgl32.Vec2, holes [][]mgl32.Vec2) error {
	if err := checkRing(face); err != nil {
		return &Error{Index: FaceIndex, Reason: err}
	}
	faceSDF, err := polygonSDF(face)
	if err != nil {
		return err
	}

	holeSDFs := make([]sdf.SDF2, len(holes))
	for i, hole := range holes {
		if err := checkRing(hole); err != nil {
			return &Error{Index: i, Reason: err}
		}
		for _, p := range hole {
			if faceSDF.Evaluate(toV2(p)) > -ContactEpsilon {
				return &Error{Index: i, Reason: ErrOutsideFace}
			}
		}
		if ringsCross(hole, face) {
			return &Error{Index: i, Reason: ErrOutsideFace}
		}
		if holeSDFs[i], err = polygonSDF(hole); err != nil {
			return err
		}

		for j := 0; j < i; j++ {
			if ringsCross(hole, holes[j]) ||
				anyWithin(hole, holeSDFs[j]) ||
				anyWithin(holes[j], holeSDFs[i]) {
				return &Error{Index: i, Reason: fmt.Errorf("%w %d", ErrOverlap, j)}
			}
		}
	}
	return nil
}

func polygonSDF(ring []mgl32.Vec2) (sdf.SDF2, error) {
	vs := make([]v2.Vec, len(ring))
	for i, p := range ring {
		vs[i] = toV2(p)
	}
	s, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("aperture: polygon sdf: %w", err)
	}
	return s, nil
}

func toV2(p mgl32.Vec2) v2.Vec {
	return v2.Vec{X: float64(p[0]), Y: float64(p[1])}
}

// anyWithin reports whether any point of ring is inside or within
// ContactEpsilon of the shape s.
func anyWithin(ring []mgl32.Vec2, s sdf.SDF2) bool {
	for _, p := range ring {
		if s.Evaluate(toV2(p)) < ContactEpsilon {
			return true
		}
	}
	return false
}

func checkRing(ring []mgl32.Vec2) error {
	if len(ring) < 3 {
		return ErrTooFewVertices
	}
	for _, p := range ring {
		if !geom.IsFinite(p) {
			return fmt.Errorf("%w: non-finite vertex %v", ErrZeroArea, p)
		}
	}
	if math.Abs(signedArea(ring)) <= ContactEpsilon*ContactEpsilon {
		return ErrZeroArea
	}
	if selfIntersects(ring) {
		return ErrSelfIntersecting
	}
	return nil
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []mgl32.Vec2) float64 {
	sum := 0.0
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		sum += float64(a[0])*float64(b[1]) - float64(b[0])*float64(a[1])
	}
	return sum / 2
}

func selfIntersects(ring []mgl32.Vec2) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Adjacent edges share an endpoint.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			if segmentsTouch(a1, a2, ring[j], ring[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

func ringsCross(a, b []mgl32.Vec2) bool {
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if segmentsTouch(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

// segmentsTouch reports whether closed segments pq and rs share a point.
func segmentsTouch(p, q, r, s mgl32.Vec2) bool {
	o1 := orient(p, q, r)
	o2 := orient(p, q, s)
	o3 := orient(r, s, p)
	o4 := orient(r, s, q)

	if o1 != o2 && o3 != o4 {
		return true
	}
	return (o1 == 0 && between(p, r, q)) ||
		(o2 == 0 && between(p, s, q)) ||
		(o3 == 0 && between(r, p, s)) ||
		(o4 == 0 && between(r, q, s))
}

func orient(a, b, c mgl32.Vec2) int {
	v := (float64(b[0])-float64(a[0]))*(float64(c[1])-float64(a[1])) -
		(float64(b[1])-float64(a[1]))*(float64(c[0])-float64(a[0]))
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// between reports whether q lies within the bounding box of pr.
func between(p, q, r mgl32.Vec2) bool {
	return q[0] <= max(p[0], r[0]) && q[0] >= min(p[0], r[0]) &&
		q[1] <= max(p[1], r[1]) && q[1] >= min(p[1], r[1])
}
