// Package triangulate splits planar polygons with holes into triangles by
// ear clipping. Holes are bridged to the outer ring before clipping, so the
// result never covers a hole.
package triangulate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/segnet/pkg/geom"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rclancey/earcut"
)

var (
	ErrTooFewVertices  = errors.New("triangulate: ring needs at least 3 vertices")
	ErrNonFinite       = errors.New("triangulate: non-finite coordinate")
	ErrNotTriangulable = errors.New("triangulate: polygon could not be fully triangulated")
)

// maxDeviation is the largest accepted relative difference between the
// polygon area and the summed triangle area.
const maxDeviation = 1e-6

// Triangulate returns counter-clockwise triangles (in a y-up frame) covering
// outer minus holes. Indices refer to the concatenation of outer followed by
// every hole in order. The winding of the input rings does not matter.
func Triangulate(outer []mgl32.Vec2, holes ...[]mgl32.Vec2) ([]int, error) {
	if len(outer) < 3 {
		return nil, fmt.Errorf("%w: outer ring has %d", ErrTooFewVertices, len(outer))
	}

	data := make([]float64, 0, 2*len(outer))
	holeIndices := make([]int, 0, len(holes))
	data, err := appendRing(data, outer)
	if err != nil {
		return nil, err
	}
	for h, hole := range holes {
		if len(hole) < 3 {
			return nil, fmt.Errorf("%w: hole %d has %d", ErrTooFewVertices, h, len(hole))
		}
		holeIndices = append(holeIndices, len(data)/2)
		if data, err = appendRing(data, hole); err != nil {
			return nil, err
		}
	}

	triangles, err := earcut.Earcut(data, holeIndices, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTriangulable, err)
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: no triangles produced", ErrNotTriangulable)
	}
	if d := deviation(data, holeIndices, triangles); d > maxDeviation {
		return nil, fmt.Errorf("%w: area deviation %g", ErrNotTriangulable, d)
	}
	return triangles, nil
}

func appendRing(data []float64, ring []mgl32.Vec2) ([]float64, error) {
	for _, p := range ring {
		if !geom.IsFinite(p) {
			return nil, fmt.Errorf("%w: %v", ErrNonFinite, p)
		}
		data = append(data, float64(p[0]), float64(p[1]))
	}
	return data, nil
}

// ringArea returns twice the unsigned area of the ring in data[start:end].
func ringArea(data []float64, start, end int) float64 {
	sum := 0.0
	j := end - 2
	for i := start; i < end; i += 2 {
		sum += (data[j] - data[i]) * (data[i+1] + data[j+1])
		j = i
	}
	return math.Abs(sum)
}

// deviation returns the relative difference between the polygon area and
// the total area of the triangles.
func deviation(data []float64, holeIndices []int, triangles []int) float64 {
	outerLen := len(data)
	if len(holeIndices) > 0 {
		outerLen = holeIndices[0] * 2
	}

	polygonArea := ringArea(data, 0, outerLen)
	for i, h := range holeIndices {
		end := len(data)
		if i < len(holeIndices)-1 {
			end = holeIndices[i+1] * 2
		}
		polygonArea -= ringArea(data, h*2, end)
	}

	trianglesArea := 0.0
	for i := 0; i+2 < len(triangles); i += 3 {
		a, b, c := triangles[i]*2, triangles[i+1]*2, triangles[i+2]*2
		trianglesArea += math.Abs(
			(data[a]-data[c])*(data[b+1]-data[a+1]) -
				(data[a]-data[b])*(data[c+1]-data[a+1]))
	}

	if polygonArea == 0 && trianglesArea == 0 {
		return 0
	}
	return math.Abs((trianglesArea - polygonArea) / polygonArea)
}
