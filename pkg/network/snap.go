package network

import (
	"cmp"
	"slices"

	"github.com/chazu/segnet/pkg/geom"
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl32"
)

// Snap returns the junction of the given kind closest to p, if one lies
// within tolerance. Ties go to the oldest junction.
func (n *Network) Snap(kind Kind, p mgl32.Vec2, tolerance float32) (mgl32.Vec2, bool) {
	j := n.nearestJunction(kind, p, tolerance, nil)
	if j == nil {
		return p, false
	}
	return j.key.point, true
}

// SnapSegment snaps both endpoints of seg. Endpoints with nothing in range
// are returned unchanged.
func (n *Network) SnapSegment(kind Kind, seg geom.Segment, tolerance float32) geom.Segment {
	seg.Start, _ = n.Snap(kind, seg.Start, tolerance)
	seg.End, _ = n.Snap(kind, seg.End, tolerance)
	return seg
}

func (n *Network) nearestJunction(kind Kind, p mgl32.Vec2, tolerance float32, skip *junction) *junction {
	if !(tolerance > 0) {
		if j := n.junctions[endpoint{kind, p}]; j != nil && j != skip {
			return j
		}
		return nil
	}

	sameKind := func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		j := obj.(*junction)
		return j.key.kind != kind || j == skip, false
	}
	query := rtreego.Point{float64(p[0]), float64(p[1])}.ToRect(float64(tolerance))

	type candidate struct {
		j    *junction
		dist float32
	}
	var cands []candidate
	for _, obj := range n.index.SearchIntersect(query, sameKind) {
		j := obj.(*junction)
		d := j.key.point.Sub(p).Len()
		if d <= tolerance {
			cands = append(cands, candidate{j, d})
		}
	}
	if len(cands) == 0 {
		return nil
	}

	best := slices.MinFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.j.seq, b.j.seq)
	})
	return best.j
}
