// Package network stores wall and road segments and the junctions that
// connect them, and regenerates their meshes when they change.
//
// Segments live in an arena and are addressed by stable SegmentIDs. Two
// segments of the same kind are connected when they share an endpoint
// exactly; walls never connect to roads.
package network

import (
	"errors"
	"fmt"
	"slices"

	"github.com/chazu/segnet/pkg/aperture"
	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/mesher"
	"github.com/dhconnelly/rtreego"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/samber/lo"
)

var (
	ErrNotFound     = errors.New("network: segment not found")
	ErrKindMismatch = errors.New("network: operation does not apply to this segment kind")
)

// SegmentID identifies a segment for its whole lifetime. IDs are never
// reused.
type SegmentID uint32

// Kind separates walls from roads.
type Kind int

const (
	KindWall Kind = iota
	KindRoad
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindRoad:
		return "road"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Record is a snapshot of one segment.
type Record struct {
	ID        SegmentID
	Kind      Kind
	Segment   geom.Segment
	HalfWidth float32
	Apertures []aperture.Aperture
}

// PartName names the mesh generated for the segment.
func (r Record) PartName() string {
	return fmt.Sprintf("%s-%d", r.Kind, r.ID)
}

func (r *Record) clone() Record {
	c := *r
	c.Apertures = slices.Clone(r.Apertures)
	return c
}

type endpoint struct {
	kind  Kind
	point mgl32.Vec2
}

type ref struct {
	id    SegmentID
	point geom.PointKind
}

// junction is a point shared by one or more segment endpoints of the same
// kind.
type junction struct {
	key  endpoint
	seq  uint64
	refs []ref
}

// pointExtent is the half size of the box a junction occupies in the index.
const pointExtent = 1e-6

func (j *junction) Bounds() rtreego.Rect {
	return rtreego.Point{float64(j.key.point[0]), float64(j.key.point[1])}.ToRect(pointExtent)
}

// Network is an arena of segments plus an adjacency index over their
// endpoints. It is not safe for concurrent mutation.
type Network struct {
	records   []*Record
	junctions map[endpoint]*junction
	index     *rtreego.Rtree
	dirty     map[SegmentID]struct{}
	seq       uint64
}

// New returns an empty network.
func New() *Network {
	return &Network{
		junctions: make(map[endpoint]*junction),
		index:     rtreego.NewTree(2, 25, 50),
		dirty:     make(map[SegmentID]struct{}),
	}
}

// Add inserts a segment and marks it and its new neighbors dirty.
func (n *Network) Add(kind Kind, seg geom.Segment, halfWidth float32) SegmentID {
	id := SegmentID(len(n.records))
	rec := &Record{ID: id, Kind: kind, Segment: seg, HalfWidth: halfWidth}
	n.records = append(n.records, rec)
	n.link(rec)
	n.markAround(rec)
	return id
}

// Move changes a segment's endpoints. The segment and its neighbors at both
// the old and the new endpoints become dirty.
func (n *Network) Move(id SegmentID, seg geom.Segment) error {
	rec, err := n.get(id)
	if err != nil {
		return err
	}
	n.markAround(rec)
	n.unlink(rec)
	rec.Segment = seg
	n.link(rec)
	n.markAround(rec)
	return nil
}

// SetHalfWidth changes a segment's thickness. Neighbors mitre against it,
// so they become dirty too.
func (n *Network) SetHalfWidth(id SegmentID, halfWidth float32) error {
	rec, err := n.get(id)
	if err != nil {
		return err
	}
	rec.HalfWidth = halfWidth
	n.markAround(rec)
	return nil
}

// SetApertures replaces a wall's apertures.
func (n *Network) SetApertures(id SegmentID, apertures []aperture.Aperture) error {
	rec, err := n.get(id)
	if err != nil {
		return err
	}
	if rec.Kind != KindWall {
		return fmt.Errorf("%w: apertures on %s %d", ErrKindMismatch, rec.Kind, id)
	}
	rec.Apertures = slices.Clone(apertures)
	n.dirty[id] = struct{}{}
	return nil
}

// Remove deletes a segment. Its former neighbors become dirty.
func (n *Network) Remove(id SegmentID) error {
	rec, err := n.get(id)
	if err != nil {
		return err
	}
	n.markAround(rec)
	n.unlink(rec)
	n.records[id] = nil
	delete(n.dirty, id)
	return nil
}

// Segment returns a snapshot of a live segment.
func (n *Network) Segment(id SegmentID) (Record, bool) {
	rec, err := n.get(id)
	if err != nil {
		return Record{}, false
	}
	return rec.clone(), true
}

// Segments returns every live segment in ID order.
func (n *Network) Segments() []Record {
	return lo.FilterMap(n.records, func(r *Record, _ int) (Record, bool) {
		if r == nil {
			return Record{}, false
		}
		return r.clone(), true
	})
}

// Len returns the number of live segments.
func (n *Network) Len() int {
	return lo.CountBy(n.records, func(r *Record) bool { return r != nil })
}

// Connections returns the neighbors at both endpoints of a segment, in the
// order they were connected. The segment itself is never listed.
func (n *Network) Connections(id SegmentID) (mesher.Connections, error) {
	rec, err := n.get(id)
	if err != nil {
		return mesher.Connections{}, err
	}
	return mesher.Connections{
		Start: n.connectionsAt(rec, geom.Start),
		End:   n.connectionsAt(rec, geom.End),
	}, nil
}

func (n *Network) connectionsAt(rec *Record, kind geom.PointKind) []mesher.Connection {
	j := n.junctions[endpoint{rec.Kind, rec.Segment.Point(kind)}]
	if j == nil {
		return nil
	}
	var out []mesher.Connection
	for _, r := range j.refs {
		if r.id == rec.ID {
			continue
		}
		other := n.records[r.id]
		out = append(out, mesher.Connection{
			Segment:   other.Segment,
			Kind:      r.point,
			HalfWidth: other.HalfWidth,
		})
	}
	return out
}

// Dirty returns the segments whose meshes are out of date, in ID order.
func (n *Network) Dirty() []SegmentID {
	ids := lo.Keys(n.dirty)
	slices.Sort(ids)
	return ids
}

// IsDirty reports whether a segment's mesh is out of date.
func (n *Network) IsDirty(id SegmentID) bool {
	_, ok := n.dirty[id]
	return ok
}

// MarkClean clears the dirty flag of the given segments.
func (n *Network) MarkClean(ids ...SegmentID) {
	for _, id := range ids {
		delete(n.dirty, id)
	}
}

// ClearDirty clears every dirty flag.
func (n *Network) ClearDirty() {
	clear(n.dirty)
}

func (n *Network) get(id SegmentID) (*Record, error) {
	if int(id) >= len(n.records) || n.records[id] == nil {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return n.records[id], nil
}

func (n *Network) link(rec *Record) {
	for _, kind := range []geom.PointKind{geom.Start, geom.End} {
		key := endpoint{rec.Kind, rec.Segment.Point(kind)}
		j, ok := n.junctions[key]
		if !ok {
			n.seq++
			j = &junction{key: key, seq: n.seq}
			n.junctions[key] = j
			n.index.Insert(j)
		}
		j.refs = append(j.refs, ref{id: rec.ID, point: kind})
	}
}

func (n *Network) unlink(rec *Record) {
	for _, kind := range []geom.PointKind{geom.Start, geom.End} {
		key := endpoint{rec.Kind, rec.Segment.Point(kind)}
		j, ok := n.junctions[key]
		if !ok {
			continue
		}
		j.refs = lo.Reject(j.refs, func(r ref, _ int) bool {
			return r.id == rec.ID && r.point == kind
		})
		if len(j.refs) == 0 {
			delete(n.junctions, key)
			n.index.Delete(j)
		}
	}
}

// markAround marks a segment and everything sharing its endpoints dirty.
func (n *Network) markAround(rec *Record) {
	n.dirty[rec.ID] = struct{}{}
	for _, kind := range []geom.PointKind{geom.Start, geom.End} {
		if j := n.junctions[endpoint{rec.Kind, rec.Segment.Point(kind)}]; j != nil {
			for _, r := range j.refs {
				n.dirty[r.id] = struct{}{}
			}
		}
	}
}
