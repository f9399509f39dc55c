package network

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/mesher"
	"github.com/dhconnelly/rtreego"
	"github.com/samber/lo"
)

// Severity says whether a finding prevents meshing or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // the segment cannot be meshed
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Segments []SegmentID // segments involved, empty for network-level findings
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if len(e.Segments) == 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	ids := lo.Map(e.Segments, func(id SegmentID, _ int) string { return fmt.Sprint(id) })
	return fmt.Sprintf("[%s] segment %s: %s", e.Severity, strings.Join(ids, ", "), e.Message)
}

// Validate checks the network for segments that cannot be meshed and for
// layouts that are probably mistakes. It never mutates the network.
func Validate(n *Network, cfg config.Config) []ValidationError {
	records := n.Segments()

	var errs []ValidationError
	errs = append(errs, validateShapes(records)...)
	errs = append(errs, validateApertures(n, records, cfg.Wall.Height)...)
	errs = append(errs, validateNearMisses(n, cfg.Network.SnapTolerance)...)
	errs = append(errs, validateCrossings(records)...)
	return errs
}

// HasErrors reports whether any finding is an error.
func HasErrors(errs []ValidationError) bool {
	return lo.ContainsBy(errs, func(e ValidationError) bool { return e.Severity == SeverityError })
}

func validateShapes(records []Record) []ValidationError {
	var errs []ValidationError
	for _, r := range records {
		if !geom.IsFinite(r.Segment.Start) || !geom.IsFinite(r.Segment.End) {
			errs = append(errs, ValidationError{
				Segments: []SegmentID{r.ID},
				Message:  "endpoint is not a finite number",
				Severity: SeverityError,
			})
			continue
		}
		if !(r.HalfWidth > 0) {
			errs = append(errs, ValidationError{
				Segments: []SegmentID{r.ID},
				Message:  fmt.Sprintf("half width must be positive, got %g", r.HalfWidth),
				Severity: SeverityError,
			})
		}
		if r.Segment.IsDegenerate() {
			errs = append(errs, ValidationError{
				Segments: []SegmentID{r.ID},
				Message:  "zero-length segment produces no geometry",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateApertures checks apertures against the side faces the mesher
// will build, after each wall's joints are mitred against its neighbors.
func validateApertures(n *Network, records []Record, height float32) []ValidationError {
	var errs []ValidationError
	for _, r := range records {
		if r.Kind != KindWall || len(r.Apertures) == 0 || r.Segment.IsDegenerate() {
			continue
		}
		// Reported by validateShapes.
		if !(r.HalfWidth > 0) || !geom.IsFinite(r.Segment.Start) || !geom.IsFinite(r.Segment.End) {
			continue
		}
		conns, err := n.Connections(r.ID)
		if err != nil {
			continue
		}
		wall := mesher.Wall{Height: height, Apertures: r.Apertures}
		if err := wall.CheckApertures(mesher.Resolve(r.Segment, conns, r.HalfWidth)); err != nil {
			errs = append(errs, ValidationError{
				Segments: []SegmentID{r.ID},
				Message:  err.Error(),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNearMisses finds junctions of the same kind that are close
// enough to have been meant as one.
func validateNearMisses(n *Network, tolerance float32) []ValidationError {
	if !(tolerance > 0) {
		return nil
	}

	junctions := lo.Values(n.junctions)
	slices.SortFunc(junctions, func(a, b *junction) int { return cmp.Compare(a.seq, b.seq) })

	var errs []ValidationError
	for _, j := range junctions {
		query := rtreego.Point{float64(j.key.point[0]), float64(j.key.point[1])}.ToRect(float64(tolerance))
		near := n.index.SearchIntersect(query, func(_ []rtreego.Spatial, obj rtreego.Spatial) (bool, bool) {
			o := obj.(*junction)
			return o.key.kind != j.key.kind || o.seq <= j.seq, false
		})
		slices.SortFunc(near, func(a, b rtreego.Spatial) int {
			return cmp.Compare(a.(*junction).seq, b.(*junction).seq)
		})
		for _, obj := range near {
			o := obj.(*junction)
			d := o.key.point.Sub(j.key.point).Len()
			if d > tolerance {
				continue
			}
			ids := lo.Uniq(append(refIDs(j), refIDs(o)...))
			slices.Sort(ids)
			errs = append(errs, ValidationError{
				Segments: ids,
				Message:  fmt.Sprintf("%s endpoints %v and %v are %g apart but not connected", j.key.kind, j.key.point, o.key.point, d),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func refIDs(j *junction) []SegmentID {
	return lo.Map(j.refs, func(r ref, _ int) SegmentID { return r.id })
}

// validateCrossings finds segments of the same kind whose interiors cross
// without a junction.
func validateCrossings(records []Record) []ValidationError {
	var errs []ValidationError
	for i, a := range records {
		for _, b := range records[i+1:] {
			if a.Kind != b.Kind || a.Segment.IsDegenerate() || b.Segment.IsDegenerate() {
				continue
			}
			if sharesEndpoint(a.Segment, b.Segment) || !properlyCross(a.Segment, b.Segment) {
				continue
			}
			errs = append(errs, ValidationError{
				Segments: []SegmentID{a.ID, b.ID},
				Message:  fmt.Sprintf("%ss cross without a junction", a.Kind),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func sharesEndpoint(a, b geom.Segment) bool {
	return a.Start == b.Start || a.Start == b.End || a.End == b.Start || a.End == b.End
}

// properlyCross reports whether the segments cross at a single point
// interior to both.
func properlyCross(a, b geom.Segment) bool {
	d1 := geom.PerpDot(a.Displacement(), b.Start.Sub(a.Start))
	d2 := geom.PerpDot(a.Displacement(), b.End.Sub(a.Start))
	d3 := geom.PerpDot(b.Displacement(), a.Start.Sub(b.Start))
	d4 := geom.PerpDot(b.Displacement(), a.End.Sub(b.Start))
	return d1*d2 < 0 && d3*d4 < 0
}
