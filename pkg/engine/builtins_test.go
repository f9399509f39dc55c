package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/network"
	"github.com/go-gl/mathgl/mgl32"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(window :at [1 1])`,
			expect: `(window "__kw_at" [1 1])`,
		},
		{
			name:   "multiple keywords",
			input:  `(door :width 1 :height 2)`,
			expect: `(door "__kw_width" 1 "__kw_height" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(segment-length w)`,
			expect: `(segment_length w)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative coordinate preserved",
			input:  `[-2 -3]`,
			expect: `[-2 -3]`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:half-width`,
			expect: `"__kw_half-width"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mustEvaluate(t *testing.T, source string) *network.Network {
	t.Helper()
	n, evalErrs, err := NewEngine(config.Default()).Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if n == nil {
		t.Fatal("expected non-nil network")
	}
	return n
}

func mustFail(t *testing.T, source, want string) {
	t.Helper()
	n, evalErrs, err := NewEngine(config.Default()).Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if n != nil {
		t.Fatal("expected nil network on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("error %q does not mention %q", evalErrs[0].Message, want)
	}
}

func segmentAt(t *testing.T, n *network.Network, id network.SegmentID) network.Record {
	t.Helper()
	rec, ok := n.Segment(id)
	if !ok {
		t.Fatalf("segment %d not found", id)
	}
	return rec
}

// ---------------------------------------------------------------------------
// Segment builtins
// ---------------------------------------------------------------------------

func TestWallAndRoad(t *testing.T) {
	n := mustEvaluate(t, `
(wall [0 0] [4 0])
(road [0 5] [10 5])
(wall (vec2 4 0) (vec2 4 3) :half-width 0.1)
`)
	if n.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", n.Len())
	}

	wall := segmentAt(t, n, 0)
	if wall.Kind != network.KindWall {
		t.Errorf("expected wall, got %s", wall.Kind)
	}
	want := geom.Segment{Start: mgl32.Vec2{0, 0}, End: mgl32.Vec2{4, 0}}
	if wall.Segment != want {
		t.Errorf("segment = %v, want %v", wall.Segment, want)
	}
	if wall.HalfWidth != config.Default().Wall.HalfWidth() {
		t.Errorf("default wall half width = %g", wall.HalfWidth)
	}

	road := segmentAt(t, n, 1)
	if road.Kind != network.KindRoad {
		t.Errorf("expected road, got %s", road.Kind)
	}
	if road.HalfWidth != 2 {
		t.Errorf("default road half width = %g, want 2", road.HalfWidth)
	}

	if got := segmentAt(t, n, 2).HalfWidth; got != 0.1 {
		t.Errorf("explicit half width = %g, want 0.1", got)
	}

	conns, err := n.Connections(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(conns.Start) != 1 || len(conns.End) != 0 {
		t.Errorf("expected one start neighbor, got %d start, %d end", len(conns.Start), len(conns.End))
	}
}

func TestRoomClosesLoop(t *testing.T) {
	n := mustEvaluate(t, `(room [0 0] [4 0] [4 3] [0 3])`)
	if n.Len() != 4 {
		t.Fatalf("expected 4 walls, got %d", n.Len())
	}
	for _, rec := range n.Segments() {
		conns, err := n.Connections(rec.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(conns.Start) != 1 || len(conns.End) != 1 {
			t.Errorf("wall %d: expected a neighbor at both ends, got %d and %d",
				rec.ID, len(conns.Start), len(conns.End))
		}
	}
	last := segmentAt(t, n, 3)
	if last.Segment.End != (mgl32.Vec2{0, 0}) {
		t.Errorf("loop should close at the first point, ends at %v", last.Segment.End)
	}
}

func TestWallsChainIsOpen(t *testing.T) {
	n := mustEvaluate(t, `(walls [0 0] [4 0] [4 3])`)
	if n.Len() != 2 {
		t.Fatalf("expected 2 walls, got %d", n.Len())
	}
	conns, _ := n.Connections(0)
	if len(conns.Start) != 0 {
		t.Error("open chain should not join its ends")
	}
}

func TestEndpointsSnap(t *testing.T) {
	n := mustEvaluate(t, `
(wall [0 0] [4 0])
(wall [4.02 0.01] [4 3])
(road [4.02 0] [10 0])
`)
	second := segmentAt(t, n, 1)
	if second.Segment.Start != (mgl32.Vec2{4, 0}) {
		t.Errorf("start should snap to the wall junction, got %v", second.Segment.Start)
	}
	road := segmentAt(t, n, 2)
	if road.Segment.Start != (mgl32.Vec2{4.02, 0}) {
		t.Errorf("roads do not snap to walls, got %v", road.Segment.Start)
	}
}

func TestVariableReference(t *testing.T) {
	n := mustEvaluate(t, `
(def a (vec2 0 0))
(def b (vec2 4 0))
(def w (wall a b))
(def l (segment-length w))
(wall b (vec2 4 l))
`)
	rec := segmentAt(t, n, 1)
	if rec.Segment.End != (mgl32.Vec2{4, 4}) {
		t.Errorf("expected end (4, 4), got %v", rec.Segment.End)
	}
}

func TestSegmentCount(t *testing.T) {
	n := mustEvaluate(t, `
(wall [0 0] [1 0])
(def c (segment-count))
(wall [0 0] (vec2 0 c))
`)
	rec := segmentAt(t, n, 1)
	if rec.Segment.End != (mgl32.Vec2{0, 1}) {
		t.Errorf("expected end (0, 1), got %v", rec.Segment.End)
	}
}

// ---------------------------------------------------------------------------
// Aperture builtins
// ---------------------------------------------------------------------------

func TestWallApertures(t *testing.T) {
	n := mustEvaluate(t, `
(wall [0 0] [5 0]
  :apertures (list (window :at [1.5 1.5] :width 1 :height 0.8)
                   (door :at 3.5 :width 0.9 :height 2)))
`)
	rec := segmentAt(t, n, 0)
	if len(rec.Apertures) != 2 {
		t.Fatalf("expected 2 apertures, got %d", len(rec.Apertures))
	}
	if rec.Apertures[0].Translation != (mgl32.Vec2{1.5, 1.5}) {
		t.Errorf("window at %v", rec.Apertures[0].Translation)
	}
	door := rec.Apertures[1].Local()
	if door[0][1] <= 0 {
		t.Errorf("door must start above the floor, got %v", door[0])
	}
	if math.Abs(float64(door[2][0])-3.95) > 1e-5 {
		t.Errorf("door right edge = %v, want u=3.95", door[2])
	}
}

func TestCustomAperture(t *testing.T) {
	n := mustEvaluate(t, `
(def tri (aperture :points (list [0 0] [1 0] [0.5 1]) :at [2 1] :rotation 0.5))
(wall [0 0] [4 0] :apertures (list tri))
`)
	ap := segmentAt(t, n, 0).Apertures[0]
	if len(ap.Polygon) != 3 {
		t.Fatalf("expected triangle, got %d points", len(ap.Polygon))
	}
	if ap.Rotation != 0.5 || ap.Translation != (mgl32.Vec2{2, 1}) {
		t.Errorf("placement = %v rotated %g", ap.Translation, ap.Rotation)
	}
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing end", `(wall [0 0])`, "requires a start and an end"},
		{"short point", `(wall [0] [1 0])`, "2 coordinates"},
		{"non-numeric coordinate", `(wall [0 "a"] [1 0])`, "expected number"},
		{"road apertures", `(road [0 0] [1 0] :apertures (list (window :at [1 1])))`, "only walls have apertures"},
		{"not an aperture", `(wall [0 0] [1 0] :apertures (list 3))`, "expected aperture"},
		{"window without position", `(window :width 1)`, "requires :at"},
		{"aperture without points", `(aperture :at [1 1])`, "requires :points"},
		{"room too small", `(room [0 0] [1 0])`, "at least 3 points"},
		{"vec2 arity", `(vec2 1)`, "exactly 2 arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustFail(t, tt.source, tt.want)
		})
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	n := mustEvaluate(t, `
(def w 3)
(def h (* w 2))
(wall (vec2 0 0) (vec2 w h))
`)
	rec := segmentAt(t, n, 0)
	if rec.Segment.End != (mgl32.Vec2{3, 6}) {
		t.Errorf("expected end (3, 6), got %v", rec.Segment.End)
	}
}
