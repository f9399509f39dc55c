package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/segnet/pkg/aperture"
	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/geom"
	"github.com/chazu/segnet/pkg/network"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: wall-height -> wall_height
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
//  3. Line comments: ; and ;; become //.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec2 wraps a ground-plane point (x, z) or a wall-face point (u, v).
type sexpVec2 struct {
	vec mgl32.Vec2
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec[0], v.vec[1])
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpAperture wraps an aperture so it can be returned from `window`,
// `door` and `aperture` and consumed by `wall`.
type sexpAperture struct {
	ap aperture.Aperture
}

func (a *sexpAperture) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(aperture %d points at %g %g)", len(a.ap.Polygon), a.ap.Translation[0], a.ap.Translation[1])
}
func (a *sexpAperture) Type() *zygo.RegisteredType { return nil }

// sexpSegment refers to a segment added to the network.
type sexpSegment struct {
	id   network.SegmentID
	kind network.Kind
}

func (s *sexpSegment) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %d)", s.kind, s.id)
}
func (s *sexpSegment) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword with no value.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float32Arg reads an optional numeric keyword argument.
func (pa kwArgs) float32Arg(key string, def float32) (float32, error) {
	v, ok := pa.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return float32(f), nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 accepts (vec2 x y), [x y] or (list x y).
func toVec2(s zygo.Sexp) (mgl32.Vec2, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return mgl32.Vec2{}, fmt.Errorf("expected point: %w", err)
	}
	if len(items) != 2 {
		return mgl32.Vec2{}, fmt.Errorf("expected point with 2 coordinates, got %d", len(items))
	}
	var out mgl32.Vec2
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return mgl32.Vec2{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// toAperture extracts an aperture from a sexpAperture.
func toAperture(s zygo.Sexp) (aperture.Aperture, error) {
	if a, ok := s.(*sexpAperture); ok {
		return a.ap, nil
	}
	return aperture.Aperture{}, fmt.Errorf("expected aperture, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPoints converts a list of points.
func toPoints(s zygo.Sexp) ([]mgl32.Vec2, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	points := make([]mgl32.Vec2, len(items))
	for i, item := range items {
		if points[i], err = toVec2(item); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return points, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// sceneBuilder adds script-declared segments to a network.
type sceneBuilder struct {
	n   *network.Network
	cfg config.Config
}

func (b *sceneBuilder) halfWidth(kind network.Kind) float32 {
	if kind == network.KindRoad {
		return b.cfg.Road.HalfWidth
	}
	return b.cfg.Wall.HalfWidth()
}

// add snaps the segment's endpoints to nearby junctions of the same kind and
// inserts it.
func (b *sceneBuilder) add(kind network.Kind, start, end mgl32.Vec2, halfWidth float32) network.SegmentID {
	seg := b.n.SnapSegment(kind, geom.Segment{Start: start, End: end}, b.cfg.Network.SnapTolerance)
	return b.n.Add(kind, seg, halfWidth)
}

// segment implements `wall` and `road`.
func (b *sceneBuilder) segment(kind network.Kind, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("%s requires a start and an end point, got %d arguments", kind, len(pa.positional))
	}
	start, err := toVec2(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: start: %w", kind, err)
	}
	end, err := toVec2(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: end: %w", kind, err)
	}
	hw, err := pa.float32Arg("half-width", b.halfWidth(kind))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
	}

	var apertures []aperture.Aperture
	if v, ok := pa.kw["apertures"]; ok {
		if kind != network.KindWall {
			return zygo.SexpNull, fmt.Errorf("%s: only walls have apertures", kind)
		}
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: apertures: %w", kind, err)
		}
		for i, item := range items {
			ap, err := toAperture(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: aperture %d: %w", kind, i, err)
			}
			apertures = append(apertures, ap)
		}
	}

	id := b.add(kind, start, end, hw)
	if len(apertures) > 0 {
		if err := b.n.SetApertures(id, apertures); err != nil {
			return zygo.SexpNull, err
		}
	}
	return &sexpSegment{id: id, kind: kind}, nil
}

// chain implements `walls` and `room`: consecutive points joined by walls,
// optionally closing the loop.
func (b *sceneBuilder) chain(name string, closed bool, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	points := make([]mgl32.Vec2, len(pa.positional))
	for i, arg := range pa.positional {
		p, err := toVec2(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: point %d: %w", name, i, err)
		}
		points[i] = p
	}
	minPoints := 2
	if closed {
		minPoints = 3
	}
	if len(points) < minPoints {
		return zygo.SexpNull, fmt.Errorf("%s requires at least %d points, got %d", name, minPoints, len(points))
	}
	hw, err := pa.float32Arg("half-width", b.halfWidth(network.KindWall))
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}

	if closed {
		points = append(points, points[0])
	}
	for i := 1; i < len(points); i++ {
		b.add(network.KindWall, points[i-1], points[i], hw)
	}
	return zygo.SexpNull, nil
}

// registerBuiltins installs the scene builtins into a zygomys environment.
// They add segments to n as the script runs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, n *network.Network, cfg config.Config) {
	b := &sceneBuilder{n: n, cfg: cfg}

	// -----------------------------------------------------------------------
	// (vec2 1 2)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		var v mgl32.Vec2
		for i, arg := range args {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec2: coordinate %d: %w", i, err)
			}
			v[i] = float32(f)
		}
		return &sexpVec2{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (wall [0 0] [4 0] :half-width 0.1 :apertures (list (window ...)))
	// (road [0 0] [10 0] :half-width 2)
	// -----------------------------------------------------------------------
	env.AddFunction("wall", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.segment(network.KindWall, args)
	})
	env.AddFunction("road", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.segment(network.KindRoad, args)
	})

	// -----------------------------------------------------------------------
	// (walls [0 0] [4 0] [4 3])   open chain
	// (room [0 0] [4 0] [4 3] [0 3])   closed loop
	// -----------------------------------------------------------------------
	env.AddFunction("walls", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.chain("walls", false, args)
	})
	env.AddFunction("room", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return b.chain("room", true, args)
	})

	// -----------------------------------------------------------------------
	// (window :at [2 1.5] :width 1 :height 1.2)
	// -----------------------------------------------------------------------
	env.AddFunction("window", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["at"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("window requires :at")
		}
		at, err := toVec2(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("window: at: %w", err)
		}
		w, err := pa.float32Arg("width", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("window: %w", err)
		}
		h, err := pa.float32Arg("height", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("window: %w", err)
		}
		return &sexpAperture{ap: aperture.Window(at, w, h)}, nil
	})

	// -----------------------------------------------------------------------
	// (door :at 1.2 :width 0.9 :height 2.1)
	// -----------------------------------------------------------------------
	env.AddFunction("door", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		u, err := pa.float32Arg("at", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("door: %w", err)
		}
		w, err := pa.float32Arg("width", 0.9)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("door: %w", err)
		}
		h, err := pa.float32Arg("height", 2.1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("door: %w", err)
		}
		return &sexpAperture{ap: aperture.Door(u, w, h)}, nil
	})

	// -----------------------------------------------------------------------
	// (aperture :points (list [0 0] [1 0] [0.5 1]) :at [2 1] :rotation 0.3)
	// -----------------------------------------------------------------------
	env.AddFunction("aperture", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, ok := pa.kw["points"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("aperture requires :points")
		}
		points, err := toPoints(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("aperture: points: %w", err)
		}
		ap := aperture.Aperture{Polygon: points}
		if v, ok := pa.kw["at"]; ok {
			if ap.Translation, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("aperture: at: %w", err)
			}
		}
		if ap.Rotation, err = pa.float32Arg("rotation", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("aperture: %w", err)
		}
		return &sexpAperture{ap: ap}, nil
	})

	// -----------------------------------------------------------------------
	// (segment-count)
	// -----------------------------------------------------------------------
	env.AddFunction("segment_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(n.Len())}, nil
	})

	// -----------------------------------------------------------------------
	// (segment-length (wall ...))
	// -----------------------------------------------------------------------
	env.AddFunction("segment_length", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("segment-length requires exactly 1 argument")
		}
		ref, ok := args[0].(*sexpSegment)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("segment-length: expected segment, got %T (%s)", args[0], args[0].SexpString(nil))
		}
		rec, _ := n.Segment(ref.id)
		return &zygo.SexpFloat{Val: float64(rec.Segment.Len())}, nil
	})
}
