package main

import (
	"fmt"
	"strings"

	"github.com/chazu/segnet/pkg/config"
	"github.com/chazu/segnet/pkg/engine"
	"github.com/chazu/segnet/pkg/logging"
	"github.com/chazu/segnet/pkg/network"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App turns scene scripts into segment meshes.
type App struct {
	cfg    config.Config
	engine *engine.Engine
	mesher *network.Mesher
	logger *zap.Logger
}

// MeshData is the JSON-serializable mesh format written by the CLI.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	UVs      []float32 `json:"uvs"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line     int                 `json:"line"`
	Col      int                 `json:"col"`
	Message  string              `json:"message"`
	Segments []network.SegmentID `json:"segments,omitempty"`
}

// EvalResult is the full result of evaluating a scene.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App. A nil logger discards output.
func NewApp(cfg config.Config, logger *zap.Logger) *App {
	logger = logging.OrNop(logger)
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(cfg),
		mesher: network.NewMesher(cfg, logger),
		logger: logger,
	}
}

// Evaluate takes scene source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the scene into a segment network.
	n, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.logger.Error("evaluation failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 2: Validate before meshing; errors stop here, warnings ride along.
	findings := network.Validate(n, a.cfg)
	for _, f := range findings {
		data := EvalErrorData{Message: f.Message, Segments: f.Segments}
		if f.Severity == network.SeverityError {
			result.Errors = append(result.Errors, data)
		} else {
			result.Warnings = append(result.Warnings, data)
		}
	}
	if network.HasErrors(findings) {
		return result
	}

	// Step 3: Mesh every segment.
	meshes, err := a.mesher.BuildAll(n)
	if err != nil {
		a.logger.Error("meshing failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "meshing failed: " + err.Error(),
		})
		return result
	}

	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			UVs:      m.UVs,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[len(result.Meshes)%len(colorPalette)],
		})
	}

	a.logger.Info("scene evaluated",
		zap.Int("segments", n.Len()),
		zap.Int("meshes", len(result.Meshes)),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

// Summary renders the errors and warnings of a result, one per line.
func (r EvalResult) Summary() string {
	var b strings.Builder
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}

func (e EvalErrorData) String() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if len(e.Segments) > 0 {
		ids := lo.Map(e.Segments, func(id network.SegmentID, _ int) string { return fmt.Sprint(id) })
		fmt.Fprintf(&b, "segment %s: ", strings.Join(ids, ", "))
	}
	b.WriteString(e.Message)
	return b.String()
}
