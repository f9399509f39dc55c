package main

import (
	"fmt"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Comments and whitespace
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	result := newTestApp().Evaluate(";; nothing here\n; or here\n")
	requireNoErrors(t, result)
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	result := newTestApp().Evaluate("  \n\t \n")
	requireNoErrors(t, result)
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// Syntax errors carry line info where zygomys provides it.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	result := newTestApp().Evaluate("(wall [0 0] [1 0])\n(wall [0 0]")
	if len(result.Errors) == 0 {
		t.Fatal("expected an error")
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("error message should not be empty")
	}
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	}
}

func TestE2EUndefinedSymbol(t *testing.T) {
	result := newTestApp().Evaluate(`(wall [0 0] no-such-point)`)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for an undefined symbol")
	}
}

// ---------------------------------------------------------------------------
// Bad dimensions
// ---------------------------------------------------------------------------

func TestE2EZeroHalfWidth(t *testing.T) {
	result := newTestApp().Evaluate(`(wall [0 0] [4 0] :half-width 0)`)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "half width") {
		t.Errorf("unexpected message %q", result.Errors[0].Message)
	}
}

func TestE2ENegativeHalfWidth(t *testing.T) {
	result := newTestApp().Evaluate(`(road [0 0] [4 0] :half-width -1)`)
	if len(result.Errors) == 0 {
		t.Fatal("expected an error for a negative half width")
	}
}

func TestE2ELongWall(t *testing.T) {
	result := newTestApp().Evaluate(`(wall [-500 0] [500 0])`)
	requireNoErrors(t, result)
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	checkMesh(t, result.Meshes[0])
}

// ---------------------------------------------------------------------------
// Rapid evaluation: no panics, engine recovers between error and success.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	app := newTestApp()

	sources := []string{
		`(wall [0 0] [1 0])`,
		`(wall [0 0]`,
		``,
		`(window :width 1)`,
		`(room [0 0] [2 0] [2 2] [0 2])`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(road [0 0] [5 0]) (road [5 0] [5 5]) (road [5 0] [10 0])`,
		`(undefined-func 1 2 3)`,
		`(walls [0 0] [1 0] [1 1])`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	// Still healthy after the churn.
	result := app.Evaluate(`(room [0 0] [2 0] [2 2] [0 2])`)
	requireNoErrors(t, result)
	if len(result.Meshes) != 4 {
		t.Errorf("expected 4 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// Colors
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	var b strings.Builder
	for i := 0; i < len(colorPalette)+2; i++ {
		fmt.Fprintf(&b, "(wall [%d 0] [%d 1])\n", 2*i, 2*i)
	}

	result := newTestApp().Evaluate(b.String())
	requireNoErrors(t, result)
	if len(result.Meshes) != len(colorPalette)+2 {
		t.Fatalf("expected %d meshes, got %d", len(colorPalette)+2, len(result.Meshes))
	}
	for i, m := range result.Meshes {
		if want := colorPalette[i%len(colorPalette)]; m.Color != want {
			t.Errorf("mesh %d: color %s, want %s", i, m.Color, want)
		}
	}
}
