package aperture

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// face is the side of a 4m long, 2.8m high wall.
var face = []mgl32.Vec2{{0, 0}, {4, 0}, {4, 2.8}, {0, 2.8}}

func assertVec(t *testing.T, want, got mgl32.Vec2) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], 1e-5)
	assert.InDelta(t, want[1], got[1], 1e-5)
}

func TestLocalAppliesRotationThenTranslation(t *testing.T) {
	a := Aperture{
		Polygon:     []mgl32.Vec2{{1, 0}, {0, 1}},
		Translation: mgl32.Vec2{2, 1},
		Rotation:    math.Pi / 2,
	}
	got := a.Local()
	require.Len(t, got, 2)
	assertVec(t, mgl32.Vec2{2, 2}, got[0])
	assertVec(t, mgl32.Vec2{1, 1}, got[1])
}

func TestWindowAndDoor(t *testing.T) {
	w := Window(mgl32.Vec2{2, 1.5}, 1, 0.8).Local()
	assertVec(t, mgl32.Vec2{1.5, 1.1}, w[0])
	assertVec(t, mgl32.Vec2{2.5, 1.9}, w[2])

	d := Door(1, 0.9, 2).Local()
	assertVec(t, mgl32.Vec2{0.55, DoorSill}, d[0])
	assertVec(t, mgl32.Vec2{1.45, 2 + DoorSill}, d[2])

	holes := Locals([]Aperture{Window(mgl32.Vec2{3, 1.5}, 1, 0.8), Door(1, 0.9, 2)})
	assert.NoError(t, ValidateFace(face, holes))
}

func TestValidateFace(t *testing.T) {
	window := Window(mgl32.Vec2{2, 1.5}, 1, 1).Local()

	tests := []struct {
		name  string
		face  []mgl32.Vec2
		holes [][]mgl32.Vec2
		index int
		want  error
	}{
		{
			name:  "face too small",
			face:  face[:2],
			index: FaceIndex,
			want:  ErrTooFewVertices,
		},
		{
			name:  "face zero area",
			face:  []mgl32.Vec2{{0, 0}, {1, 0}, {2, 0}},
			index: FaceIndex,
			want:  ErrZeroArea,
		},
		{
			name:  "hole too small",
			holes: [][]mgl32.Vec2{{{1, 1}, {2, 1}}},
			index: 0,
			want:  ErrTooFewVertices,
		},
		{
			name:  "bowtie",
			holes: [][]mgl32.Vec2{{{1, 1}, {2, 2}, {2, 1}, {1, 1.5}}},
			index: 0,
			want:  ErrSelfIntersecting,
		},
		{
			name:  "outside",
			holes: [][]mgl32.Vec2{window, Window(mgl32.Vec2{4, 1}, 1, 1).Local()},
			index: 1,
			want:  ErrOutsideFace,
		},
		{
			name:  "touching the floor",
			holes: [][]mgl32.Vec2{{{1, 0}, {2, 0}, {2, 2}, {1, 2}}},
			index: 0,
			want:  ErrOutsideFace,
		},
		{
			name:  "crossing",
			holes: [][]mgl32.Vec2{window, Window(mgl32.Vec2{2.5, 1.5}, 1, 1).Local()},
			index: 1,
			want:  ErrOverlap,
		},
		{
			name:  "nested",
			holes: [][]mgl32.Vec2{window, Window(mgl32.Vec2{2, 1.5}, 0.2, 0.2).Local()},
			index: 1,
			want:  ErrOverlap,
		},
		{
			name:  "sharing an edge",
			holes: [][]mgl32.Vec2{window, Window(mgl32.Vec2{3, 1.5}, 1, 1).Local()},
			index: 1,
			want:  ErrOverlap,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.face
			if f == nil {
				f = face
			}
			err := ValidateFace(f, tt.holes)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ValidateFace() = %v, want %v", err, tt.want)
			}
			var aerr *Error
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, tt.index, aerr.Index)
		})
	}
}

func TestValidateFaceAcceptsSeparateHoles(t *testing.T) {
	holes := [][]mgl32.Vec2{
		Window(mgl32.Vec2{1, 1.5}, 1, 1).Local(),
		Window(mgl32.Vec2{3, 1.5}, 1, 1).Local(),
	}
	assert.NoError(t, ValidateFace(face, holes))
	assert.NoError(t, ValidateFace(face, nil))
}

func TestValidateFaceRejectsNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	hole := []mgl32.Vec2{{1, 1}, {2, 1}, {nan, 2}}
	err := ValidateFace(face, [][]mgl32.Vec2{hole})
	assert.ErrorIs(t, err, ErrZeroArea)
	assert.Contains(t, err.Error(), "non-finite")
}
