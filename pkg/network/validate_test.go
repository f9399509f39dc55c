package network

import (
	"math"
	"testing"

	"github.com/chazu/segnet/pkg/aperture"
	"github.com/chazu/segnet/pkg/config"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCleanRoom(t *testing.T) {
	n := New()
	ids := room(n)
	require.NoError(t, n.SetApertures(ids[0], []aperture.Aperture{
		aperture.Window(mgl32.Vec2{1, 1.5}, 1, 1),
		aperture.Door(3, 0.9, 2),
	}))
	n.Add(KindRoad, seg(-10, -10, 10, -10), 2)

	assert.Empty(t, Validate(n, config.Default()))
}

func TestValidateShapes(t *testing.T) {
	nan := float32(math.NaN())
	errs := validateShapes([]Record{
		{ID: 0, Segment: seg(0, 0, 1, 0), HalfWidth: hw},
		{ID: 1, Segment: seg(nan, 0, 1, 0), HalfWidth: hw},
		{ID: 2, Segment: seg(0, 0, 1, 0), HalfWidth: 0},
		{ID: 3, Segment: seg(2, 2, 2, 2), HalfWidth: hw},
	})
	require.Len(t, errs, 3)

	assert.Equal(t, []SegmentID{1}, errs[0].Segments)
	assert.Equal(t, SeverityError, errs[0].Severity)
	assert.Equal(t, []SegmentID{2}, errs[1].Segments)
	assert.Equal(t, SeverityError, errs[1].Severity)
	assert.Equal(t, []SegmentID{3}, errs[2].Segments)
	assert.Equal(t, SeverityWarning, errs[2].Severity)
}

func TestValidateApertures(t *testing.T) {
	n := New()
	w := n.Add(KindWall, seg(0, 0, 4, 0), hw)
	require.NoError(t, n.SetApertures(w, []aperture.Aperture{
		aperture.Window(mgl32.Vec2{2, 2.7}, 1, 1),
	}))

	errs := Validate(n, config.Default())
	require.Len(t, errs, 1)
	assert.Equal(t, []SegmentID{w}, errs[0].Segments)
	assert.Contains(t, errs[0].Message, aperture.ErrOutsideFace.Error())
	assert.True(t, HasErrors(errs))
}

func TestValidateAperturesAgainstMitredFace(t *testing.T) {
	n := New()
	a := n.Add(KindWall, seg(0, 0, 4, 0), hw)
	n.Add(KindWall, seg(4, 0, 4, 3), hw)
	// Inside [0, 4] but past the inner corner at 4 - hw.
	require.NoError(t, n.SetApertures(a, []aperture.Aperture{
		aperture.Window(mgl32.Vec2{3.9, 1.5}, 0.1, 1),
	}))

	errs := Validate(n, config.Default())
	require.Len(t, errs, 1)
	assert.Equal(t, []SegmentID{a}, errs[0].Segments)
	assert.Equal(t, SeverityError, errs[0].Severity)
	assert.Contains(t, errs[0].Message, "left side")
	assert.Contains(t, errs[0].Message, aperture.ErrOutsideFace.Error())

	// The same window clears a free end.
	require.NoError(t, n.Remove(1))
	assert.Empty(t, Validate(n, config.Default()))
}

func TestValidateNearMiss(t *testing.T) {
	n := New()
	n.Add(KindWall, seg(0, 0, 4, 0), hw)
	n.Add(KindWall, seg(4.02, 0, 4.02, 3), hw)
	n.Add(KindRoad, seg(4.01, 0, 10, 0), 2)

	errs := Validate(n, config.Default())
	require.Len(t, errs, 1)
	assert.Equal(t, []SegmentID{0, 1}, errs[0].Segments)
	assert.Equal(t, SeverityWarning, errs[0].Severity)
	assert.False(t, HasErrors(errs))

	cfg := config.Default()
	cfg.Network.SnapTolerance = 0
	assert.Empty(t, Validate(n, cfg))
}

func TestValidateCrossings(t *testing.T) {
	n := New()
	n.Add(KindWall, seg(0, 0, 4, 0), hw)
	n.Add(KindWall, seg(2, -1, 2, 1), hw)
	n.Add(KindRoad, seg(1, -1, 1, 1), 2)
	// T junction touching the first wall's interior is not a proper crossing.
	n.Add(KindWall, seg(3, 0, 3, 2), hw)

	errs := Validate(n, config.Default())
	require.Len(t, errs, 1)
	assert.Equal(t, []SegmentID{0, 1}, errs[0].Segments)
	assert.Contains(t, errs[0].Message, "walls cross")
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Segments: []SegmentID{1, 2}, Message: "m", Severity: SeverityWarning}
	assert.Equal(t, "[warning] segment 1, 2: m", e.Error())

	e = ValidationError{Message: "empty", Severity: SeverityError}
	assert.Equal(t, "[error] empty", e.Error())
}
