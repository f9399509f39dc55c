// Package aperture describes holes cut through wall side faces (windows,
// doors) and validates them against the face they are placed on.
//
// Coordinates are in a wall side's local frame: u runs along the wall from
// its start corner, v runs up from the ground.
package aperture

import (
	"github.com/go-gl/mathgl/mgl32"
)

// DoorSill is how far above the floor a door opening starts. Openings must
// stay strictly inside the face, so a door cannot touch the ground edge.
const DoorSill float32 = 0.01

// Aperture is a hole outline placed on a wall face by rotating it about its
// local origin and then translating it.
type Aperture struct {
	Polygon     []mgl32.Vec2 `json:"polygon"`
	Translation mgl32.Vec2   `json:"translation"`
	Rotation    float32      `json:"rotation"`
}

// Local returns the outline in the wall face frame.
func (a Aperture) Local() []mgl32.Vec2 {
	rot := mgl32.Rotate2D(a.Rotation)
	out := make([]mgl32.Vec2, len(a.Polygon))
	for i, p := range a.Polygon {
		out[i] = rot.Mul2x1(p).Add(a.Translation)
	}
	return out
}

// Rectangle returns a width by height rectangle centered on the origin.
func Rectangle(width, height float32) []mgl32.Vec2 {
	w, h := width/2, height/2
	return []mgl32.Vec2{{-w, -h}, {w, -h}, {w, h}, {-w, h}}
}

// Window returns a rectangular opening centered at at.
func Window(at mgl32.Vec2, width, height float32) Aperture {
	return Aperture{Polygon: Rectangle(width, height), Translation: at}
}

// Door returns a rectangular opening centered at u along the wall, starting
// DoorSill above the floor.
func Door(u, width, height float32) Aperture {
	w := width / 2
	return Aperture{
		Polygon:     []mgl32.Vec2{{-w, 0}, {w, 0}, {w, height}, {-w, height}},
		Translation: mgl32.Vec2{u, DoorSill},
	}
}

// Locals places every aperture, preserving order.
func Locals(apertures []Aperture) [][]mgl32.Vec2 {
	out := make([][]mgl32.Vec2, len(apertures))
	for i, a := range apertures {
		out[i] = a.Local()
	}
	return out
}
