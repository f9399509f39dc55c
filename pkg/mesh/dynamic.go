// Package mesh holds the mutable vertex buffers that segment meshers write
// into and the renderable asset they are committed to.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrAttributeLength = errors.New("mesh: attribute lengths differ")
	ErrIndexCount      = errors.New("mesh: index count is not a multiple of 3")
	ErrIndexRange      = errors.New("mesh: index out of range")
)

// DynamicMesh is a clearable set of parallel vertex attributes plus triangle
// indices. Positions[i], UVs[i] and Normals[i] describe vertex i.
type DynamicMesh struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// VerticesCount returns the number of vertices. It panics if the count does
// not fit in a 32-bit index.
func (m *DynamicMesh) VerticesCount() uint32 {
	n := len(m.Positions)
	if uint64(n) > math.MaxUint32 {
		panic(fmt.Sprintf("mesh: %d vertices should fit u32", n))
	}
	return uint32(n)
}

// TrianglesCount returns the number of complete triangles.
func (m *DynamicMesh) TrianglesCount() int {
	return len(m.Indices) / 3
}

// PushVertex appends one vertex and returns its index.
func (m *DynamicMesh) PushVertex(position mgl32.Vec3, uv mgl32.Vec2, normal mgl32.Vec3) uint32 {
	i := m.VerticesCount()
	m.Positions = append(m.Positions, position)
	m.UVs = append(m.UVs, uv)
	m.Normals = append(m.Normals, normal)
	return i
}

// PushTriangle appends one triangle.
func (m *DynamicMesh) PushTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Clear resets all lengths to zero and keeps the allocated storage.
func (m *DynamicMesh) Clear() {
	m.Positions = m.Positions[:0]
	m.UVs = m.UVs[:0]
	m.Normals = m.Normals[:0]
	m.Indices = m.Indices[:0]
}

// IsEmpty returns true if the mesh has no geometry.
func (m *DynamicMesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Validate checks the lockstep and index range invariants.
func (m *DynamicMesh) Validate() error {
	n := len(m.Positions)
	if len(m.UVs) != n || len(m.Normals) != n {
		return fmt.Errorf("%w: %d positions, %d uvs, %d normals",
			ErrAttributeLength, n, len(m.UVs), len(m.Normals))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrIndexCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexRange, i, idx, n)
		}
	}
	return nil
}

// Flatten copies the buffers into the flat export layout.
func (m *DynamicMesh) Flatten(partName string) *Mesh {
	out := &Mesh{
		Vertices: make([]float32, 0, len(m.Positions)*3),
		Normals:  make([]float32, 0, len(m.Normals)*3),
		UVs:      make([]float32, 0, len(m.UVs)*2),
		Indices:  append([]uint32{}, m.Indices...),
		PartName: partName,
	}
	for _, p := range m.Positions {
		out.Vertices = append(out.Vertices, p[0], p[1], p[2])
	}
	for _, n := range m.Normals {
		out.Normals = append(out.Normals, n[0], n[1], n[2])
	}
	for _, uv := range m.UVs {
		out.UVs = append(out.UVs, uv[0], uv[1])
	}
	return out
}
