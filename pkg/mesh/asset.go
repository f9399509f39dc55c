package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Attribute names a per-vertex attribute slot of an Asset.
type Attribute string

const (
	AttributePosition Attribute = "position"
	AttributeUV0      Attribute = "uv0"
	AttributeNormal   Attribute = "normal"
)

// Asset is the renderable and collidable resource a segment mesh is
// committed to. Attribute values are []mgl32.Vec3 or []mgl32.Vec2; indices
// are []uint32 or []uint16.
type Asset struct {
	attributes map[Attribute]any
	indices    any
}

// NewAsset returns an asset with empty position, UV and normal attributes
// and empty u32 indices, ready to be taken by a mesher.
func NewAsset() *Asset {
	return &Asset{
		attributes: map[Attribute]any{
			AttributePosition: []mgl32.Vec3{},
			AttributeUV0:      []mgl32.Vec2{},
			AttributeNormal:   []mgl32.Vec3{},
		},
		indices: []uint32{},
	}
}

// InsertAttribute sets an attribute, replacing any previous value.
func (a *Asset) InsertAttribute(attr Attribute, values any) {
	if a.attributes == nil {
		a.attributes = make(map[Attribute]any)
	}
	a.attributes[attr] = values
}

// Attribute returns the attribute values without removing them.
func (a *Asset) Attribute(attr Attribute) (any, bool) {
	v, ok := a.attributes[attr]
	return v, ok
}

// RemoveAttribute removes and returns an attribute.
func (a *Asset) RemoveAttribute(attr Attribute) (any, bool) {
	v, ok := a.attributes[attr]
	if ok {
		delete(a.attributes, attr)
	}
	return v, ok
}

// InsertIndices sets the triangle indices.
func (a *Asset) InsertIndices(indices any) {
	a.indices = indices
}

// RemoveIndices removes and returns the triangle indices.
func (a *Asset) RemoveIndices() (any, bool) {
	v := a.indices
	a.indices = nil
	return v, v != nil
}

// Take moves the attribute storage out of the asset so that it can be
// reused for the next generation. The asset is left without attributes
// until Apply is called. Take panics if the asset lacks any attribute a
// segment mesh always has.
func Take(a *Asset) DynamicMesh {
	positions, ok := removeAs[[]mgl32.Vec3](a, AttributePosition)
	if !ok {
		panic("mesh: all segment meshes should have positions")
	}
	uvs, ok := removeAs[[]mgl32.Vec2](a, AttributeUV0)
	if !ok {
		panic("mesh: all segment meshes should have UVs")
	}
	normals, ok := removeAs[[]mgl32.Vec3](a, AttributeNormal)
	if !ok {
		panic("mesh: all segment meshes should have normals")
	}
	raw, _ := a.RemoveIndices()
	indices, ok := raw.([]uint32)
	if !ok {
		panic(fmt.Sprintf("mesh: all segment meshes should have u32 indices, got %T", raw))
	}

	return DynamicMesh{
		Positions: positions,
		UVs:       uvs,
		Normals:   normals,
		Indices:   indices,
	}
}

func removeAs[T any](a *Asset, attr Attribute) (T, bool) {
	raw, ok := a.RemoveAttribute(attr)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Apply moves the buffers into the asset, replacing its attributes and
// indices wholesale. The mesh must not be used afterwards.
func (m *DynamicMesh) Apply(a *Asset) {
	a.InsertAttribute(AttributePosition, m.Positions)
	a.InsertAttribute(AttributeUV0, m.UVs)
	a.InsertAttribute(AttributeNormal, m.Normals)
	a.InsertIndices(m.Indices)
	*m = DynamicMesh{}
}

// Mesh copies the asset's current geometry into the flat export layout.
func (a *Asset) Mesh(partName string) (*Mesh, error) {
	positions, ok := a.attributes[AttributePosition].([]mgl32.Vec3)
	if !ok {
		return nil, fmt.Errorf("mesh: asset %q has no positions", partName)
	}
	uvs, _ := a.attributes[AttributeUV0].([]mgl32.Vec2)
	normals, _ := a.attributes[AttributeNormal].([]mgl32.Vec3)

	var indices []uint32
	switch idx := a.indices.(type) {
	case []uint32:
		indices = idx
	case []uint16:
		indices = make([]uint32, len(idx))
		for i, v := range idx {
			indices[i] = uint32(v)
		}
	case nil:
	default:
		return nil, fmt.Errorf("mesh: asset %q has unsupported indices %T", partName, a.indices)
	}

	dm := DynamicMesh{Positions: positions, UVs: uvs, Normals: normals, Indices: indices}
	if err := dm.Validate(); err != nil {
		return nil, fmt.Errorf("mesh: asset %q: %w", partName, err)
	}
	return dm.Flatten(partName), nil
}
