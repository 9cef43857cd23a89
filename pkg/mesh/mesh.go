// Package mesh provides indexed triangle meshes, quadric based edge-collapse
// simplification and mesh construction from height fields.
package mesh

import (
	"errors"
	"fmt"

	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// ErrInvalidMesh is returned for meshes whose buffers do not line up.
var ErrInvalidMesh = errors.New("invalid mesh")

// Color is a linear RGBA vertex color.
type Color [4]float32

// White is the default vertex color.
var White = Color{1, 1, 1, 1}

// Mesh is an indexed triangle list. Normals and Colors are each either
// empty or one entry per position.
type Mesh struct {
	Positions []pmath.Vec3
	Normals   []pmath.Vec3
	Colors    []Color
	Indices   []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min pmath.Vec3
	Max pmath.Vec3
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.Positions) }

// NumTriangles returns the triangle count.
func (m *Mesh) NumTriangles() int { return len(m.Indices) / 3 }

// Validate checks buffer lengths and index ranges.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices is not a multiple of 3", ErrInvalidMesh, len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals for %d positions", ErrInvalidMesh, len(m.Normals), len(m.Positions))
	}
	if len(m.Colors) != 0 && len(m.Colors) != len(m.Positions) {
		return fmt.Errorf("%w: %d colors for %d positions", ErrInvalidMesh, len(m.Colors), len(m.Positions))
	}
	n := uint32(len(m.Positions))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the bounding box of all positions. An empty mesh returns
// a zero box.
func (m *Mesh) Bounds() Bounds {
	if len(m.Positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Positions: append([]pmath.Vec3(nil), m.Positions...),
		Normals:   append([]pmath.Vec3(nil), m.Normals...),
		Indices:   append([]uint32(nil), m.Indices...),
	}
	if len(m.Colors) > 0 {
		out.Colors = append([]Color(nil), m.Colors...)
	}
	return out
}

// Translate adds offset to every position.
func (m *Mesh) Translate(offset pmath.Vec3) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(offset)
	}
}

// RecomputeNormals replaces the normals with area weighted face normals.
func (m *Mesh) RecomputeNormals() {
	normals := make([]pmath.Vec3, len(m.Positions))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		p0, p1, p2 := m.Positions[a], m.Positions[b], m.Positions[c]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	m.Normals = normals
}
