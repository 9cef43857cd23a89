package mesh

import (
	"fmt"

	"github.com/Faultbox/procmesh/pkg/grid"
	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// BuildGridMesh turns a height field into a regular triangle grid with one
// vertex per cell. X and Y are spaced by cellSize and Z is the cell height
// times heightScale. Normals follow the scaled surface.
func BuildGridMesh(f *grid.HeightField, cellSize, heightScale float32) (*Mesh, error) {
	if !f.Valid() || f.Width < 2 || f.Height < 2 {
		return nil, fmt.Errorf("%w: height field %s too small for a grid mesh", ErrInvalidMesh, f)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("%w: cell size %v", ErrInvalidMesh, cellSize)
	}

	w, h := f.Width, f.Height
	m := &Mesh{
		Positions: make([]pmath.Vec3, 0, w*h),
		Normals:   make([]pmath.Vec3, 0, w*h),
		Colors:    make([]Color, 0, w*h),
		Indices:   make([]uint32, 0, (w-1)*(h-1)*6),
	}

	// HeightNormal assumes unit spacing and unscaled heights
	slope := heightScale / cellSize

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			height, n := f.HeightNormal(float32(x), float32(y))
			n = pmath.Vec3{X: n.X * slope, Y: n.Y * slope, Z: n.Z}.Normalize()

			m.Positions = append(m.Positions, pmath.Vec3{
				X: float32(x) * cellSize,
				Y: float32(y) * cellSize,
				Z: height * heightScale,
			})
			m.Normals = append(m.Normals, n)
			m.Colors = append(m.Colors, White)
		}
	}

	m.Indices = appendGridIndices(m.Indices, w, h)
	return m, nil
}

// PlaneMesh builds a flat cells x cells plane of unit squares facing +Z.
func PlaneMesh(cells int) *Mesh {
	if cells < 1 {
		cells = 1
	}
	n := cells + 1
	m := &Mesh{
		Positions: make([]pmath.Vec3, 0, n*n),
		Normals:   make([]pmath.Vec3, 0, n*n),
		Indices:   make([]uint32, 0, cells*cells*6),
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			m.Positions = append(m.Positions, pmath.Vec3{X: float32(x), Y: float32(y)})
			m.Normals = append(m.Normals, pmath.Vec3{Z: 1})
		}
	}
	m.Indices = appendGridIndices(m.Indices, n, n)
	return m
}

// appendGridIndices emits two counter-clockwise triangles per cell of a
// w x h vertex lattice.
func appendGridIndices(dst []uint32, w, h int) []uint32 {
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			i := uint32(x + y*w)
			right := i + 1
			up := i + uint32(w)
			dst = append(dst,
				i, right, up,
				right, up+1, up,
			)
		}
	}
	return dst
}
