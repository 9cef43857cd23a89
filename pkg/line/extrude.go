package line

import (
	"errors"
	"fmt"

	pmath "github.com/Faultbox/procmesh/pkg/math"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

// ErrTooFewPoints is returned when a polyline has fewer than two distinct
// points.
var ErrTooFewPoints = errors.New("polyline needs at least two distinct points")

// Left and right side vertex colors; each extruded point emits a left then
// a right vertex.
var (
	LeftColor  = mesh.Color{0, 0, 0, 1}
	RightColor = mesh.Color{1, 0, 0, 1}
)

// Extruder turns a 2D polyline into a triangle strip of constant width.
type Extruder struct {
	// Thickness is the full strip width.
	Thickness float32 `yaml:"thickness"`
	// MiterLimit is the largest miter length, in half thicknesses, before
	// a join falls back to a bevel.
	MiterLimit float32 `yaml:"miter_limit"`
	// SquareCap pushes both ends out by half the thickness.
	SquareCap bool `yaml:"square_cap"`
	// Bevel forces bevel joins everywhere.
	Bevel bool `yaml:"bevel"`
}

// DefaultExtruder returns a unit width extruder with mitered joins.
func DefaultExtruder() Extruder {
	return Extruder{Thickness: 1, MiterLimit: 10}
}

// Extrude builds the strip in the z=0 plane with +Z normals. Repeated
// consecutive points are ignored.
func (e Extruder) Extrude(points []pmath.Vec2) (*mesh.Mesh, error) {
	if e.Thickness <= 0 {
		return nil, fmt.Errorf("line thickness must be positive, got %v", e.Thickness)
	}
	if e.MiterLimit <= 0 {
		return nil, fmt.Errorf("miter limit must be positive, got %v", e.MiterLimit)
	}

	pts := dedupe(points)
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(pts))
	}

	b := strip{Extruder: e, halfThick: e.Thickness * 0.5, lastFlip: -1}
	count := 0
	for i := 1; i < len(pts); i++ {
		var next pmath.Vec2
		hasNext := i < len(pts)-1
		if hasNext {
			next = pts[i+1]
		}
		count += b.segment(count, pts[i-1], pts[i], next, hasNext)
	}

	m := &mesh.Mesh{
		Positions: make([]pmath.Vec3, len(b.positions)),
		Normals:   make([]pmath.Vec3, len(b.positions)),
		Colors:    make([]mesh.Color, len(b.positions)),
		Indices:   b.indices,
	}
	for i, p := range b.positions {
		m.Positions[i] = pmath.Vec3{X: p.X, Y: p.Y}
		m.Normals[i] = pmath.Vec3{Z: 1}
		m.Colors[i] = LeftColor
		if i%2 == 1 {
			m.Colors[i] = RightColor
		}
	}
	return m, nil
}

func dedupe(points []pmath.Vec2) []pmath.Vec2 {
	out := make([]pmath.Vec2, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}

// strip accumulates the extruded vertices. Segment i shares its first two
// vertices with the end of segment i-1.
type strip struct {
	Extruder
	halfThick float32
	started   bool
	lastFlip  int
	normal    pmath.Vec2
	positions []pmath.Vec2
	indices   []uint32
}

func (s *strip) tri(a, b, c int) {
	s.indices = append(s.indices, uint32(a), uint32(b), uint32(c))
}

// closeQuad emits the second triangle of a segment quad, wound by the
// side the previous join turned to.
func (s *strip) closeQuad(index int, sameSide bool) {
	if sameSide {
		s.tri(index, index+2, index+3)
		return
	}
	s.tri(index+2, index+1, index+3)
}

func (s *strip) extrusion(p, n pmath.Vec2, scale float32) {
	s.positions = append(s.positions, p.Add(n.Scale(-scale)), p.Add(n.Scale(scale)))
}

// segment appends the vertices ending the segment prev-cur and returns how
// many it added.
func (s *strip) segment(index int, prev, cur, next pmath.Vec2, hasNext bool) int {
	dirA := normalize(cur.Sub(prev))

	if !s.started {
		s.started = true
		s.normal = perpendicular(dirA)
		if s.SquareCap {
			prev = prev.Add(dirA.Scale(-s.halfThick))
		}
		s.extrusion(prev, s.normal, s.halfThick)
	}

	s.tri(index, index+1, index+2)

	if !hasNext {
		s.normal = perpendicular(dirA)
		if s.SquareCap {
			cur = cur.Add(dirA.Scale(s.halfThick))
		}
		s.extrusion(cur, s.normal, s.halfThick)
		s.closeQuad(index, s.lastFlip == 1)
		return 2
	}

	dirB := normalize(next.Sub(cur))
	tangent, miter, miterLen := computeMiter(dirA, dirB, s.halfThick)

	flip := 1
	if tangent.Dot(s.normal) < 0 {
		flip = -1
	}

	// Reversals have no usable miter and always bevel.
	bevel := s.Bevel || miterLen == 0 || miterLen/s.halfThick > s.MiterLimit
	if !bevel {
		s.extrusion(cur, miter, miterLen)
		s.closeQuad(index, s.lastFlip == 1)
		s.normal = miter
		s.lastFlip = -1
		return 2
	}

	if miterLen == 0 {
		miter, miterLen = s.normal, s.halfThick
	}
	f := float32(flip)
	s.positions = append(s.positions,
		cur.Add(s.normal.Scale(-s.halfThick*f)),
		cur.Add(miter.Scale(miterLen*f)))
	s.closeQuad(index, s.lastFlip != -flip)
	s.tri(index+2, index+3, index+4)

	s.normal = perpendicular(dirB)
	s.positions = append(s.positions, cur.Add(s.normal.Scale(-s.halfThick*f)))
	s.lastFlip = flip
	return 3
}

// computeMiter returns the join tangent, the unit miter direction and the
// miter length. The length is zero when the line folds back on itself.
func computeMiter(dirA, dirB pmath.Vec2, halfThick float32) (tangent, miter pmath.Vec2, length float32) {
	tangent = normalize(dirA.Add(dirB))
	miter = perpendicular(tangent)
	d := miter.Dot(perpendicular(dirA))
	if pmath.NearlyZero(d) {
		return tangent, miter, 0
	}
	return tangent, miter, halfThick / d
}

func perpendicular(v pmath.Vec2) pmath.Vec2 {
	return pmath.Vec2{X: -v.Y, Y: v.X}
}

func normalize(v pmath.Vec2) pmath.Vec2 {
	l := v.Length()
	if l == 0 {
		return pmath.Vec2{}
	}
	return v.Scale(1 / l)
}
