package grid

import (
	"math"

	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// Sample returns the bilinearly interpolated height at (x, y). Coordinates are
// clamped to the field, so grid-aligned positions return the stored value.
func (f *HeightField) Sample(x, y float32) float32 {
	if !f.Valid() {
		return 0
	}

	x = pmath.Clamp(x, 0, float32(f.Width-1))
	y = pmath.Clamp(y, 0, float32(f.Height-1))

	ix, iy := int(x), int(y)
	ix1 := min(ix+1, f.Width-1)
	iy1 := min(iy+1, f.Height-1)
	tx := x - float32(ix)
	ty := y - float32(iy)

	h00 := f.At(ix, iy)
	h10 := f.At(ix1, iy)
	h01 := f.At(ix, iy1)
	h11 := f.At(ix1, iy1)

	return pmath.Lerp(pmath.Lerp(h00, h10, tx), pmath.Lerp(h01, h11, tx), ty)
}

// HeightNormal returns the height at (x, y) and a surface normal built from
// central differences one cell away on each axis. At the border the missing
// neighbour is replaced by the centre sample and the difference spans one
// cell instead of two.
func (f *HeightField) HeightNormal(x, y float32) (float32, pmath.Vec3) {
	if !f.Valid() {
		return 0, pmath.Vec3{Z: 1}
	}

	ix := int(math.Floor(float64(x)))
	iy := int(math.Floor(float64(y)))

	hv := f.Sample(x, y)
	hW, hN, hE, hS := hv, hv, hv, hv
	var spanX, spanY float32
	if ix > 0 {
		hW = f.Sample(x-1, y)
		spanX++
	}
	if ix+1 < f.Width {
		hE = f.Sample(x+1, y)
		spanX++
	}
	if iy > 0 {
		hN = f.Sample(x, y-1)
		spanY++
	}
	if iy+1 < f.Height {
		hS = f.Sample(x, y+1)
		spanY++
	}

	var dx, dy float32
	if spanX > 0 {
		dx = (hE - hW) / spanX
	}
	if spanY > 0 {
		dy = (hS - hN) / spanY
	}

	n := pmath.Vec3{X: -dx, Y: -dy, Z: 1}
	return hv, n.Normalize()
}

// PointHeight returns p lifted to the height of the cell it falls in.
func (f *HeightField) PointHeight(p pmath.Vec2) pmath.Vec3 {
	out := pmath.Vec3{X: p.X, Y: p.Y}
	if !f.Valid() {
		return out
	}
	ix := pmath.Clamp(int(p.X), 0, f.Width-1)
	iy := pmath.Clamp(int(p.Y), 0, f.Height-1)
	out.Z = f.At(ix, iy)
	return out
}

// CornersExtrema returns the lowest and highest of the four corner heights and
// the centre height of box. ok is false when the box or the field is invalid.
func (f *HeightField) CornersExtrema(box pmath.Box2) (lo, hi float32, ok bool) {
	if !box.Valid || !f.Valid() {
		return 0, 0, false
	}

	x0 := pmath.Clamp(int(box.Min.X), 0, f.Width-1)
	y0 := pmath.Clamp(int(box.Min.Y), 0, f.Height-1)
	x1 := pmath.Clamp(int(box.Max.X), 0, f.Width-1)
	y1 := pmath.Clamp(int(box.Max.Y), 0, f.Height-1)
	cx := x0 + (x1-x0)/2
	cy := y0 + (y1-y0)/2

	samples := [5]float32{
		f.At(x0, y0),
		f.At(x1, y0),
		f.At(x1, y1),
		f.At(x0, y1),
		f.At(cx, cy),
	}

	lo, hi = samples[0], samples[0]
	for _, v := range samples[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, true
}

// LineExtrema returns the heights under both line end points.
func (f *HeightField) LineExtrema(start, end pmath.Vec2) (float32, float32) {
	if !f.Valid() {
		return 0, 0
	}
	return f.PointHeight(start).Z, f.PointHeight(end).Z
}
