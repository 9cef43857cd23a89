package grid

import (
	"fmt"
	"math"
	"strings"

	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// BlendMode selects how a source map is combined into a destination map.
type BlendMode uint8

// Blend modes.
const (
	BlendReplace BlendMode = iota
	BlendMax
	BlendAdd
	BlendMul
)

// String returns the lower-case blend name.
func (m BlendMode) String() string {
	switch m {
	case BlendReplace:
		return "replace"
	case BlendMax:
		return "max"
	case BlendAdd:
		return "add"
	case BlendMul:
		return "mul"
	default:
		return fmt.Sprintf("blend(%d)", m)
	}
}

// ParseBlendMode converts a name to a BlendMode. Unknown names return an error.
func ParseBlendMode(s string) (BlendMode, error) {
	switch strings.ToLower(s) {
	case "replace":
		return BlendReplace, nil
	case "max", "":
		return BlendMax, nil
	case "add":
		return BlendAdd, nil
	case "mul", "multiply":
		return BlendMul, nil
	}
	return BlendMax, fmt.Errorf("unknown blend mode %q", s)
}

// Blend combines src into dst cell by cell. Unknown modes behave like BlendMax.
func Blend(dst, src *HeightField, mode BlendMode) error {
	if err := checkSameSize(dst, src); err != nil {
		return err
	}

	d, s := dst.Values, src.Values
	switch mode {
	case BlendAdd:
		for i := range d {
			d[i] += s[i]
		}
	case BlendMul:
		for i := range d {
			d[i] *= s[i]
		}
	case BlendReplace:
		copy(d, s)
	default:
		for i := range d {
			d[i] = max(d[i], s[i])
		}
	}
	return nil
}

// Copy overwrites f with the values of src.
func (f *HeightField) Copy(src *HeightField) error {
	if err := checkSameSize(f, src); err != nil {
		return err
	}
	copy(f.Values, src.Values)
	return nil
}

// MulValue multiplies every cell by v.
func (f *HeightField) MulValue(v float32) {
	for i := range f.Values {
		f.Values[i] *= v
	}
}

// AddValue adds v to every cell.
func (f *HeightField) AddValue(v float32) {
	for i := range f.Values {
		f.Values[i] += v
	}
}

// MulMap multiplies f by src cell by cell.
func (f *HeightField) MulMap(src *HeightField) error {
	return Blend(f, src, BlendMul)
}

// AddMap adds src to f cell by cell.
func (f *HeightField) AddMap(src *HeightField) error {
	return Blend(f, src, BlendAdd)
}

// ClampMin raises every cell below lo to lo.
func (f *HeightField) ClampMin(lo float32) {
	for i, v := range f.Values {
		f.Values[i] = max(v, lo)
	}
}

// ClampMax lowers every cell above hi to hi.
func (f *HeightField) ClampMax(hi float32) {
	for i, v := range f.Values {
		f.Values[i] = min(v, hi)
	}
}

// ClampRange clamps every cell to [lo, hi].
func (f *HeightField) ClampRange(lo, hi float32) {
	for i, v := range f.Values {
		f.Values[i] = pmath.Clamp(v, lo, hi)
	}
}

// Extrema returns the smallest and largest value. An empty field returns (0, 0).
func (f *HeightField) Extrema() (lo, hi float32) {
	if len(f.Values) == 0 {
		return 0, 0
	}
	lo, hi = f.Values[0], f.Values[0]
	for _, v := range f.Values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// ScaleRange linearly remaps the current extrema onto [a, b] (in either order).
// A flat field maps every cell to the lower bound.
func (f *HeightField) ScaleRange(a, b float32) {
	if len(f.Values) == 0 {
		return
	}

	srcMin, srcMax := f.Extrema()
	srcSpan := srcMax - srcMin
	dstMin := min(a, b)
	dstSpan := max(a, b) - dstMin

	if srcSpan == 0 {
		for i := range f.Values {
			f.Values[i] = dstMin
		}
		return
	}

	for i, v := range f.Values {
		f.Values[i] = dstMin + (v-srcMin)*dstSpan/srcSpan
	}
}

// ApplyClipMap zeroes every cell of f whose counterpart in clip is below threshold.
func (f *HeightField) ApplyClipMap(clip *HeightField, threshold float32) error {
	if err := checkSameSize(f, clip); err != nil {
		return err
	}
	for i, c := range clip.Values {
		if c < threshold {
			f.Values[i] = 0
		}
	}
	return nil
}

// ApplyCurve maps every cell through curve. With normalize set the curve
// receives the cell's position within the field extrema and its output is
// mapped back onto them.
func (f *HeightField) ApplyCurve(curve func(float32) float32, normalize bool) {
	if curve == nil {
		return
	}
	if !normalize {
		for i, v := range f.Values {
			f.Values[i] = curve(v)
		}
		return
	}
	lo, hi := f.Extrema()
	for i, v := range f.Values {
		alpha := curve(pmath.RangePct(lo, hi, v))
		f.Values[i] = pmath.Lerp(lo, hi, alpha)
	}
}

// RadialGradient writes inner at center rising linearly to outer at radius.
// Cells past the radius are set to outer only when unbound is set.
func (f *HeightField) RadialGradient(center pmath.Vec2, radius, inner, outer float32, unbound bool) {
	if radius < 1e-4 || !f.Valid() {
		return
	}

	delta := outer - inner
	radiusSq := radius * radius

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			d := center.Sub(pmath.Vec2{X: float32(x), Y: float32(y)})
			distSq := d.Dot(d)
			switch {
			case distSq < radiusSq:
				f.Values[x+y*f.Width] = inner + delta*float32(math.Sqrt(float64(distSq)))/radius
			case unbound:
				f.Values[x+y*f.Width] = outer
			}
		}
	}
}
