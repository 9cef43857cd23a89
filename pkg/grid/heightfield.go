// Package grid holds row-major height fields and the editing tools that operate on them.
package grid

import (
	"errors"
	"fmt"
)

// Grid errors.
var (
	ErrDimensionMismatch = errors.New("height field dimensions do not match")
	ErrNoHeightMap       = errors.New("height map does not exist")
	ErrInvalidDimension  = errors.New("invalid grid dimension")
)

// HeightField is a flat row-major array of heights.
// When populated, len(Values) == Width*Height; an uninitialized field has no values.
type HeightField struct {
	Width  int
	Height int
	Values []float32
}

// NewHeightField returns a zero-filled field of the given size.
func NewHeightField(width, height int) *HeightField {
	f := &HeightField{Width: width, Height: height}
	f.Reset()
	return f
}

// Size returns Width*Height.
func (f *HeightField) Size() int {
	return f.Width * f.Height
}

// Valid reports whether the field is populated and sized for its dimensions.
func (f *HeightField) Valid() bool {
	return f != nil && f.Size() > 0 && len(f.Values) == f.Size()
}

// Reset sizes the value slice to Width*Height and zero-fills it.
func (f *HeightField) Reset() {
	n := f.Size()
	if n <= 0 {
		f.Values = f.Values[:0]
		return
	}
	if cap(f.Values) >= n {
		f.Values = f.Values[:n]
		clear(f.Values)
		return
	}
	f.Values = make([]float32, n)
}

// Index returns the flat index of (x, y).
func (f *HeightField) Index(x, y int) int {
	return x + y*f.Width
}

// InBounds reports whether (x, y) addresses a cell.
func (f *HeightField) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// At returns the height at (x, y). Coordinates must be in bounds.
func (f *HeightField) At(x, y int) float32 {
	return f.Values[x+y*f.Width]
}

// Set stores the height at (x, y). Coordinates must be in bounds.
func (f *HeightField) Set(x, y int, v float32) {
	f.Values[x+y*f.Width] = v
}

// Clone returns a deep copy.
func (f *HeightField) Clone() *HeightField {
	c := &HeightField{Width: f.Width, Height: f.Height}
	if f.Values != nil {
		c.Values = make([]float32, len(f.Values))
		copy(c.Values, f.Values)
	}
	return c
}

// SameSize reports whether other has identical dimensions and both are populated.
func (f *HeightField) SameSize(other *HeightField) bool {
	return f.Valid() && other.Valid() && f.Width == other.Width && f.Height == other.Height
}

// String returns the field as "WxH".
func (f *HeightField) String() string {
	if f == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

func checkSameSize(dst, src *HeightField) error {
	if !dst.SameSize(src) {
		return fmt.Errorf("%w: %s vs %s", ErrDimensionMismatch, dst, src)
	}
	return nil
}
