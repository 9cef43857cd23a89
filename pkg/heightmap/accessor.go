package heightmap

// BorderedGridAccessor reads a row-major field as if it were one cell larger
// on its right and bottom edges. Negative coordinates mirror back into the
// field. Coordinates at or past the right edge read the vertical overflow
// strip (one entry per row plus the far corner); coordinates at or past the
// bottom edge read the horizontal overflow strip (one entry per column).
type BorderedGridAccessor struct {
	Width  int
	Height int
	Values []float32

	// Vertical has Height+1 entries, Horizontal has Width entries.
	Vertical   []float32
	Horizontal []float32
}

// NewBorderedGridAccessor wraps values and allocates both overflow strips.
func NewBorderedGridAccessor(width, height int, values []float32) *BorderedGridAccessor {
	return &BorderedGridAccessor{
		Width:      width,
		Height:     height,
		Values:     values,
		Vertical:   make([]float32, height+1),
		Horizontal: make([]float32, width),
	}
}

// At returns the value at (x, y) under the mirror and overflow policies.
func (a *BorderedGridAccessor) At(x, y int) float32 {
	if x < 0 {
		x = -x
	}
	if x >= a.Width {
		return a.Vertical[max(min(y, a.Height), 0)]
	}

	if y < 0 {
		y = -y
	}
	if y >= a.Height {
		return a.Horizontal[x]
	}

	return a.Values[x+a.Width*y]
}

// Put stores v at (x, y), routing points past the right or bottom edge into
// the matching overflow strip. It reports which edge was crossed so the
// caller can stop walking a row or the whole pass.
func (a *BorderedGridAccessor) Put(x, y int, v float32) (pastRight, pastBottom bool) {
	switch {
	case x >= a.Width:
		a.Vertical[min(y, a.Height)] = v
		return true, false
	case y >= a.Height:
		a.Horizontal[x] = v
		return false, true
	default:
		a.Values[x+a.Width*y] = v
		return false, false
	}
}
