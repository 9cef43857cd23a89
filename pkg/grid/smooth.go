package grid

// Smooth runs a horizontal then vertical box filter of the given radius.
// Radius <= 0 is a no-op.
func (f *HeightField) Smooth(radius int) {
	if radius <= 0 || !f.Valid() {
		return
	}
	f.SmoothX(radius)
	f.SmoothY(radius)
}

// SmoothX averages each cell with radius neighbours on both sides along rows.
// Cells past the edges repeat the edge value.
func (f *HeightField) SmoothX(radius int) {
	if radius <= 0 || !f.Valid() {
		return
	}

	w, h := f.Width, f.Height
	src := f.Values
	dst := make([]float32, len(src))
	kernel := float32(radius*2 + 1)

	for y := 0; y < h; y++ {
		row := y * w
		// Prefill the window centred on x=-1
		var sum float32
		for k := -radius - 1; k < radius; k++ {
			sum += src[row+clampIndex(k, w)]
		}

		for x := 0; x < w; x++ {
			add := src[row+clampIndex(x+radius, w)]
			sub := src[row+clampIndex(x-radius-1, w)]
			sum += add - sub
			dst[row+x] = sum / kernel
		}
	}

	f.Values = dst
}

// SmoothY averages each cell with radius neighbours on both sides along columns.
func (f *HeightField) SmoothY(radius int) {
	if radius <= 0 || !f.Valid() {
		return
	}

	w, h := f.Width, f.Height
	src := f.Values
	dst := make([]float32, len(src))
	kernel := float32(radius*2 + 1)

	for x := 0; x < w; x++ {
		var sum float32
		for k := -radius - 1; k < radius; k++ {
			sum += src[x+clampIndex(k, h)*w]
		}

		for y := 0; y < h; y++ {
			add := src[x+clampIndex(y+radius, h)*w]
			sub := src[x+clampIndex(y-radius-1, h)*w]
			sum += add - sub
			dst[x+y*w] = sum / kernel
		}
	}

	f.Values = dst
}

func clampIndex(i, n int) int {
	return max(0, min(i, n-1))
}
