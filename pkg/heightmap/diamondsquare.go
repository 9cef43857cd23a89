package heightmap

import (
	"math/bits"

	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/logger"
	"github.com/Faultbox/procmesh/pkg/grid"
)

// amplitudes holds the perturbation scale per log2 wave length.
var amplitudes = [13]float32{
	3 * 15.0 / 32767,
	7 * 15.0 / 32767,
	10 * 15.0 / 32767,
	20 * 15.0 / 32767,
	50 * 15.0 / 32767,
	75 * 15.0 / 32767,
	150 * 15.0 / 32767,
	250 * 15.0 / 32767,
	400 * 15.0 / 32767,
	600 * 15.0 / 32767,
	1000 * 15.0 / 32767,
	1400 * 15.0 / 32767,
	2000 * 15.0 / 32767,
}

func amplitude(log2 int) float32 {
	return amplitudes[max(0, min(log2, len(amplitudes)-1))]
}

// Params configures a DiamondSquare run.
type Params struct {
	Seed           int32 `yaml:"seed"`
	MinFeatureSize int32 `yaml:"min_feature_size"`
	MaxFeatureSize int32 `yaml:"max_feature_size"`
}

// DefaultParams returns the stock feature sizes with a zero seed.
func DefaultParams() Params {
	return Params{MinFeatureSize: 2, MaxFeatureSize: 4}
}

// DiamondSquare generates terrain by midpoint displacement with bicubic
// interpolation. Fields of any size are supported: points that would fall
// past the right or bottom edge of the virtual 2^n+1 square are kept in
// overflow strips instead of the field.
type DiamondSquare struct {
	Params
}

// NewDiamondSquare returns a generator for p.
func NewDiamondSquare(p Params) *DiamondSquare {
	return &DiamondSquare{Params: p}
}

// Name implements Generator.
func (g *DiamondSquare) Name() string { return "diamond-square" }

// Validate checks the feature sizes against a field of the given size.
func (g *DiamondSquare) Validate(width, height int) error {
	if width < 1 || height < 1 {
		return &ConfigError{Param: "dimension", Value: min(width, height)}
	}
	limit := max(width, height)
	if g.MinFeatureSize < 0 || int(g.MinFeatureSize) >= limit {
		return &ConfigError{Param: "min feature size", Value: int(g.MinFeatureSize), Limit: limit}
	}
	if g.MaxFeatureSize < 0 || int(g.MaxFeatureSize) >= limit {
		return &ConfigError{Param: "max feature size", Value: int(g.MaxFeatureSize), Limit: limit}
	}
	return nil
}

// Generate implements Generator. Equal params and field sizes always
// produce bit-identical values.
func (g *DiamondSquare) Generate(f *grid.HeightField) error {
	log := logger.Named("heightmap")

	if err := g.Validate(f.Width, f.Height); err != nil {
		log.Warn("diamond-square skipped",
			zap.Stringer("size", f),
			zap.Error(err))
		return err
	}

	f.Reset()

	w, h := f.Width, f.Height
	rnd := NewRandomStream(g.Seed)
	acc := NewBorderedGridAccessor(w, h, f.Values)
	minFeature := int(g.MinFeatureSize)

	// Largest power of two not above the max feature size
	waveLog2 := 0
	if g.MaxFeatureSize > 0 {
		waveLog2 = bits.Len32(uint32(g.MaxFeatureSize)) - 1
	}
	waveLength := 1 << waveLog2
	amp := amplitude(waveLog2)

	// Corner seeds, one extra row and column land in the overflow strips
	for y := 0; ; y += waveLength {
		for x := 0; ; x += waveLength {
			if right, _ := acc.Put(x, y, rnd.RandRange(-amp, amp)); right {
				break
			}
		}
		if y >= h {
			break
		}
	}

	amp = amplitude(waveLog2 - 1)
	passes := 0

	for waveLength > 1 {
		half := waveLength / 2
		perturb := waveLength >= minFeature

		// Square step: centre of each square
		var block [4][4]float32
		done := false
		for y := half; !done; y += waveLength {
			for x := half; ; x += waveLength {
				xs := [4]int{x - half - waveLength, x - half, x + half, x + half + waveLength}
				ys := [4]int{y - half - waveLength, y - half, y + half, y + half + waveLength}
				for r := 0; r < 4; r++ {
					for c := 0; c < 4; c++ {
						block[r][c] = acc.At(xs[c], ys[r])
					}
				}

				v := bicubicCentre(&block)
				if perturb {
					v += rnd.RandRange(-amp, amp)
				}

				right, bottom := acc.Put(x, y, v)
				if right {
					// A row that starts past the right edge can also be past
					// the bottom; Put never reports bottom for it.
					if y >= h {
						done = true
					}
					break
				}
				if bottom {
					done = true
				}
			}
		}

		// Diamond step: centre of each diamond, sampled on the rotated lattice
		done = false
		evenRow := true
		for y := 0; !done; y += half {
			start := 0
			if evenRow {
				start = half
			}
			for x := start; ; x += waveLength {
				xo := [7]int{x - half - waveLength, x - waveLength, x - half, x, x + half, x + waveLength, x + half + waveLength}
				yo := [7]int{y - half - waveLength, y - waveLength, y - half, y, y + half, y + waveLength, y + half + waveLength}
				// Row r walks the diagonal starting at (r, 3-r) in offset space
				for r := 0; r < 4; r++ {
					for c := 0; c < 4; c++ {
						block[r][c] = acc.At(xo[r+c], yo[3-r+c])
					}
				}

				v := bicubicCentre(&block)
				if perturb {
					v += rnd.RandRange(-amp, amp)
				}

				right, bottom := acc.Put(x, y, v)
				if right {
					if y >= h {
						done = true
					}
					break
				}
				if bottom {
					done = true
				}
			}
			evenRow = !evenRow
		}

		waveLength /= 2
		if waveLength > 1 {
			amp = amplitude(bits.Len(uint(waveLength/2)) - 1)
		}
		passes++
	}

	log.Debug("diamond-square generated",
		zap.Stringer("size", f),
		zap.Int32("seed", g.Seed),
		zap.Int("passes", passes))
	return nil
}
