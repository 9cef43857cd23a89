package heightmap

import (
	"fmt"
	"strings"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/logger"
	"github.com/Faultbox/procmesh/pkg/grid"
	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// NoiseKind selects the noise source of a Noise generator.
type NoiseKind uint8

// Noise sources.
const (
	NoisePerlin NoiseKind = iota
	NoiseSimplex
)

func (k NoiseKind) String() string {
	switch k {
	case NoisePerlin:
		return "perlin"
	case NoiseSimplex:
		return "simplex"
	default:
		return fmt.Sprintf("noise(%d)", k)
	}
}

// ParseNoiseKind maps "perlin" or "simplex" to a NoiseKind.
func ParseNoiseKind(s string) (NoiseKind, error) {
	switch strings.ToLower(s) {
	case "perlin":
		return NoisePerlin, nil
	case "simplex", "opensimplex":
		return NoiseSimplex, nil
	}
	return NoisePerlin, fmt.Errorf("unknown noise kind %q", s)
}

// NoiseParams configures a Noise generator.
type NoiseParams struct {
	Seed      int64   `yaml:"seed"`
	Frequency float64 `yaml:"frequency"`
	Octaves   int     `yaml:"octaves"`
	// Alpha is the per-octave amplitude divisor, Beta the frequency multiplier.
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

// DefaultNoiseParams returns a smooth, low frequency terrain setup.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Frequency: 1.0 / 32,
		Octaves:   4,
		Alpha:     2,
		Beta:      2,
	}
}

// Noise fills a field with coherent noise clamped to [0, 1].
type Noise struct {
	Kind NoiseKind
	NoiseParams
}

// NewNoise returns a noise generator of the given kind.
func NewNoise(kind NoiseKind, p NoiseParams) *Noise {
	return &Noise{Kind: kind, NoiseParams: p}
}

// Name implements Generator.
func (g *Noise) Name() string { return g.Kind.String() + "-noise" }

// Generate implements Generator.
func (g *Noise) Generate(f *grid.HeightField) error {
	if f.Width < 1 || f.Height < 1 {
		return &ConfigError{Param: "dimension", Value: min(f.Width, f.Height)}
	}
	if g.Octaves < 1 {
		return &ConfigError{Param: "octaves", Value: g.Octaves}
	}
	if g.Kind != NoisePerlin && g.Kind != NoiseSimplex {
		return fmt.Errorf("unsupported noise kind %s", g.Kind)
	}

	freq := g.Frequency
	if freq <= 0 {
		freq = DefaultNoiseParams().Frequency
	}

	sample := g.sampler()
	f.Reset()

	for y, i := 0, 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x, i = x+1, i+1 {
			v := sample(float64(x)*freq, float64(y)*freq)
			f.Values[i] = pmath.Clamp(float32(v), 0, 1)
		}
	}

	logger.Named("heightmap").Debug("noise generated",
		zap.String("kind", g.Kind.String()),
		zap.Stringer("size", f),
		zap.Int64("seed", g.Seed))
	return nil
}

// sampler returns a function mapping a point to roughly [0, 1].
func (g *Noise) sampler() func(x, y float64) float64 {
	alpha, beta := g.Alpha, g.Beta
	if alpha <= 0 {
		alpha = 2
	}
	if beta <= 0 {
		beta = 2
	}

	if g.Kind == NoisePerlin {
		p := perlin.NewPerlin(alpha, beta, int32(g.Octaves), g.Seed)
		return func(x, y float64) float64 {
			return p.Noise2D(x, y)*0.5 + 0.5
		}
	}

	s := opensimplex.NewNormalized(g.Seed)
	octaves := g.Octaves
	return func(x, y float64) float64 {
		var sum, norm float64
		amp, freq := 1.0, 1.0
		for o := 0; o < octaves; o++ {
			sum += s.Eval2(x*freq, y*freq) * amp
			norm += amp
			amp /= alpha
			freq *= beta
		}
		return sum / norm
	}
}
