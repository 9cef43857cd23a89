package heightmap

import (
	"errors"
	"testing"
	"time"

	"github.com/Faultbox/procmesh/pkg/grid"
)

func TestRandomStream(t *testing.T) {
	a := NewRandomStream(1337)
	b := NewRandomStream(1337)

	for i := 0; i < 1000; i++ {
		va, vb := a.Fraction(), b.Fraction()
		if va != vb {
			t.Fatalf("draw %d differs: %v vs %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("draw %d out of range: %v", i, va)
		}
	}

	first := NewRandomStream(7).RandRange(-2, 2)
	r := NewRandomStream(7)
	r.RandRange(-2, 2)
	r.Reset()
	if got := r.RandRange(-2, 2); got != first {
		t.Errorf("after Reset got %v, want %v", got, first)
	}
	if r.Seed() != 7 {
		t.Errorf("Seed() = %d, want 7", r.Seed())
	}
}

func TestRandRangeBounds(t *testing.T) {
	r := NewRandomStream(-5)
	for i := 0; i < 1000; i++ {
		v := r.RandRange(-0.25, 0.75)
		if v < -0.25 || v >= 0.75 {
			t.Fatalf("draw %d out of range: %v", i, v)
		}
		w := r.WhiteNoise()
		if w < -0.5 || w >= 0.5 {
			t.Fatalf("white noise %d out of range: %v", i, w)
		}
	}
}

func TestBorderedGridAccessor(t *testing.T) {
	values := []float32{
		1, 2, 3,
		4, 5, 6,
	}
	a := NewBorderedGridAccessor(3, 2, values)
	if len(a.Vertical) != 3 || len(a.Horizontal) != 3 {
		t.Fatalf("overflow sizes = %d/%d, want 3/3", len(a.Vertical), len(a.Horizontal))
	}
	a.Vertical = []float32{10, 11, 12}
	a.Horizontal = []float32{20, 21, 22}

	tests := []struct {
		name string
		x, y int
		want float32
	}{
		{"inside", 1, 1, 5},
		{"mirror x", -2, 0, 3},
		{"mirror y", 0, -1, 4},
		{"mirror both", -1, -1, 5},
		{"right edge", 3, 1, 11},
		{"right clamps low", 5, -4, 10},
		{"right clamps high", 4, 9, 12},
		{"bottom edge", 2, 2, 22},
		{"mirror past right", -4, 0, 10},
		{"mirror past bottom", 1, -3, 21},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.At(tc.x, tc.y); got != tc.want {
				t.Errorf("At(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestBorderedGridAccessorPut(t *testing.T) {
	a := NewBorderedGridAccessor(2, 2, make([]float32, 4))

	if r, b := a.Put(1, 1, 3); r || b {
		t.Error("inside point reported as overflow")
	}
	if a.Values[3] != 3 {
		t.Errorf("Values[3] = %v, want 3", a.Values[3])
	}
	if r, _ := a.Put(2, 5, 7); !r || a.Vertical[2] != 7 {
		t.Errorf("right overflow not stored at the corner: %v", a.Vertical)
	}
	if _, b := a.Put(0, 2, 9); !b || a.Horizontal[0] != 9 {
		t.Errorf("bottom overflow not stored: %v", a.Horizontal)
	}
}

func TestBicubicCentre(t *testing.T) {
	var flat [4][4]float32
	for r := range flat {
		for c := range flat[r] {
			flat[r][c] = 2
		}
	}
	if got := bicubicCentre(&flat); got != 2 {
		t.Errorf("flat block = %v, want 2", got)
	}

	var ramp [4][4]float32
	for r := range ramp {
		for c := range ramp[r] {
			ramp[r][c] = float32(c + 2*r)
		}
	}
	// Linear data is reproduced exactly: centre of (1,1)..(2,2)
	if got := bicubicCentre(&ramp); got != 4.5 {
		t.Errorf("ramp block = %v, want 4.5", got)
	}
}

func TestDiamondSquareDeterminism(t *testing.T) {
	p := Params{Seed: 42, MinFeatureSize: 2, MaxFeatureSize: 8}

	a := grid.NewHeightField(17, 11)
	b := grid.NewHeightField(17, 11)
	if err := NewDiamondSquare(p).Generate(a); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := NewDiamondSquare(p).Generate(b); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("value %d differs: %v vs %v", i, a.Values[i], b.Values[i])
		}
	}

	p.Seed = 43
	c := grid.NewHeightField(17, 11)
	if err := NewDiamondSquare(p).Generate(c); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	same := true
	for i := range a.Values {
		if a.Values[i] != c.Values[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical fields")
	}
}

func TestDiamondSquareCoverage(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		p    Params
	}{
		{"square", 16, 16, Params{Seed: 1, MinFeatureSize: 2, MaxFeatureSize: 8}},
		{"wide", 20, 6, Params{Seed: 2, MinFeatureSize: 1, MaxFeatureSize: 16}},
		{"tall", 5, 13, Params{Seed: 3, MinFeatureSize: 0, MaxFeatureSize: 12}},
		{"odd", 9, 7, Params{Seed: 4, MinFeatureSize: 2, MaxFeatureSize: 4}},
		{"unit wave", 4, 4, Params{Seed: 5, MinFeatureSize: 0, MaxFeatureSize: 1}},
		{"single column", 1, 8, Params{Seed: 6, MinFeatureSize: 0, MaxFeatureSize: 4}},
		{"narrow tall", 3, 16, Params{Seed: 7, MinFeatureSize: 2, MaxFeatureSize: 8}},
		{"half past width", 4, 9, Params{Seed: 8, MinFeatureSize: 0, MaxFeatureSize: 8}},
		{"half past width uneven", 4, 10, Params{Seed: 9, MinFeatureSize: 1, MaxFeatureSize: 9}},
		{"single row", 8, 1, Params{Seed: 10, MinFeatureSize: 0, MaxFeatureSize: 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := grid.NewHeightField(tc.w, tc.h)
			if err := generateWithin(t, NewDiamondSquare(tc.p), f, 5*time.Second); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			for i, v := range f.Values {
				if v == 0 {
					t.Fatalf("cell %d left at zero", i)
				}
			}
		})
	}
}

// generateWithin fails the test if Generate does not return before timeout.
func generateWithin(t *testing.T, g Generator, f *grid.HeightField, timeout time.Duration) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- g.Generate(f) }()
	select {
	case err := <-errc:
		return err
	case <-time.After(timeout):
		t.Fatalf("%s on %s did not finish within %v", g.Name(), f, timeout)
		return nil
	}
}

// Narrow fields where half a wave already spans the width used to spin
// forever once the rows ran past the bottom edge.
func TestDiamondSquareTerminatesOnNarrowFields(t *testing.T) {
	for w := 1; w <= 6; w++ {
		for h := w + 1; h <= 20; h++ {
			for maxSize := 1; maxSize < h; maxSize++ {
				f := grid.NewHeightField(w, h)
				g := NewDiamondSquare(Params{Seed: int32(w*100 + h), MaxFeatureSize: int32(maxSize)})
				if err := generateWithin(t, g, f, 5*time.Second); err != nil {
					t.Fatalf("%dx%d max %d: %v", w, h, maxSize, err)
				}
			}
		}
	}
}

func TestDiamondSquareInvalidBounds(t *testing.T) {
	tests := []struct {
		name string
		p    Params
	}{
		{"min too large", Params{MinFeatureSize: 8, MaxFeatureSize: 4}},
		{"max too large", Params{MinFeatureSize: 2, MaxFeatureSize: 9}},
		{"negative min", Params{MinFeatureSize: -1, MaxFeatureSize: 4}},
		{"negative max", Params{MinFeatureSize: 2, MaxFeatureSize: -4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := grid.NewHeightField(8, 8)
			for i := range f.Values {
				f.Values[i] = 0.25
			}

			err := NewDiamondSquare(tc.p).Generate(f)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			for i, v := range f.Values {
				if v != 0.25 {
					t.Fatalf("value %d modified to %v", i, v)
				}
			}
		})
	}
}

func TestDiamondSquareZeroDimension(t *testing.T) {
	f := &grid.HeightField{Width: 0, Height: 4}
	var cfgErr *ConfigError
	if err := NewDiamondSquare(DefaultParams()).Generate(f); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestDiamondSquareScenario(t *testing.T) {
	f := grid.NewHeightField(9, 9)
	p := Params{Seed: 1337, MinFeatureSize: 2, MaxFeatureSize: 4}
	if err := NewDiamondSquare(p).Generate(f); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var mean float64
	for _, v := range f.Values {
		mean += float64(v)
	}
	mean /= float64(len(f.Values))

	var variance float64
	for _, v := range f.Values {
		d := float64(v) - mean
		variance += d * d
	}
	if variance == 0 {
		t.Error("expected non-zero variance across the field")
	}

	// Seed corners are drawn from the largest amplitude and interpolation
	// stays close to them.
	lo, hi := f.Extrema()
	if lo < -1 || hi > 1 {
		t.Errorf("extrema (%v, %v) far outside the amplitude table", lo, hi)
	}
}

func TestNoiseGenerators(t *testing.T) {
	for _, kind := range []NoiseKind{NoisePerlin, NoiseSimplex} {
		t.Run(kind.String(), func(t *testing.T) {
			p := DefaultNoiseParams()
			p.Seed = 99

			a := grid.NewHeightField(24, 16)
			if err := NewNoise(kind, p).Generate(a); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			b := grid.NewHeightField(24, 16)
			if err := NewNoise(kind, p).Generate(b); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			lo, hi := a.Extrema()
			if lo < 0 || hi > 1 {
				t.Errorf("extrema (%v, %v) outside [0, 1]", lo, hi)
			}
			if lo == hi {
				t.Error("noise field is flat")
			}
			for i := range a.Values {
				if a.Values[i] != b.Values[i] {
					t.Fatalf("value %d differs between runs", i)
				}
			}
		})
	}
}

func TestNoiseInvalidOctaves(t *testing.T) {
	p := DefaultNoiseParams()
	p.Octaves = 0
	var cfgErr *ConfigError
	if err := NewNoise(NoiseSimplex, p).Generate(grid.NewHeightField(4, 4)); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestParseNoiseKind(t *testing.T) {
	if k, err := ParseNoiseKind("Simplex"); err != nil || k != NoiseSimplex {
		t.Errorf("ParseNoiseKind(Simplex) = %v, %v", k, err)
	}
	if _, err := ParseNoiseKind("worley"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestGenerateInto(t *testing.T) {
	gd := grid.NewData(9, 9)
	f, err := GenerateInto(gd, 1, NewDiamondSquare(Params{Seed: 3, MinFeatureSize: 2, MaxFeatureSize: 4}))
	if err != nil {
		t.Fatalf("GenerateInto failed: %v", err)
	}
	if !gd.HasHeightMap(1) {
		t.Fatal("map 1 should have been created")
	}
	got, _ := gd.HeightMap(1)
	if got != f {
		t.Error("returned field is not the stored map")
	}

	_, err = GenerateInto(gd, 0, NewDiamondSquare(Params{MinFeatureSize: 20}))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected wrapped ConfigError, got %v", err)
	}
}
