package config

import (
	"fmt"

	"github.com/Faultbox/procmesh/pkg/formats"
	"github.com/Faultbox/procmesh/pkg/heightmap"
)

// Validate reports the first setting that cannot drive the pipeline.
func (c *Config) Validate() error {
	hm := c.HeightMap
	if hm.Width < 2 || hm.Height < 2 {
		return fmt.Errorf("heightmap: size %dx%d must be at least 2x2", hm.Width, hm.Height)
	}
	switch hm.Generator {
	case GeneratorDiamondSquare:
		ds := heightmap.NewDiamondSquare(hm.DiamondSquare)
		if err := ds.Validate(hm.Width, hm.Height); err != nil {
			return fmt.Errorf("heightmap.diamond_square: %w", err)
		}
	case GeneratorPerlin, GeneratorSimplex:
		if hm.Noise.Octaves < 1 {
			return fmt.Errorf("heightmap.noise: octaves %d must be positive", hm.Noise.Octaves)
		}
	default:
		return fmt.Errorf("heightmap: unknown generator %q", hm.Generator)
	}
	if hm.SmoothRadius < 0 {
		return fmt.Errorf("heightmap: smooth radius %d is negative", hm.SmoothRadius)
	}

	s := c.Simplifier
	if s.EdgeFraction < 0 || s.EdgeFraction > 1 {
		return fmt.Errorf("simplifier: edge fraction %v outside [0, 1]", s.EdgeFraction)
	}
	if s.TargetPercentage < 0 || s.TargetPercentage > 1 {
		return fmt.Errorf("simplifier: target percentage %v outside [0, 1]", s.TargetPercentage)
	}
	if s.MinAngleCosine < -1 || s.MinAngleCosine > 1 {
		return fmt.Errorf("simplifier: min angle cosine %v outside [-1, 1]", s.MinAngleCosine)
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("simplifier: max iterations %d is negative", s.MaxIterations)
	}

	if c.Mesh.CellSize <= 0 {
		return fmt.Errorf("mesh: cell size %v must be positive", c.Mesh.CellSize)
	}

	if _, err := formats.ParseImageFormat(c.Output.ImageFormat); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if c.Output.BitDepth != 8 && c.Output.BitDepth != 16 {
		return fmt.Errorf("output: bit depth %d must be 8 or 16", c.Output.BitDepth)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output: dir is empty")
	}

	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch: workers %d is negative", c.Batch.Workers)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch: debounce %v is negative", c.Watch.Debounce)
	}
	return nil
}
