// Package config handles procmesh configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/procmesh/pkg/heightmap"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

// Generator names accepted by HeightMapConfig.Generator.
const (
	GeneratorDiamondSquare = "diamond-square"
	GeneratorPerlin        = "perlin"
	GeneratorSimplex       = "simplex"
)

// Config holds all pipeline settings.
type Config struct {
	HeightMap  HeightMapConfig        `yaml:"heightmap"`
	Simplifier mesh.SimplifierOptions `yaml:"simplifier"`
	Mesh       MeshConfig             `yaml:"mesh"`
	Output     OutputConfig           `yaml:"output"`
	Batch      BatchConfig            `yaml:"batch"`
	Watch      WatchConfig            `yaml:"watch"`
	Logging    LoggingConfig          `yaml:"logging"`
}

// HeightMapConfig holds height field generation settings.
type HeightMapConfig struct {
	Width         int                   `yaml:"width"`
	Height        int                   `yaml:"height"`
	Generator     string                `yaml:"generator"` // diamond-square, perlin or simplex
	DiamondSquare heightmap.Params      `yaml:"diamond_square"`
	Noise         heightmap.NoiseParams `yaml:"noise"`
	SmoothRadius  int                   `yaml:"smooth_radius"` // 0 disables smoothing
	Normalize     bool                  `yaml:"normalize"`     // rescale to [0, 1] after generation
}

// MeshConfig holds grid mesh construction settings.
type MeshConfig struct {
	CellSize    float32    `yaml:"cell_size"`
	HeightScale float32    `yaml:"height_scale"`
	WorldOffset [3]float32 `yaml:"world_offset"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	ImageFormat string `yaml:"image_format"` // png, tiff, bmp, webp or tga
	BitDepth    int    `yaml:"bit_depth"`    // 8 or 16
	WritePHM    bool   `yaml:"write_phm"`
	WriteImage  bool   `yaml:"write_image"`
	WriteOBJ    bool   `yaml:"write_obj"`
}

// BatchConfig holds worker pool settings.
type BatchConfig struct {
	Workers  int    `yaml:"workers"`  // 0 uses one worker per CPU
	Manifest string `yaml:"manifest"` // written into Output.Dir
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	JSON    bool   `yaml:"json"` // JSON encoding for the log file
}

// Default returns a Config with sensible default values.
func Default() *Config {
	simplifier := mesh.DefaultSimplifierOptions()
	simplifier.Enabled = true

	return &Config{
		HeightMap: HeightMapConfig{
			Width:         129,
			Height:        129,
			Generator:     GeneratorDiamondSquare,
			DiamondSquare: heightmap.Params{Seed: 1337, MinFeatureSize: 2, MaxFeatureSize: 64},
			Noise:         heightmap.DefaultNoiseParams(),
			SmoothRadius:  0,
			Normalize:     true,
		},
		Simplifier: simplifier,
		Mesh: MeshConfig{
			CellSize:    1,
			HeightScale: 16,
		},
		Output: OutputConfig{
			Dir:         "out",
			ImageFormat: "png",
			BitDepth:    16,
			WritePHM:    true,
			WriteImage:  true,
			WriteOBJ:    true,
		},
		Batch: BatchConfig{
			Workers:  0,
			Manifest: "manifest.json",
		},
		Watch: WatchConfig{
			Debounce: 250 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
