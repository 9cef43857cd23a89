package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagOut      = flag.String("out", "", "Output directory")
	flagFormat   = flag.String("format", "", "Image format (png, tiff, bmp, webp, tga)")
	flagSeed     = flag.Int("seed", -1, "Generator seed")
	flagWidth    = flag.Int("width", 0, "Height map width")
	flagHeight   = flag.Int("height", 0, "Height map height")
	flagWorkers  = flag.Int("workers", 0, "Batch worker count")
	flagNoSimp   = flag.Bool("no-simplify", false, "Disable mesh simplification")
	flagTarget   = flag.Float64("target", 0, "Simplifier target percentage (0-1)")
	flagLogFile  = flag.String("log-file", "", "Write logs to file")
	flagGenerate = flag.String("generator", "", "Height map generator (diamond-square, perlin, simplex)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagFormat != "" {
		cfg.Output.ImageFormat = *flagFormat
	}
	if *flagSeed >= 0 {
		cfg.HeightMap.DiamondSquare.Seed = int32(*flagSeed)
		cfg.HeightMap.Noise.Seed = int64(*flagSeed)
	}
	if *flagWidth > 0 {
		cfg.HeightMap.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.HeightMap.Height = *flagHeight
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
	if *flagNoSimp {
		cfg.Simplifier.Enabled = false
	}
	if *flagTarget > 0 {
		cfg.Simplifier.TargetPercentage = float32(*flagTarget)
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagGenerate != "" {
		cfg.HeightMap.Generator = *flagGenerate
	}
}
