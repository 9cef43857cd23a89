// procmesh generates procedural height maps and simplified terrain meshes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/config"
	"github.com/Faultbox/procmesh/internal/logger"
)

func main() {
	// Global flags come before the command
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := initLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("procmesh starting",
		zap.String("command", command),
		zap.String("config", config.ResolvePath()))
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "heightmap", "hm":
		err = cmdHeightMap(cfg, args)
	case "mesh":
		err = cmdMesh(cfg, args)
	case "simplify":
		err = cmdSimplify(cfg, args)
	case "terrain":
		err = cmdTerrain(ctx, cfg, args)
	case "batch":
		err = cmdBatch(ctx, cfg, args)
	case "watch":
		err = cmdWatch(ctx, cfg, args)
	case "line":
		err = cmdLine(args)
	case "info":
		err = cmdInfo(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func initLogger(lc config.LoggingConfig) error {
	if lc.LogFile == "" {
		return logger.Init(lc.Level, "")
	}
	fileCfg := logger.DefaultFileConfig(lc.LogFile)
	fileCfg.JSON = lc.JSON
	return logger.InitWithFileConfig(lc.Level, fileCfg, true)
}

func printUsage() {
	fmt.Println(`procmesh - procedural height map and terrain mesh tool

Usage:
  procmesh [global flags] <command> [options]

Commands:
  heightmap [-name N]               Generate a height map (PHM + image)
  mesh <in.phm> <out.obj>           Build a simplified mesh from a height map
  simplify <in.obj> <out.obj>       Simplify an existing OBJ mesh
  terrain [-name N]                 Height map, mesh and exports in one run
  batch <jobs.yaml>                 Run many terrain jobs on a worker pool
  watch [jobs.yaml]                 Re-run terrain (or batch) when config changes
  line <points.yaml> <out.obj>      Extrude a 2D polyline into a flat strip
  info <file>                       Show PHM, OBJ or image information

Global flags:
  -config <path>      Config file (default: ./procmesh.yaml, ./config.yaml)
  -out <dir>          Output directory
  -format <fmt>       Image format: png, tiff, bmp, webp, tga
  -generator <kind>   diamond-square, perlin or simplex
  -seed <n>           Generator seed
  -width, -height     Height map size
  -workers <n>        Batch workers (0 = one per CPU)
  -target <f>         Simplifier target percentage (0-1)
  -no-simplify        Disable mesh simplification
  -debug              Enable debug logging
  -log-file <path>    Write logs to a rotated file

Examples:
  procmesh -seed 42 -width 257 -height 257 terrain -name island
  procmesh -format webp heightmap
  procmesh -target 0.2 simplify scan.obj scan_small.obj
  procmesh -workers 4 batch jobs.yaml
  procmesh line -thickness 2 -simplify rdp -tolerance 0.5 path.yaml path.obj
  procmesh info out/island/heightmap.phm`)
}
