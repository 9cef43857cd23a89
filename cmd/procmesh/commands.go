package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/batch"
	"github.com/Faultbox/procmesh/internal/config"
	"github.com/Faultbox/procmesh/internal/logger"
	"github.com/Faultbox/procmesh/internal/watch"
	"github.com/Faultbox/procmesh/pkg/formats"
	"github.com/Faultbox/procmesh/pkg/line"
	pmath "github.com/Faultbox/procmesh/pkg/math"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

func cmdHeightMap(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("heightmap", flag.ExitOnError)
	name := fs.String("name", "terrain", "Output subdirectory name")
	fs.Parse(args)

	job := batch.NewJob(*name, cfg)
	job.Output.WriteOBJ = false
	return runOne(context.Background(), job)
}

func cmdTerrain(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("terrain", flag.ExitOnError)
	name := fs.String("name", "terrain", "Output subdirectory name")
	fs.Parse(args)

	return runOne(ctx, batch.NewJob(*name, cfg))
}

func runOne(ctx context.Context, job batch.Job) error {
	r := batch.Process(ctx, job)
	if !r.Success {
		return errors.New(r.Error)
	}
	printResult(r)
	return nil
}

func printResult(r batch.Result) {
	fmt.Printf("Job:       %s (%s)\n", r.Name, r.ID)
	fmt.Printf("Size:      %dx%d\n", r.Width, r.Height)
	fmt.Printf("Heights:   %.4f .. %.4f\n", r.MinHeight, r.MaxHeight)
	if r.Mesh.InputTriangles > 0 {
		fmt.Printf("Triangles: %d -> %d (%d iterations)\n",
			r.Mesh.InputTriangles, r.Mesh.OutputTriangles, r.Mesh.Iterations)
	}
	for _, f := range r.Files {
		fmt.Printf("  %s\n", f)
	}
}

func cmdMesh(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: procmesh mesh <in.phm> <out.obj>")
	}

	phm, err := formats.ParsePHMFile(args[0])
	if err != nil {
		return err
	}

	m, stats, err := batch.BuildMesh(phm.Field, cfg.Mesh, cfg.Simplifier)
	if err != nil {
		return err
	}
	if err := formats.WriteOBJFile(args[1], m); err != nil {
		return err
	}

	fmt.Printf("%s: %d -> %d triangles\n", args[1], stats.InputTriangles, stats.OutputTriangles)
	return nil
}

func cmdSimplify(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: procmesh simplify <in.obj> <out.obj>")
	}

	m, err := formats.ParseOBJFile(args[0])
	if err != nil {
		return err
	}

	opts := cfg.Simplifier
	opts.Enabled = true
	offset := pmath.Vec3{X: cfg.Mesh.WorldOffset[0], Y: cfg.Mesh.WorldOffset[1], Z: cfg.Mesh.WorldOffset[2]}

	stats, err := mesh.Simplify(m, offset, opts)
	if err != nil {
		return err
	}
	if err := formats.WriteOBJFile(args[1], m); err != nil {
		return err
	}

	if stats.Skipped {
		fmt.Printf("%s: mesh too small, copied unchanged (%d triangles)\n", args[1], stats.OutputTriangles)
		return nil
	}
	fmt.Printf("%s: %d -> %d vertices, %d -> %d triangles (%d iterations)\n", args[1],
		stats.InputVertices, stats.OutputVertices,
		stats.InputTriangles, stats.OutputTriangles, stats.Iterations)
	return nil
}

func cmdLine(args []string) error {
	fs := flag.NewFlagSet("line", flag.ExitOnError)
	thickness := fs.Float64("thickness", 1, "Strip width")
	miterLimit := fs.Float64("miter-limit", 10, "Miter length limit in half widths")
	bevel := fs.Bool("bevel", false, "Bevel every join")
	squareCap := fs.Bool("square-cap", false, "Extend both ends by half the width")
	method := fs.String("simplify", "", "Simplify first: visvalingam or rdp")
	tolerance := fs.Float64("tolerance", 1, "Area threshold (visvalingam) or distance (rdp)")
	hq := fs.Bool("hq", false, "Skip the radial prefilter before rdp")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return errors.New("usage: procmesh line [options] <points.yaml> <out.obj>")
	}

	points, err := line.LoadPoints(fs.Arg(0))
	if err != nil {
		return err
	}

	n := len(points)
	switch *method {
	case "":
	case "visvalingam", "vw":
		points = line.SimplifyVisvalingam(points, float32(*tolerance))
	case "rdp", "douglas-peucker":
		points = line.SimplifyDouglasPeucker(points, float32(*tolerance), *hq)
	default:
		return fmt.Errorf("unknown simplify method %q", *method)
	}

	e := line.Extruder{
		Thickness:  float32(*thickness),
		MiterLimit: float32(*miterLimit),
		SquareCap:  *squareCap,
		Bevel:      *bevel,
	}
	m, err := e.Extrude(points)
	if err != nil {
		return err
	}
	if err := formats.WriteOBJFile(fs.Arg(1), m); err != nil {
		return err
	}

	logger.Named("line").Debug("polyline extruded",
		zap.Int("input_points", n),
		zap.Int("points", len(points)),
		zap.Int("triangles", m.NumTriangles()))
	fmt.Printf("%s: %d -> %d points, %d triangles\n", fs.Arg(1), n, len(points), m.NumTriangles())
	return nil
}

func cmdBatch(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: procmesh batch <jobs.yaml>")
	}

	results, err := runBatch(ctx, cfg, args[0])
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "FAILED: " + r.Error
			failed++
		}
		fmt.Printf("  %-20s %s\n", r.Name, status)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}

func runBatch(ctx context.Context, cfg *config.Config, jobsPath string) ([]batch.Result, error) {
	jobs, err := batch.LoadJobs(jobsPath, cfg)
	if err != nil {
		return nil, err
	}

	results := batch.Run(ctx, cfg.Batch.Workers, jobs)

	manifest := filepath.Join(cfg.Output.Dir, cfg.Batch.Manifest)
	if err := batch.WriteManifest(manifest, results); err != nil {
		return results, fmt.Errorf("writing manifest: %w", err)
	}
	fmt.Printf("Manifest: %s\n", manifest)
	return results, nil
}

func cmdWatch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	name := fs.String("name", "terrain", "Output subdirectory name")
	fs.Parse(args)

	configPath := config.ResolvePath()
	jobsPath := fs.Arg(0)

	var files []string
	if configPath != "" {
		files = append(files, configPath)
	}
	if jobsPath != "" {
		files = append(files, jobsPath)
	}
	if len(files) == 0 {
		return errors.New("nothing to watch: pass -config or a jobs file")
	}

	log := logger.Named("watch")
	rebuild := func(ctx context.Context, _ string) {
		current, err := config.LoadFrom(configPath)
		if err == nil {
			err = current.Validate()
		}
		if err != nil {
			log.Warn("config rejected, keeping previous run", zap.Error(err))
			return
		}

		if jobsPath != "" {
			if _, err := runBatch(ctx, current, jobsPath); err != nil {
				log.Warn("batch failed", zap.Error(err))
			}
			return
		}
		if err := runOne(ctx, batch.NewJob(*name, current)); err != nil {
			log.Warn("terrain failed", zap.Error(err))
		}
	}

	w, err := watch.New(files, cfg.Watch.Debounce, rebuild)
	if err != nil {
		return err
	}

	rebuild(ctx, "")
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", strings.Join(files, ", "))
	return w.Run(ctx)
}
