package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/procmesh/internal/batch"
	"github.com/Faultbox/procmesh/internal/config"
	"github.com/Faultbox/procmesh/pkg/formats"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.HeightMap.Width = 9
	cfg.HeightMap.Height = 9
	cfg.HeightMap.DiamondSquare.MaxFeatureSize = 4
	cfg.Output.Dir = t.TempDir()
	return cfg
}

func TestCmdHeightMapThenMesh(t *testing.T) {
	cfg := testConfig(t)

	if err := cmdHeightMap(cfg, []string{"-name", "hm"}); err != nil {
		t.Fatalf("heightmap: %v", err)
	}
	phmPath := filepath.Join(cfg.Output.Dir, "hm", batch.HeightMapFile)
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "hm", batch.MeshFile)); !os.IsNotExist(err) {
		t.Errorf("heightmap command should not write a mesh, stat err = %v", err)
	}

	objPath := filepath.Join(cfg.Output.Dir, "hm.obj")
	if err := cmdMesh(cfg, []string{phmPath, objPath}); err != nil {
		t.Fatalf("mesh: %v", err)
	}
	m, err := formats.ParseOBJFile(objPath)
	if err != nil {
		t.Fatalf("reading mesh: %v", err)
	}
	if m.NumVertices() == 0 || m.NumTriangles() > 8*8*2 {
		t.Errorf("unexpected mesh: %d vertices, %d triangles", m.NumVertices(), m.NumTriangles())
	}

	if err := cmdInfo([]string{phmPath}); err != nil {
		t.Errorf("info phm: %v", err)
	}
	if err := cmdInfo([]string{objPath}); err != nil {
		t.Errorf("info obj: %v", err)
	}
	if err := cmdInfo([]string{filepath.Join(cfg.Output.Dir, "hm", "heightmap.png")}); err != nil {
		t.Errorf("info png: %v", err)
	}
}

func TestCmdSimplify(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simplifier = mesh.DefaultSimplifierOptions()

	in := filepath.Join(cfg.Output.Dir, "plane.obj")
	out := filepath.Join(cfg.Output.Dir, "plane_small.obj")
	if err := formats.WriteOBJFile(in, mesh.PlaneMesh(6)); err != nil {
		t.Fatal(err)
	}

	if err := cmdSimplify(cfg, []string{in, out}); err != nil {
		t.Fatalf("simplify: %v", err)
	}
	m, err := formats.ParseOBJFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if m.NumTriangles() >= 6*6*2 {
		t.Errorf("plane was not simplified: %d triangles", m.NumTriangles())
	}
}

func TestCmdLine(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "path.yaml")
	out := filepath.Join(dir, "path.obj")
	points := "- [0, 0]\n- [1, 0.01]\n- [2, 0]\n- [2, 2]\n- [4, 2]\n"
	if err := os.WriteFile(in, []byte(points), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := cmdLine([]string{"-thickness", "0.5", "-simplify", "rdp", "-tolerance", "0.1", in, out}); err != nil {
		t.Fatalf("line: %v", err)
	}
	m, err := formats.ParseOBJFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	// The near-straight first bend is simplified away, leaving four points.
	if m.NumTriangles() < 6 || m.NumVertices() < 8 {
		t.Errorf("unexpected strip: %d vertices, %d triangles", m.NumVertices(), m.NumTriangles())
	}

	if err := cmdLine([]string{"-simplify", "bogus", in, out}); err == nil {
		t.Error("unknown simplify method should fail")
	}
}

func TestCmdArgErrors(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	if err := cmdMesh(cfg, nil); err == nil {
		t.Error("mesh without args should fail")
	}
	if err := cmdSimplify(cfg, []string{"a.obj"}); err == nil {
		t.Error("simplify with one arg should fail")
	}
	if err := cmdBatch(ctx, cfg, nil); err == nil {
		t.Error("batch without args should fail")
	}
	if err := cmdLine([]string{"only.yaml"}); err == nil {
		t.Error("line with one arg should fail")
	}
	if err := cmdInfo(nil); err == nil {
		t.Error("info without args should fail")
	}
	if err := cmdInfo([]string{filepath.Join(cfg.Output.Dir, "missing.phm")}); err == nil {
		t.Error("info on missing file should fail")
	}
}
