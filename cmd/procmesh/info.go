package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/procmesh/pkg/formats"
	pmath "github.com/Faultbox/procmesh/pkg/math"
)

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: procmesh info <file.phm|file.obj|image>")
	}
	path := args[0]

	switch strings.ToLower(filepath.Ext(path)) {
	case ".phm":
		return infoPHM(path)
	case ".obj":
		return infoOBJ(path)
	default:
		return infoImage(path)
	}
}

func infoPHM(path string) error {
	phm, err := formats.ParsePHMFile(path)
	if err != nil {
		return err
	}
	f := phm.Field
	lo, hi := f.Extrema()

	fmt.Printf("Height map: %s\n", path)
	fmt.Printf("Version:    %s\n", phm.Version)
	fmt.Printf("Size:       %dx%d (%d cells)\n", f.Width, f.Height, f.Size())
	fmt.Printf("Heights:    %.4f .. %.4f\n", lo, hi)
	return nil
}

func infoOBJ(path string) error {
	m, err := formats.ParseOBJFile(path)
	if err != nil {
		return err
	}
	b := m.Bounds()

	fmt.Printf("Mesh:      %s\n", path)
	fmt.Printf("Vertices:  %d\n", m.NumVertices())
	fmt.Printf("Triangles: %d\n", m.NumTriangles())
	fmt.Printf("Colors:    %v\n", len(m.Colors) > 0)
	fmt.Printf("Bounds:    %s .. %s\n", vecString(b.Min), vecString(b.Max))
	return nil
}

func infoImage(path string) error {
	img, kind, err := formats.DecodeImageFile(path)
	if err != nil {
		return err
	}
	r := img.Bounds()
	f := formats.ImageHeightField(img)
	lo, hi := f.Extrema()

	fmt.Printf("Image:   %s\n", path)
	fmt.Printf("Format:  %s\n", kind)
	fmt.Printf("Size:    %dx%d\n", r.Dx(), r.Dy())
	fmt.Printf("Heights: %.4f .. %.4f\n", lo, hi)
	return nil
}

func vecString(v pmath.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
