package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/procmesh/pkg/grid"
)

// PHM format errors.
var (
	ErrInvalidPHMMagic       = errors.New("invalid PHM magic: expected 'PHMP'")
	ErrUnsupportedPHMVersion = errors.New("unsupported PHM version")
	ErrTruncatedPHMData      = errors.New("truncated PHM data")
)

const (
	phmMagic      = "PHMP"
	phmHeaderSize = 14
	phmMaxSide    = 1 << 14
)

// PHMVersion is the version of a PHM file.
type PHMVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v PHMVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// PHMCurrentVersion is written by WritePHM.
var PHMCurrentVersion = PHMVersion{Major: 1, Minor: 0}

// PHM is a parsed height map file.
type PHM struct {
	Version PHMVersion
	Field   *grid.HeightField
}

// ParsePHM parses a PHM height map from raw bytes.
//
// Layout: "PHMP", version as [minor, major], uint32 width, uint32 height,
// then width*height little-endian float32 values in row-major order.
func ParsePHM(data []byte) (*PHM, error) {
	if len(data) < phmHeaderSize {
		return nil, ErrTruncatedPHMData
	}

	if string(data[0:4]) != phmMagic {
		return nil, ErrInvalidPHMMagic
	}

	version := PHMVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != PHMCurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPHMVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var width, height uint32
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return nil, fmt.Errorf("%w: reading width", ErrTruncatedPHMData)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return nil, fmt.Errorf("%w: reading height", ErrTruncatedPHMData)
	}

	if width == 0 || height == 0 || width > phmMaxSide || height > phmMaxSide {
		return nil, fmt.Errorf("invalid PHM dimensions: %dx%d", width, height)
	}

	count := int(width) * int(height)
	if r.Len() < count*4 {
		return nil, fmt.Errorf("%w: need %d values, have %d bytes", ErrTruncatedPHMData, count, r.Len())
	}

	field := grid.NewHeightField(int(width), int(height))
	if err := binary.Read(r, binary.LittleEndian, field.Values); err != nil {
		return nil, fmt.Errorf("%w: reading values", ErrTruncatedPHMData)
	}

	return &PHM{Version: version, Field: field}, nil
}

// ParsePHMFile parses a PHM file from disk.
func ParsePHMFile(path string) (*PHM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PHM file: %w", err)
	}
	return ParsePHM(data)
}

// WritePHM writes f in PHM format.
func WritePHM(w io.Writer, f *grid.HeightField) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", grid.ErrInvalidDimension, f)
	}
	if f.Width > phmMaxSide || f.Height > phmMaxSide {
		return fmt.Errorf("height field %s exceeds PHM limit %d", f, phmMaxSide)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(phmMagic)
	bw.WriteByte(PHMCurrentVersion.Minor)
	bw.WriteByte(PHMCurrentVersion.Major)

	header := [2]uint32{uint32(f.Width), uint32(f.Height)}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing PHM header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, f.Values); err != nil {
		return fmt.Errorf("writing PHM values: %w", err)
	}
	return bw.Flush()
}

// WritePHMFile writes f to path, replacing any existing file.
func WritePHMFile(path string, f *grid.HeightField) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating PHM file: %w", err)
	}
	if err := WritePHM(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
