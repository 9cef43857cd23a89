package formats

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/Faultbox/procmesh/pkg/grid"
)

// ErrUnsupportedImageFormat is returned for unknown image format names.
var ErrUnsupportedImageFormat = errors.New("unsupported image format")

// ImageFormat names an export encoding.
type ImageFormat string

// Supported image formats.
const (
	ImagePNG  ImageFormat = "png"
	ImageTIFF ImageFormat = "tiff"
	ImageBMP  ImageFormat = "bmp"
	ImageWebP ImageFormat = "webp"
	ImageTGA  ImageFormat = "tga"
)

// ImageFormats lists every supported export format.
var ImageFormats = []ImageFormat{ImagePNG, ImageTIFF, ImageBMP, ImageWebP, ImageTGA}

// Extension returns the file extension including the dot.
func (f ImageFormat) Extension() string {
	return "." + string(f)
}

// ParseImageFormat accepts a format name or a file extension.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return ImagePNG, nil
	case "tif", "tiff":
		return ImageTIFF, nil
	case "bmp":
		return ImageBMP, nil
	case "webp":
		return ImageWebP, nil
	case "tga":
		return ImageTGA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, s)
}

// HeightFieldImage renders f as a grayscale image with its extrema mapped to
// black and white. bits selects 8 or 16 bit output. A flat field renders
// black.
func HeightFieldImage(f *grid.HeightField, bits int) (image.Image, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", grid.ErrInvalidDimension, f)
	}

	lo, hi := f.Extrema()
	span := hi - lo
	norm := func(v float32) float32 {
		if span == 0 {
			return 0
		}
		return (v - lo) / span
	}

	rect := image.Rect(0, 0, f.Width, f.Height)
	switch bits {
	case 16:
		img := image.NewGray16(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray16(x, y, color.Gray16{Y: uint16(norm(f.At(x, y))*65535 + 0.5)})
			}
		}
		return img, nil
	case 8:
		img := image.NewGray(rect)
		for y := 0; y < f.Height; y++ {
			for x := 0; x < f.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(norm(f.At(x, y))*255 + 0.5)})
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported bit depth %d (want 8 or 16)", bits)
	}
}

// ImageHeightField converts an image to a height field in [0, 1] using its
// luminance.
func ImageHeightField(img image.Image) *grid.HeightField {
	b := img.Bounds()
	f := grid.NewHeightField(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			g := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16)
			f.Set(x, y, float32(g.Y)/65535)
		}
	}
	return f
}

// EncodeImage writes img in the given format.
func EncodeImage(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case ImagePNG:
		err = png.Encode(w, img)
	case ImageTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case ImageBMP:
		err = bmp.Encode(w, img)
	case ImageWebP:
		// Neither encoder takes gray input
		err = nativewebp.Encode(w, toNRGBA(img), nil)
	case ImageTGA:
		err = tga.Encode(w, toNRGBA(img))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%s encode: %w", format, err)
	}
	return nil
}

// WriteImageFile encodes img to path, picking the format from the extension.
func WriteImageFile(path string, img image.Image) error {
	format, err := ParseImageFormat(filepath.Ext(path))
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	if err := EncodeImage(out, img, format); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// DecodeImageFile reads any registered image format from disk.
func DecodeImageFile(path string) (image.Image, string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}
	defer in.Close()

	img, kind, err := image.Decode(in)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, kind, nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}
