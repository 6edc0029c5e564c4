package sky

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

// ParseFormat accepts png, tif or tiff.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return FormatPNG, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatTIFF {
		return ".tiff"
	}
	return ".png"
}

// WriteImage encodes img to path, creating parent directories.
func WriteImage(path string, img image.Image, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	switch format {
	case FormatTIFF:
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("encoding %s: %w", format, err)
	}
	return file.Close()
}

// WriteCubemap writes one image per face named <prefix>_<face><ext> into dir
// and returns the written paths in face order.
func WriteCubemap(dir, prefix string, cm *Cubemap, tm ToneMap, format Format) ([]string, error) {
	paths := make([]string, 0, len(Faces))
	for _, face := range Faces {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", prefix, face, format.Ext()))
		if err := WriteImage(path, tm.ToRGBA64(cm.Face(face)), format); err != nil {
			return paths, fmt.Errorf("face %s: %w", face, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// crossCells places each face in a 4x3 horizontal cross.
var crossCells = map[Face]image.Point{
	PositiveY: {1, 0},
	NegativeX: {0, 1},
	PositiveZ: {1, 1},
	PositiveX: {2, 1},
	NegativeZ: {3, 1},
	NegativeY: {1, 2},
}

// Cross lays the faces out as a horizontal cross. Unused cells are transparent.
func Cross(cm *Cubemap, tm ToneMap) *image.RGBA64 {
	s := cm.Size
	out := image.NewRGBA64(image.Rect(0, 0, 4*s, 3*s))
	for face, cell := range crossCells {
		r := image.Rect(cell.X*s, cell.Y*s, (cell.X+1)*s, (cell.Y+1)*s)
		draw.Draw(out, r, tm.ToRGBA64(cm.Face(face)), image.Point{}, draw.Src)
	}
	return out
}
