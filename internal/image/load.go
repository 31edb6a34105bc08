// Package image provides image loading and decoding for the annotation tool.
package image

import (
	"bytes"
	"fmt"
	goimage "image"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/tiff"
)

// Decoded is an image decoded to its native pixel dimensions, ready to
// become a project image.
type Decoded struct {
	Name   string
	Img    goimage.Image
	Width  int
	Height int
}

// Load opens and decodes an image file.
func Load(path string) (*Decoded, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return Decode(filepath.Base(path), file)
}

// Decode decodes an image from a reader. The name is carried through to
// the project image record.
func Decode(name string, r io.Reader) (*Decoded, error) {
	img, _, err := goimage.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &Decoded{
		Name:   name,
		Img:    img,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// EncodePNG encodes an image as PNG bytes, the request format for the
// detection model.
func EncodePNG(img goimage.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail scales an image down to fit within the given bounds, for the
// gallery list. The source is never upscaled.
func Thumbnail(img goimage.Image, width, height int) goimage.Image {
	return imaging.Fit(img, width, height, imaging.Box)
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".tiff", ".tif", ".png", ".jpg", ".jpeg", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
