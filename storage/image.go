package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Bounds for stored images.
const (
	AvatarMaxSide  = 512
	CoverMaxWidth  = 1920
	CoverMaxHeight = 1080
	ThumbnailMaxW  = 1280
	ThumbnailMaxH  = 720
	jpegQuality    = 85

	// MaxImagePixels caps the decoded size of an uploaded image.
	MaxImagePixels = 50_000_000
)

// ErrImageTooLarge is returned for images whose header declares more than
// MaxImagePixels pixels.
var ErrImageTooLarge = errors.New("image dimensions too large")

// PrepareImage decodes r, applies EXIF orientation, shrinks the image to fit
// within maxW x maxH and re-encodes it as JPEG. Smaller images are not enlarged.
func PrepareImage(r io.Reader, maxW, maxH int) (*bytes.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrImageTooLarge)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > maxW || b.Dy() > maxH {
		img = imaging.Fit(img, maxW, maxH, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return &buf, nil
}
