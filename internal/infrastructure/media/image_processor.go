// Package media provides image processing utilities
package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

var ErrNotImage = errors.New("content is not a supported image")

const thumbnailQuality = 85

// ImageProcessor produces WebP previews for uploaded attachments.
type ImageProcessor struct {
	width int
}

// NewImageProcessor creates a processor that scales thumbnails to width pixels.
func NewImageProcessor(width int) *ImageProcessor {
	if width <= 0 {
		width = 320
	}
	return &ImageProcessor{width: width}
}

// IsImage reports whether a content type is one we can thumbnail.
func IsImage(contentType string) bool {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "image/png", "image/jpeg", "image/jpg", "image/gif", "image/bmp", "image/tiff", "image/webp":
		return true
	}
	return false
}

// Thumbnail decodes the image in r and returns a WebP thumbnail. Images
// narrower than the configured width are not upscaled. EXIF orientation is
// applied before resizing.
func (p *ImageProcessor) Thumbnail(r io.Reader, contentType string) ([]byte, error) {
	if !IsImage(contentType) {
		return nil, ErrNotImage
	}

	decoded, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := decoded
	if decoded.Bounds().Dx() > p.width {
		resized = imaging.Resize(decoded, p.width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Quality: thumbnailQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode WebP thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
