package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnailResizesToWidth(t *testing.T) {
	p := NewImageProcessor(64)

	out, err := p.Thumbnail(bytes.NewReader(pngFixture(t, 200, 100)), "image/png")
	require.NoError(t, err)

	decoded, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 32, decoded.Bounds().Dy())
}

func TestThumbnailDoesNotUpscale(t *testing.T) {
	p := NewImageProcessor(320)

	out, err := p.Thumbnail(bytes.NewReader(pngFixture(t, 40, 20)), "image/png")
	require.NoError(t, err)

	decoded, err := webp.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Bounds().Dx())
}

func TestThumbnailRejects(t *testing.T) {
	p := NewImageProcessor(0)

	_, err := p.Thumbnail(strings.NewReader("%PDF"), "application/pdf")
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = p.Thumbnail(strings.NewReader("not a png"), "image/png")
	assert.Error(t, err)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/jpeg"))
	assert.True(t, IsImage("IMAGE/PNG; charset=binary"))
	assert.False(t, IsImage("image/svg+xml"))
	assert.False(t, IsImage("text/plain"))
}
