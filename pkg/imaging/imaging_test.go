package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filekit/filekit/pkg/imaging"
)

// encodePNG renders a solid-color test image.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 640, 480)

	w, h, err := imaging.Dimensions(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestDimensions_NotAnImage(t *testing.T) {
	t.Parallel()

	_, _, err := imaging.Dimensions(bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, imaging.ErrNotAnImage)
}

func TestCompress(t *testing.T) {
	t.Parallel()

	t.Run("downscales oversized image", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 2000, 1000)

		var out bytes.Buffer
		err := imaging.Compress(bytes.NewReader(data), &out, imaging.CompressOptions{
			Quality:   80,
			MaxWidth:  1000,
			MaxHeight: 1000,
		})
		require.NoError(t, err)

		w, h, err := imaging.Dimensions(bytes.NewReader(out.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 1000, w)
		assert.Equal(t, 500, h)
	})

	t.Run("keeps size within bounds", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 400, 300)

		var out bytes.Buffer
		err := imaging.Compress(bytes.NewReader(data), &out, imaging.CompressOptions{
			Quality:   80,
			MaxWidth:  1000,
			MaxHeight: 1000,
		})
		require.NoError(t, err)

		w, h, err := imaging.Dimensions(bytes.NewReader(out.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 400, w)
		assert.Equal(t, 300, h)
	})

	t.Run("rejects bad quality", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 10, 10)

		var out bytes.Buffer
		err := imaging.Compress(bytes.NewReader(data), &out, imaging.CompressOptions{Quality: 0})
		assert.ErrorIs(t, err, imaging.ErrInvalidOptions)
	})
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	t.Run("fits within target preserving aspect", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 600, 300)

		var out bytes.Buffer
		err := imaging.Thumbnail(bytes.NewReader(data), &out, imaging.Size{Width: 150, Height: 150})
		require.NoError(t, err)

		w, h, err := imaging.Dimensions(bytes.NewReader(out.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 150, w)
		assert.Equal(t, 75, h)
	})

	t.Run("does not upscale", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 100, 80)

		var out bytes.Buffer
		err := imaging.Thumbnail(bytes.NewReader(data), &out, imaging.Size{Width: 300, Height: 300})
		require.NoError(t, err)

		w, h, err := imaging.Dimensions(bytes.NewReader(out.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 100, w)
		assert.Equal(t, 80, h)
	})
}

func TestThumbName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "thumb_150x150.jpg", imaging.ThumbName(imaging.Size{Width: 150, Height: 150}))
}

func TestDefaultThumbnailSizes(t *testing.T) {
	t.Parallel()

	require.Len(t, imaging.DefaultThumbnailSizes, 3)
	assert.Equal(t, imaging.Size{Width: 150, Height: 150}, imaging.DefaultThumbnailSizes[0])
	assert.Equal(t, imaging.Size{Width: 600, Height: 600}, imaging.DefaultThumbnailSizes[2])
}
