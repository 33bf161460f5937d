package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"

	// Registered decoders. Uploads are validated against the same set of
	// formats, so every accepted image can be decoded here.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Size is a target raster size in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// DefaultThumbnailSizes are the preview sizes generated for each upload.
var DefaultThumbnailSizes = []Size{
	{Width: 150, Height: 150},
	{Width: 300, Height: 300},
	{Width: 600, Height: 600},
}

// ThumbName returns the canonical stored name for a thumbnail of the given
// size, e.g. "thumb_150x150.jpg".
func ThumbName(size Size) string {
	return fmt.Sprintf("thumb_%s.jpg", size)
}

// CompressOptions controls Compress output.
type CompressOptions struct {
	Quality   int // JPEG quality 1-100
	MaxWidth  int // Downscale bound; 0 means unbounded
	MaxHeight int // Downscale bound; 0 means unbounded
}

// Dimensions reads just enough of the stream to report the image's pixel
// size without decoding the full raster.
func Dimensions(r io.Reader) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Compress re-encodes the image as JPEG at the given quality, downscaling
// first when it exceeds the configured bounds. Aspect ratio is preserved.
func Compress(r io.Reader, w io.Writer, opts CompressOptions) error {
	if opts.Quality < 1 || opts.Quality > 100 {
		return fmt.Errorf("%w: quality %d", ErrInvalidOptions, opts.Quality)
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := src.Bounds()
	target := fit(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)
	if target.Width != bounds.Dx() || target.Height != bounds.Dy() {
		src = scale(src, target)
	}

	if err := jpeg.Encode(w, src, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return nil
}

// Thumbnail renders the image scaled to fit within size, preserving aspect
// ratio, and encodes the result as JPEG. Images already smaller than the
// target are not upscaled.
func Thumbnail(r io.Reader, w io.Writer, size Size) error {
	if size.Width < 1 || size.Height < 1 {
		return fmt.Errorf("%w: size %s", ErrInvalidOptions, size)
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	bounds := src.Bounds()
	target := fit(bounds.Dx(), bounds.Dy(), size.Width, size.Height)
	if target.Width != bounds.Dx() || target.Height != bounds.Dy() {
		src = scale(src, target)
	}

	if err := jpeg.Encode(w, src, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return nil
}

const thumbnailQuality = 85

// fit returns the largest size within (maxW, maxH) that preserves the
// source aspect ratio, never exceeding the source itself. A zero bound
// leaves that axis unconstrained.
func fit(srcW, srcH, maxW, maxH int) Size {
	if srcW < 1 || srcH < 1 {
		return Size{Width: srcW, Height: srcH}
	}

	ratio := 1.0
	if maxW > 0 && srcW > maxW {
		ratio = float64(maxW) / float64(srcW)
	}
	if maxH > 0 && float64(srcH)*ratio > float64(maxH) {
		ratio = float64(maxH) / float64(srcH)
	}
	if ratio >= 1.0 {
		return Size{Width: srcW, Height: srcH}
	}

	w := int(float64(srcW) * ratio)
	h := int(float64(srcH) * ratio)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return Size{Width: w, Height: h}
}

func scale(src image.Image, target Size) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
