package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"strings"

	"product-media/internal/logging"

	// Decoders for formats imaging does not register itself.
	_ "image/gif"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decode support
)

// ErrUnsupportedFormat indicates the source bytes could not be decoded by
// any registered image decoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DefaultQuality is the encoder quality used for lossy formats when the
// caller does not override it.
const DefaultQuality = 85

// Resize loads the image at sourcePath and scales it to fit within the
// maxWidth x maxHeight bounding box, preserving aspect ratio. Images
// already inside the box are returned at native resolution; this is a
// fit-within operation that never upscales.
func Resize(sourcePath string, maxWidth, maxHeight int) (image.Image, error) {
	img, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return ResizeImage(img, maxWidth, maxHeight), nil
}

// ResizeImage is the in-memory form of Resize, used when the source frame
// is already decoded (video frame extraction hands frames in directly).
func ResizeImage(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	w, h := FitDimensions(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	if w == bounds.Dx() && h == bounds.Dy() {
		return img
	}

	logging.Debug("Resizing %dx%d to %dx%d", bounds.Dx(), bounds.Dy(), w, h)
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// FitDimensions computes the output size for a fit-within-box resize:
// scale = min(maxW/w, maxH/h, 1.0), dimensions rounded to the nearest
// pixel and clamped to at least 1.
func FitDimensions(srcWidth, srcHeight, maxWidth, maxHeight int) (int, int) {
	if srcWidth <= 0 || srcHeight <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return srcWidth, srcHeight
	}

	scale := math.Min(float64(maxWidth)/float64(srcWidth), float64(maxHeight)/float64(srcHeight))
	if scale >= 1.0 {
		return srcWidth, srcHeight
	}

	w := int(math.Round(float64(srcWidth) * scale))
	h := int(math.Round(float64(srcHeight) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Encode serializes img for storage under targetExt. JPEG and WebP honor
// quality (1-100); PNG is lossless with maximum compression. Extensions
// without a matching encoder fall back to JPEG.
func Encode(img image.Image, targetExt string, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	switch strings.ToLower(targetExt) {
	case ".png":
		var buf bytes.Buffer
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("png encode: %w", err)
		}
		return buf.Bytes(), nil

	case ".webp":
		data, err := encodeWebpWithVips(img, quality)
		if err == nil {
			return data, nil
		}
		logging.Debug("WebP encode via vips failed (%v), falling back to JPEG", err)
		return encodeJPEG(img, quality)

	case ".jpg", ".jpeg":
		return encodeJPEG(img, quality)

	default:
		return encodeJPEG(img, quality)
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	// JPEG carries no alpha channel; flatten before encoding.
	flat := Flatten(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque white background when it may
// carry an alpha channel. Images that are already opaque color models
// pass through unchanged.
func Flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return img
	}

	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}

// Dimensions holds image width and height.
type Dimensions struct {
	Width  int
	Height int
}

// GetDimensions returns image dimensions without fully decoding the pixels.
func GetDimensions(path string) (*Dimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	return &Dimensions{Width: config.Width, Height: config.Height}, nil
}
