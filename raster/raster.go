// Package raster packs raw image samples into PNG.
//
// Samples are rows of packed components, most significant bit first, each
// row padded to a whole byte. Gray images may use 1, 2, 4 or 8 bits per
// component and are widened to 8-bit gray. RGB images use 8 bits per
// component. The sample count must match the declared geometry exactly:
// short or long buffers are rejected, never truncated or padded.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/tsawler/pdftranslate/imagestream"
)

// ErrUnsupportedBitDepth is returned for a mode and bit depth combination
// that cannot be reconstructed.
var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// ErrUnsupportedColorMode is returned for ModeUnsupported.
var ErrUnsupportedColorMode = errors.New("unsupported color mode")

// SampleSizeMismatchError reports a sample buffer whose length does not
// match width, height, channels and bit depth.
type SampleSizeMismatchError struct {
	Expected int
	Actual   int
}

func (e *SampleSizeMismatchError) Error() string {
	return fmt.Sprintf("sample size mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// ExpectedLen returns the sample buffer length for the given geometry:
// ceil(width*channels*bpc/8) bytes per row. ok is false for non-positive
// arguments and for lengths that do not fit in an int.
func ExpectedLen(width, height, channels, bpc int) (n int, ok bool) {
	if width <= 0 || height <= 0 || channels <= 0 || bpc <= 0 {
		return 0, false
	}
	perPixel := channels * bpc
	if width > (math.MaxInt-7)/perPixel {
		return 0, false
	}
	row := (width*perPixel + 7) / 8
	if row > math.MaxInt/height {
		return 0, false
	}
	return row * height, true
}

// Reconstruct encodes samples as PNG.
func Reconstruct(samples []byte, width, height int, mode imagestream.ColorMode, bpc int) ([]byte, error) {
	img, err := ReconstructImage(samples, width, height, mode, bpc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// ReconstructImage returns samples as an *image.Gray or *image.NRGBA.
func ReconstructImage(samples []byte, width, height int, mode imagestream.ColorMode, bpc int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", imagestream.ErrInvalidDimensions, width, height)
	}

	switch mode {
	case imagestream.ModeGray:
		switch bpc {
		case 1, 2, 4, 8:
		default:
			return nil, fmt.Errorf("%w: gray %d", ErrUnsupportedBitDepth, bpc)
		}
	case imagestream.ModeRGB:
		if bpc != 8 {
			return nil, fmt.Errorf("%w: rgb %d", ErrUnsupportedBitDepth, bpc)
		}
	case imagestream.ModeUnsupported:
		return nil, ErrUnsupportedColorMode
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedColorMode, mode)
	}

	expected, ok := ExpectedLen(width, height, mode.Channels(), bpc)
	// The widened NRGBA buffer is the largest allocation.
	if !ok || width > math.MaxInt/4/height {
		return nil, fmt.Errorf("%w: %dx%d", imagestream.ErrInvalidDimensions, width, height)
	}
	if len(samples) != expected {
		return nil, &SampleSizeMismatchError{Expected: expected, Actual: len(samples)}
	}

	if mode == imagestream.ModeRGB {
		return toNRGBA(samples, width, height), nil
	}
	return toGray(samples, width, height, bpc), nil
}

// toGray widens packed gray samples to one byte per pixel.
func toGray(samples []byte, width, height, bpc int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	if bpc == 8 {
		copy(img.Pix, samples)
		return img
	}

	rowBytes := (width*bpc + 7) / 8
	maxVal := 1<<bpc - 1
	perByte := 8 / bpc
	mask := byte(maxVal)

	for y := 0; y < height; y++ {
		row := samples[y*rowBytes : (y+1)*rowBytes]
		dst := img.Pix[y*img.Stride : y*img.Stride+width]
		for x := 0; x < width; x++ {
			shift := uint(8 - bpc*(x%perByte+1))
			v := (row[x/perByte] >> shift) & mask
			dst[x] = byte(int(v) * 255 / maxVal)
		}
	}
	return img
}

func toNRGBA(samples []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		src := samples[y*width*3 : (y+1)*width*3]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < width; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 255
		}
	}
	return img
}
