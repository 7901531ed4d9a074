package assemble

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/tsawler/pdftranslate/model"
	"golang.org/x/image/draw"
)

// prepare checks that the image decodes and shrinks it to maxPixelWidth
// when it is wider. It returns the bytes to embed and their pixel size.
func prepare(img model.ExtractedImage) ([]byte, int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width <= maxPixelWidth {
		return img.Data, cfg.Width, cfg.Height, nil
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding image: %w", err)
	}
	dst := downscale(src, maxPixelWidth)

	var buf bytes.Buffer
	switch img.Format {
	case model.FormatJPEG:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("encoding scaled image: %w", err)
	}
	b := dst.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

// downscale resizes src to width pixels, keeping the aspect ratio.
func downscale(src image.Image, width int) *image.NRGBA {
	sb := src.Bounds()
	height := sb.Dy() * width / sb.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return dst
}
