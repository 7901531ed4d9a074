package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/tsawler/pdftranslate/imagestream"
)

// TestReconstructRGBRoundTrip tests that the PNG decodes to the declared size
// and pixel values.
func TestReconstructRGBRoundTrip(t *testing.T) {
	tests := []struct {
		w, h int
	}{
		{1, 1},
		{3, 2},
		{10, 7},
	}

	for _, tt := range tests {
		samples := make([]byte, tt.w*tt.h*3)
		for i := range samples {
			samples[i] = byte(i * 7)
		}

		out, err := Reconstruct(samples, tt.w, tt.h, imagestream.ModeRGB, 8)
		if err != nil {
			t.Fatalf("%dx%d: Reconstruct() error = %v", tt.w, tt.h, err)
		}
		img, err := png.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("png.Decode() error = %v", err)
		}
		if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("bounds = %v, want %dx%d", b, tt.w, tt.h)
		}

		got := color.NRGBAModel.Convert(img.At(tt.w-1, tt.h-1)).(color.NRGBA)
		i := ((tt.h-1)*tt.w + tt.w - 1) * 3
		want := color.NRGBA{samples[i], samples[i+1], samples[i+2], 255}
		if got != want {
			t.Errorf("last pixel = %v, want %v", got, want)
		}
	}
}

// TestReconstructMismatch tests that wrong buffer sizes are rejected.
func TestReconstructMismatch(t *testing.T) {
	tests := []struct {
		name    string
		samples int
		w, h    int
		mode    imagestream.ColorMode
		bpc     int
		want    int
	}{
		{"rgb short by one", 4*3*3 - 1, 4, 3, imagestream.ModeRGB, 8, 36},
		{"rgb long by one", 4*3*3 + 1, 4, 3, imagestream.ModeRGB, 8, 36},
		{"gray short", 99, 10, 10, imagestream.ModeGray, 8, 100},
		{"bilevel padded rows", 10, 10, 10, imagestream.ModeGray, 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconstruct(make([]byte, tt.samples), tt.w, tt.h, tt.mode, tt.bpc)
			var e *SampleSizeMismatchError
			if !errors.As(err, &e) {
				t.Fatalf("err = %v, want SampleSizeMismatchError", err)
			}
			if e.Expected != tt.want || e.Actual != tt.samples {
				t.Errorf("got expected=%d actual=%d, want %d/%d", e.Expected, e.Actual, tt.want, tt.samples)
			}
		})
	}
}

// TestReconstructGrayDepths tests widening of packed gray samples.
func TestReconstructGrayDepths(t *testing.T) {
	tests := []struct {
		name    string
		bpc     int
		width   int
		samples []byte
		want    []uint8
	}{
		{"1 bit", 1, 3, []byte{0b10100000}, []uint8{255, 0, 255}},
		{"2 bit", 2, 4, []byte{0b00011011}, []uint8{0, 85, 170, 255}},
		{"4 bit", 4, 3, []byte{0x0F, 0x80}, []uint8{0, 255, 136}},
		{"8 bit", 8, 2, []byte{12, 200}, []uint8{12, 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ReconstructImage(tt.samples, tt.width, 1, imagestream.ModeGray, tt.bpc)
			if err != nil {
				t.Fatalf("ReconstructImage() error = %v", err)
			}
			gray, ok := img.(*image.Gray)
			if !ok {
				t.Fatalf("image type = %T, want *image.Gray", img)
			}
			for x, want := range tt.want {
				if got := gray.GrayAt(x, 0).Y; got != want {
					t.Errorf("pixel %d = %d, want %d", x, got, want)
				}
			}
		})
	}
}

// TestReconstructRejects tests unsupported modes and depths.
func TestReconstructRejects(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		mode imagestream.ColorMode
		bpc  int
		want error
	}{
		{"rgb 4 bit", 2, 2, imagestream.ModeRGB, 4, ErrUnsupportedBitDepth},
		{"gray 16 bit", 2, 2, imagestream.ModeGray, 16, ErrUnsupportedBitDepth},
		{"unsupported mode", 2, 2, imagestream.ModeUnsupported, 8, ErrUnsupportedColorMode},
		{"zero height", 2, 0, imagestream.ModeGray, 8, imagestream.ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconstruct(make([]byte, 64), tt.w, tt.h, tt.mode, tt.bpc)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestExpectedLen tests row padding and overflow detection.
func TestExpectedLen(t *testing.T) {
	tests := []struct {
		w, h, ch, bpc, want int
		ok                  bool
	}{
		{10, 10, 1, 8, 100, true},
		{10, 10, 3, 8, 300, true},
		{10, 10, 1, 1, 20, true},
		{9, 2, 1, 4, 10, true},
		{3, 1, 1, 2, 1, true},
		{1 << 32, 1 << 32, 1, 8, 0, false},
		{math.MaxInt / 2, 1, 3, 8, 0, false},
		{0, 10, 1, 8, 0, false},
	}

	for _, tt := range tests {
		got, ok := ExpectedLen(tt.w, tt.h, tt.ch, tt.bpc)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ExpectedLen(%d, %d, %d, %d) = %d, %v; want %d, %v", tt.w, tt.h, tt.ch, tt.bpc, got, ok, tt.want, tt.ok)
		}
	}
}

// TestReconstructHugeDimensions tests that dimensions whose buffer size
// overflows are rejected instead of allocating.
func TestReconstructHugeDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		mode imagestream.ColorMode
		bpc  int
	}{
		{"gray 8", 1 << 32, 1 << 32, imagestream.ModeGray, 8},
		{"gray 1", 1 << 40, 1 << 30, imagestream.ModeGray, 1},
		{"rgb", 1 << 31, 1 << 31, imagestream.ModeRGB, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconstruct(nil, tt.w, tt.h, tt.mode, tt.bpc)
			if !errors.Is(err, imagestream.ErrInvalidDimensions) {
				t.Errorf("err = %v, want ErrInvalidDimensions", err)
			}
		})
	}
}
