package pdftranslate

import (
	"bytes"
	"compress/flate"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate/imagestream"
	"github.com/tsawler/pdftranslate/internal/pdftest"
	"github.com/tsawler/pdftranslate/model"
	"github.com/tsawler/pdftranslate/raster"
)

var fakeJPEG = []byte("\xff\xd8\xff\xe0 not really a jpeg \xff\xd9")

// twoPageDoc has text and a Flate RGB image on page 1 and only a DCT
// image on page 2.
func twoPageDoc() []byte {
	b := pdftest.New()
	font := b.Add(pdftest.HelveticaFont)

	rgb := bytes.Repeat([]byte{255, 0, 0}, 4*3)
	im1 := b.AddStream("/Type /XObject /Subtype /Image /Width 4 /Height 3 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode", pdftest.Flate(rgb))
	im2 := b.AddStream("/Type /XObject /Subtype /Image /Width 8 /Height 8 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode", fakeJPEG)

	return b.Document(
		pdftest.Page{
			Content:   pdftest.TextContent("Hello world") + "\nq 100 0 0 75 72 500 cm /Im1 Do Q",
			Resources: "/Font << /F1 " + ref(font) + " >> /XObject << /Im1 " + ref(im1) + " >>",
		},
		pdftest.Page{
			Content:   "q 100 0 0 100 0 0 cm /Im2 Do Q",
			Resources: "/XObject << /Im2 " + ref(im2) + " >>",
		},
	)
}

// rawDeflate compresses data without the zlib wrapper.
func rawDeflate(data []byte) []byte {
	var buf bytes.Buffer
	w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

func ref(n int) string {
	return fmt.Sprintf("%d 0 R", n)
}

// TestExtractTwoPages tests text, markers and the inventory of a document
// with one text page and one image-only page.
func TestExtractTwoPages(t *testing.T) {
	res, warnings, err := FromBytes(twoPageDoc()).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", FormatWarnings(warnings))
	}

	want := "--- Page 1 ---\nHello world\n[Image present on page 1]\n" +
		"--- Page 2 ---\n[No extractable text on this page]\n[Image present on page 2]\n"
	if string(res.Text) != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
	if res.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", res.PageCount)
	}
	if got := res.Text.PageCount(); got != 2 {
		t.Errorf("page markers = %d, want 2", got)
	}

	if len(res.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(res.Images))
	}

	first := res.Images[0]
	if first.Page != 1 || first.Name != "Im1" || first.Format != model.FormatPNG {
		t.Errorf("image 0 = page %d %s %s, want page 1 Im1 png", first.Page, first.Name, first.Format)
	}
	img, err := png.Decode(bytes.NewReader(first.Data))
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("PNG size = %dx%d, want 4x3", b.Dx(), b.Dy())
	}

	second := res.Images[1]
	if second.Page != 2 || second.Format != model.FormatJPEG {
		t.Errorf("image 1 = page %d %s, want page 2 jpg", second.Page, second.Format)
	}
	if !bytes.Equal(second.Data, fakeJPEG) {
		t.Errorf("JPEG bytes changed: got %q, want %q", second.Data, fakeJPEG)
	}
	if got := res.Images.Pages(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Images.Pages() = %v, want [1 2]", got)
	}
}

// TestExtractTextPageAndGrayImagePage tests a text-only first page followed
// by a page whose only content is a 10x10 DeviceGray Flate image.
func TestExtractTextPageAndGrayImagePage(t *testing.T) {
	b := pdftest.New()
	font := b.Add(pdftest.HelveticaFont)

	samples := make([]byte, 10*10)
	for i := range samples {
		samples[i] = byte(i * 2)
	}
	im := b.AddStream("/Type /XObject /Subtype /Image /Width 10 /Height 10 /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode", pdftest.Flate(samples))

	data := b.Document(
		pdftest.Page{
			Content:   pdftest.TextContent("First page text"),
			Resources: "/Font << /F1 " + ref(font) + " >>",
		},
		pdftest.Page{
			Content:   "q 10 0 0 10 0 0 cm /Im1 Do Q",
			Resources: "/XObject << /Im1 " + ref(im) + " >>",
		},
	)

	res, warnings, err := FromBytes(data).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", FormatWarnings(warnings))
	}

	want := "--- Page 1 ---\nFirst page text\n--- Page 2 ---\n[No extractable text on this page]\n[Image present on page 2]\n"
	if string(res.Text) != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}

	if len(res.Images) != 1 {
		t.Fatalf("got %d images, want 1", len(res.Images))
	}
	got := res.Images[0]
	if got.Page != 2 || got.Format != model.FormatPNG {
		t.Errorf("image = page %d %s, want page 2 png", got.Page, got.Format)
	}
	img, err := png.Decode(bytes.NewReader(got.Data))
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	if bnd := img.Bounds(); bnd.Dx() != 10 || bnd.Dy() != 10 {
		t.Errorf("PNG size = %dx%d, want 10x10", bnd.Dx(), bnd.Dy())
	}
	if gray, ok := img.(*image.Gray); !ok || gray.GrayAt(3, 1).Y != samples[13] {
		t.Errorf("PNG is %T or pixel (3,1) differs, want *image.Gray with %d", img, samples[13])
	}
}

// TestExtractImageFailures tests that undecodable images keep their page
// marker, produce a warning and add nothing to the inventory.
func TestExtractImageFailures(t *testing.T) {
	z := pdftest.Flate([]byte{1, 2, 3, 4})
	corrupt := pdftest.ASCII85(z[:len(z)-6])

	tests := []struct {
		name  string
		dict  string
		data  []byte
		check func(t *testing.T, err error)
	}{
		{
			name: "ascii85 then truncated flate",
			dict: "/Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter [/ASCII85Decode /FlateDecode]",
			data: corrupt,
			check: func(t *testing.T, err error) {
				var de *imagestream.DecodeFailureError
				if !errors.As(err, &de) {
					t.Fatalf("error %v is not a DecodeFailureError", err)
				}
				if de.Filter != "FlateDecode" {
					t.Errorf("Filter = %q, want FlateDecode", de.Filter)
				}
			},
		},
		{
			name: "cmyk",
			dict: "/Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceCMYK /BitsPerComponent 8",
			data: []byte{0, 0, 0, 0},
			check: func(t *testing.T, err error) {
				var ce *imagestream.UnsupportedColorSpaceError
				if !errors.As(err, &ce) {
					t.Fatalf("error %v is not an UnsupportedColorSpaceError", err)
				}
			},
		},
		{
			name: "short samples",
			dict: "/Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceRGB /BitsPerComponent 8",
			data: make([]byte, 2*2*3-1),
			check: func(t *testing.T, err error) {
				var se *raster.SampleSizeMismatchError
				if !errors.As(err, &se) {
					t.Fatalf("error %v is not a SampleSizeMismatchError", err)
				}
				if se.Expected != 12 || se.Actual != 11 {
					t.Errorf("mismatch = %d/%d, want 12/11", se.Expected, se.Actual)
				}
			},
		},
		{
			name: "dimensions overflow",
			dict: "/Subtype /Image /Width 4294967296 /Height 4294967296 /ColorSpace /DeviceGray /BitsPerComponent 8",
			data: nil,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, imagestream.ErrInvalidDimensions) {
					t.Fatalf("error %v is not ErrInvalidDimensions", err)
				}
			},
		},
		{
			name: "headerless flate",
			dict: "/Subtype /Image /Width 2 /Height 2 /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode",
			data: rawDeflate([]byte{1, 2, 3, 4}),
			check: func(t *testing.T, err error) {
				var de *imagestream.DecodeFailureError
				if !errors.As(err, &de) || de.Filter != "FlateDecode" {
					t.Fatalf("error %v is not a FlateDecode failure", err)
				}
			},
		},
		{
			name: "unknown filter",
			dict: "/Subtype /Image /Width 1 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /LZWDecode",
			data: []byte{0},
			check: func(t *testing.T, err error) {
				var fe *imagestream.UnsupportedFilterError
				if !errors.As(err, &fe) {
					t.Fatalf("error %v is not an UnsupportedFilterError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pdftest.New()
			font := b.Add(pdftest.HelveticaFont)
			im := b.AddStream(tt.dict, tt.data)
			data := b.Document(pdftest.Page{
				Content:   pdftest.TextContent("Caption") + "\n/Im1 Do",
				Resources: "/Font << /F1 " + ref(font) + " >> /XObject << /Im1 " + ref(im) + " >>",
			})

			res, warnings, err := FromBytes(data).Extract()
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(res.Images) != 0 {
				t.Errorf("got %d images, want 0", len(res.Images))
			}
			want := "--- Page 1 ---\nCaption\n[Image present on page 1]\n"
			if string(res.Text) != want {
				t.Errorf("Text = %q, want %q", res.Text, want)
			}
			if len(warnings) != 1 {
				t.Fatalf("got %d warnings, want 1", len(warnings))
			}
			w := warnings[0]
			if w.Page != 1 || w.Image != "Im1" {
				t.Errorf("warning = page %d image %q, want page 1 Im1", w.Page, w.Image)
			}
			tt.check(t, w.Err)
		})
	}
}

// TestExtractMalformed tests that unreadable documents fail as a whole.
func TestExtractMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"not a pdf", []byte("hello, world")},
		{"encrypted", bytes.Replace(twoPageDoc(), []byte("/Root"), []byte("/Encrypt << >> /Root"), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, warnings, err := FromBytes(tt.data).Extract()
			var me *MalformedDocumentError
			if !errors.As(err, &me) {
				t.Fatalf("err = %v, want *MalformedDocumentError", err)
			}
			if res.Text != "" || res.Images != nil || warnings != nil {
				t.Errorf("got a partial result with a fatal error")
			}
		})
	}
}

// TestExtractContentError tests that a broken content stream keeps the
// text before the error and reports a warning.
func TestExtractContentError(t *testing.T) {
	b := pdftest.New()
	font := b.Add(pdftest.HelveticaFont)
	data := b.Document(pdftest.Page{
		Content:   pdftest.TextContent("Kept") + " ]",
		Resources: "/Font << /F1 " + ref(font) + " >>",
	})

	res, warnings, err := FromBytes(data).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if want := "--- Page 1 ---\nKept\n"; string(res.Text) != want {
		t.Errorf("Text = %q, want %q", res.Text, want)
	}
	if len(warnings) != 1 || warnings[0].Image != "" {
		t.Errorf("warnings = %v, want one page warning", warnings)
	}
}

// TestFluentOptions tests that configuration methods leave the receiver
// unchanged and that TextOnly still writes image markers.
func TestFluentOptions(t *testing.T) {
	base := FromBytes(twoPageDoc())
	textOnly := base.TextOnly().WithLogger(zerolog.Nop())

	if base.options.skipImages {
		t.Fatal("TextOnly modified the receiver")
	}

	res, _, err := textOnly.Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Images) != 0 {
		t.Errorf("got %d images with TextOnly, want 0", len(res.Images))
	}
	if !strings.Contains(string(res.Text), model.ImageMarker(2)) {
		t.Errorf("Text %q lacks the page 2 image marker", res.Text)
	}

	if _, _, err := base.WithMaxDecodedBytes(-1).Extract(); err == nil {
		t.Error("negative limit accepted")
	}

	// A cap below the first image's decoded size fails that image only.
	res, warnings, err := base.WithMaxDecodedBytes(8).Extract()
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(res.Images) != 1 || res.Images[0].Page != 2 {
		t.Errorf("got %d images, want only the page 2 JPEG", len(res.Images))
	}
	if len(warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(warnings))
	}
}

// TestOpen tests extraction from a file and a missing source.
func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, twoPageDoc(), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := Open(path).PageCount()
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 2 {
		t.Errorf("PageCount = %d, want 2", n)
	}

	if _, _, err := Open("").Extract(); !errors.Is(err, ErrNoSource) {
		t.Errorf("err = %v, want ErrNoSource", err)
	}
}
