package assemble

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate/model"
	"golang.org/x/text/encoding/charmap"
)

const (
	marginMM      = 10.0
	bottomMM      = 15.0
	lineHeightMM  = 10.0
	fontSizePt    = 12.0
	imageWidthMM  = 100.0
	fallbackH     = 60.0
	imageGapMM    = 5.0
	coreFont      = "Arial"
	embeddedFont  = "body"
	maxPixelWidth = 2000
)

// ErrUnsupportedFormat is reported for images the PDF writer cannot
// embed, such as JPEG 2000.
var ErrUnsupportedFormat = errors.New("image format cannot be embedded")

// Warning is an image that could not be placed.
type Warning struct {
	Page  int
	Image string
	Err   error
}

func (w Warning) Error() string {
	return fmt.Sprintf("page %d image %s: %v", w.Page, w.Image, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

type options struct {
	font   []byte
	logger zerolog.Logger
}

// Option configures Build.
type Option func(*options) error

// WithFont embeds a UTF-8 TrueType font for the text.
func WithFont(ttf []byte) Option {
	return func(o *options) error {
		if len(ttf) == 0 {
			return errors.New("empty font data")
		}
		o.font = ttf
		return nil
	}
}

// WithFontFile reads a TrueType font from path. An empty path keeps the
// built-in font.
func WithFontFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading font: %w", err)
		}
		o.font = data
		return nil
	}
}

// WithLogger sets the logger for placement events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}

// Build renders text and images into a PDF. Images that cannot be placed
// are reported as warnings; an error means no document was produced.
func Build(ctx context.Context, text model.AnnotatedText, images model.ImageInventory, opts ...Option) ([]byte, []Warning, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, nil, err
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, bottomMM)

	b := &builder{
		pdf:    pdf,
		log:    o.logger,
		placed: make(map[int]bool),
		encode: cp1252,
	}
	if o.font != nil {
		pdf.AddUTF8FontFromBytes(embeddedFont, "", o.font)
		pdf.SetFont(embeddedFont, "", fontSizePt)
		b.encode = func(s string) string { return s }
	} else {
		pdf.SetFont(coreFont, "", fontSizePt)
	}
	if err := pdf.Error(); err != nil {
		return nil, nil, fmt.Errorf("setting font: %w", err)
	}

	byPage := make(map[int][]int)
	for i, img := range images {
		byPage[img.Page] = append(byPage[img.Page], i)
	}
	b.images = images
	b.byPage = byPage

	blocks := text.Blocks()
	if len(blocks) == 0 {
		blocks = []model.Block{{}}
	}
	for _, blk := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		b.page(blk)
	}

	// Images of pages that have no block of their own.
	for i, img := range images {
		if !b.placed[i] {
			b.place(i, img)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, b.warnings, fmt.Errorf("building PDF: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, b.warnings, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), b.warnings, nil
}

type builder struct {
	pdf    *gofpdf.Fpdf
	log    zerolog.Logger
	encode func(string) string

	images model.ImageInventory
	byPage map[int][]int
	placed map[int]bool

	y        float64
	warnings []Warning
}

func (b *builder) page(blk model.Block) {
	b.pdf.AddPage()
	b.y = marginMM

	for _, line := range blk.Lines {
		if n, ok := model.ParseImageMarker(line); ok {
			b.placePage(n)
			continue
		}
		b.pdf.SetXY(marginMM, b.y)
		b.pdf.MultiCell(0, lineHeightMM, b.encode(line), "", "", false)
		b.y = b.pdf.GetY()
	}

	if blk.Page > 0 {
		b.placePage(blk.Page)
	}
}

func (b *builder) placePage(page int) {
	for _, i := range b.byPage[page] {
		if !b.placed[i] {
			b.place(i, b.images[i])
		}
	}
}

func (b *builder) place(i int, img model.ExtractedImage) {
	b.placed[i] = true

	imgType, err := gofpdfType(img.Format)
	if err != nil {
		b.warn(img, err)
		return
	}
	data, w, h, err := prepare(img)
	if err != nil {
		b.warn(img, err)
		return
	}

	name := fmt.Sprintf("p%d_%d_%s", img.Page, img.Index, img.Name)
	opt := gofpdf.ImageOptions{ImageType: imgType}
	b.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(data))
	if err := b.pdf.Error(); err != nil {
		b.pdf.ClearError()
		b.warn(img, err)
		return
	}

	height := fallbackH
	if w > 0 && h > 0 {
		height = imageWidthMM * float64(h) / float64(w)
	}
	_, pageH := b.pdf.GetPageSize()
	if b.y+height > pageH-bottomMM && b.y > marginMM {
		b.pdf.AddPage()
		b.y = marginMM
	}

	b.pdf.ImageOptions(name, marginMM, b.y, imageWidthMM, height, false, opt, 0, "")
	b.y += height + imageGapMM
	b.log.Debug().Int("page", img.Page).Str("image", img.Name).Float64("height_mm", height).Msg("image placed")
}

func (b *builder) warn(img model.ExtractedImage, err error) {
	b.warnings = append(b.warnings, Warning{Page: img.Page, Image: img.Name, Err: err})
	b.log.Debug().Err(err).Int("page", img.Page).Str("image", img.Name).Msg("image not placed")
}

func gofpdfType(f model.OutputFormat) (string, error) {
	switch f {
	case model.FormatPNG:
		return "PNG", nil
	case model.FormatJPEG:
		return "JPG", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// cp1252 maps text to the single-byte encoding of the built-in fonts.
// Characters outside it become '?'.
func cp1252(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			sb.WriteByte(byte(r))
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('?')
	}
	return sb.String()
}
