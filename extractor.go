package pdftranslate

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tsawler/pdftranslate/imagestream"
	"github.com/tsawler/pdftranslate/model"
	"github.com/tsawler/pdftranslate/pages"
	"github.com/tsawler/pdftranslate/raster"
	"github.com/tsawler/pdftranslate/reader"
)

// ErrNoSource is returned when an Extractor has neither a file name nor
// data to read.
var ErrNoSource = errors.New("no document specified")

// Extractor provides a fluent interface for extracting a PDF. Each
// configuration method returns a new Extractor, so a configured value can
// be shared and reused.
type Extractor struct {
	// Source
	filename string
	data     []byte
	reader   *reader.Reader

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone returns a shallow copy with its own options.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		filename: e.filename,
		data:     e.data,
		reader:   e.reader,
		options:  e.options.clone(),
		err:      e.err,
	}
}

// WithLogger sets the logger that receives per-image debug events.
func (e *Extractor) WithLogger(l zerolog.Logger) *Extractor {
	ne := e.clone()
	ne.options.logger = l
	return ne
}

// WithMaxDecodedBytes caps the output of each image filter stage.
func (e *Extractor) WithMaxDecodedBytes(n int64) *Extractor {
	ne := e.clone()
	if n < 0 {
		ne.err = fmt.Errorf("invalid decoded size limit %d", n)
		return ne
	}
	ne.options.maxDecodedBytes = n
	return ne
}

// TextOnly skips image decoding. Pages that use images still get their
// image-presence line.
func (e *Extractor) TextOnly() *Extractor {
	ne := e.clone()
	ne.options.skipImages = true
	return ne
}

// load returns the document reader, loading it on first use.
func (e *Extractor) load() (*reader.Reader, error) {
	if e.reader != nil {
		return e.reader, nil
	}
	switch {
	case e.data != nil:
		return reader.Load(e.data)
	case e.filename != "":
		return reader.Open(e.filename)
	default:
		return nil, ErrNoSource
	}
}

// PageCount returns the number of pages without extracting them.
func (e *Extractor) PageCount() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	r, err := e.load()
	if err != nil {
		return 0, err
	}
	return r.PageCount(), nil
}

// Extract reads every page in document order. A document that cannot be
// parsed returns a *MalformedDocumentError and no result. Problems with
// single pages or images are returned as warnings.
func (e *Extractor) Extract() (Result, []Warning, error) {
	if e.err != nil {
		return Result{}, nil, e.err
	}
	r, err := e.load()
	if err != nil {
		return Result{}, nil, err
	}

	x := &extraction{
		reader: r,
		opts:   e.options,
		log:    e.options.logger,
	}
	if e.options.maxDecodedBytes > 0 {
		x.resolveOpts = append(x.resolveOpts, imagestream.WithMaxDecodedBytes(e.options.maxDecodedBytes))
	}

	for _, page := range r.Pages() {
		x.page(page)
	}

	return Result{
		Text:      x.text.Text(),
		Images:    x.images,
		PageCount: x.text.Pages(),
	}, x.warnings, nil
}

// extraction holds the accumulators of one Extract call.
type extraction struct {
	reader      *reader.Reader
	opts        ExtractOptions
	log         zerolog.Logger
	resolveOpts []imagestream.Option

	text     model.TextBuilder
	images   model.ImageInventory
	warnings []Warning
}

func (x *extraction) warn(page int, image string, err error) {
	x.warnings = append(x.warnings, Warning{Page: page, Image: image, Err: err})
}

func (x *extraction) page(page *pages.Page) {
	num := page.Number()

	txt, names, err := x.reader.ExtractText(page)
	if err != nil {
		x.warn(num, "", err)
		x.log.Debug().Err(err).Int("page", num).Msg("text extraction incomplete")
	}

	found, err := x.reader.PageImages(page, names)
	if err != nil {
		x.warn(num, "", err)
		x.log.Debug().Err(err).Int("page", num).Msg("listing images failed")
	}

	x.text.AddPage(num, txt, len(found) > 0)

	if x.opts.skipImages {
		return
	}
	for _, pi := range found {
		x.image(pi)
	}
}

func (x *extraction) image(pi reader.PageImage) {
	obj := pi.Object
	if pi.Err != nil {
		x.fail(obj, &imagestream.ImageError{Page: obj.Page, Name: obj.Name, Err: pi.Err})
		return
	}

	payload := imagestream.Resolve(obj, x.resolveOpts...)
	img := model.ExtractedImage{
		Page:   obj.Page,
		Index:  obj.Index,
		Name:   obj.Name,
		Width:  obj.Width,
		Height: obj.Height,
	}

	switch payload.Kind {
	case imagestream.PayloadFailed:
		x.fail(obj, payload.Err)
		return
	case imagestream.PayloadEncoded:
		img.Format = payload.Format
		img.Data = payload.Data
	case imagestream.PayloadRaw:
		data, err := raster.Reconstruct(payload.Data, obj.Width, obj.Height, payload.ColorSpace.Mode, payload.BitsPerComponent)
		if err != nil {
			x.fail(obj, &imagestream.ImageError{Page: obj.Page, Name: obj.Name, Err: err})
			return
		}
		img.Format = model.FormatPNG
		img.Data = data
	default:
		panic(fmt.Sprintf("pdftranslate: unknown payload kind %d", payload.Kind))
	}

	x.images = append(x.images, img)
	x.log.Debug().
		Int("page", img.Page).
		Str("image", img.Name).
		Stringer("format", img.Format).
		Int("bytes", len(img.Data)).
		Msg("image extracted")
}

func (x *extraction) fail(obj imagestream.ImageObject, err error) {
	x.warn(obj.Page, obj.Name, err)
	x.log.Debug().Err(err).Int("page", obj.Page).Str("image", obj.Name).Msg("image skipped")
}
