// Package pdftranslate extracts the text and images of a PDF so the text
// can be translated and a new document assembled around the images.
//
// Basic usage:
//
//	res, warnings, err := pdftranslate.Open("document.pdf").Extract()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", pdftranslate.FormatWarnings(warnings))
//	}
//
// The text in res.Text opens every page with a boundary line and ends
// pages that use images with an image-presence line. res.Images holds the
// images that could be recovered, in page order.
//
// The lower-level reader, imagestream and raster packages are available
// for callers that need more control.
package pdftranslate

import (
	"github.com/tsawler/pdftranslate/model"
	"github.com/tsawler/pdftranslate/reader"
)

// MalformedDocumentError is returned by Extract when the document cannot
// be read at all.
type MalformedDocumentError = reader.MalformedDocumentError

// Result is the outcome of one extraction.
type Result struct {
	Text      model.AnnotatedText
	Images    model.ImageInventory
	PageCount int
}

// Open returns an Extractor that reads the named file when a terminal
// operation runs.
//
// Example:
//
//	res, warnings, err := pdftranslate.Open("document.pdf").Extract()
func Open(filename string) *Extractor {
	return &Extractor{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns an Extractor over an in-memory document.
//
// Example:
//
//	res, warnings, err := pdftranslate.FromBytes(data).WithLogger(logger).Extract()
func FromBytes(data []byte) *Extractor {
	return &Extractor{
		data:    data,
		options: defaultOptions(),
	}
}

// FromReader returns an Extractor over an already loaded reader.
func FromReader(r *reader.Reader) *Extractor {
	return &Extractor{
		reader:  r,
		options: defaultOptions(),
	}
}

// Must panics if err is non-nil. It is intended for scripts and tests.
//
// Example:
//
//	n := pdftranslate.Must(pdftranslate.Open("document.pdf").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustExtract wraps a call to Extract, discarding the warnings and
// panicking on error.
//
// Example:
//
//	res := pdftranslate.MustExtract(pdftranslate.Open("document.pdf").Extract())
func MustExtract(res Result, _ []Warning, err error) Result {
	if err != nil {
		panic(err)
	}
	return res
}
