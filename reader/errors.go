package reader

import (
	"errors"
	"fmt"
)

var (
	// ErrEncrypted is returned for documents with an /Encrypt dictionary.
	ErrEncrypted = errors.New("encrypted documents are not supported")
	// ErrNoHeader is returned when no %PDF- header is found near the start
	// of the file.
	ErrNoHeader = errors.New("missing %PDF- header")
	// ErrNoCatalog is returned when the trailer names no usable catalog.
	ErrNoCatalog = errors.New("document catalog not found")
)

// MalformedDocumentError reports a document that cannot be read at all.
// It is fatal: no partial result accompanies it.
type MalformedDocumentError struct {
	Op  string
	Err error
}

func (e *MalformedDocumentError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("malformed PDF: %v", e.Err)
	}
	return fmt.Sprintf("malformed PDF: %s: %v", e.Op, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

func malformed(op string, err error) error {
	return &MalformedDocumentError{Op: op, Err: err}
}
