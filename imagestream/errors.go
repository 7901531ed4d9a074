package imagestream

import (
	"errors"
	"fmt"

	"github.com/tsawler/pdftranslate/internal/filters"
)

// ErrInvalidDimensions is returned for images whose width or height is not
// positive, or whose pixel buffer would not fit the decode limit.
var ErrInvalidDimensions = errors.New("invalid image dimensions")

// UnsupportedFilterError reports a filter name the decoder does not know.
type UnsupportedFilterError = filters.UnsupportedFilterError

// DecodeFailureError reports a known filter that could not decode its
// input. Filters after it in the chain were not attempted.
type DecodeFailureError struct {
	Filter string
	Err    error
}

func (e *DecodeFailureError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Filter, e.Err)
}

func (e *DecodeFailureError) Unwrap() error {
	return e.Err
}

// UnsupportedColorSpaceError reports a colour space outside DeviceGray and
// DeviceRGB. Space is "unspecified" when the image declares none.
type UnsupportedColorSpaceError struct {
	Space string
}

func (e *UnsupportedColorSpaceError) Error() string {
	return fmt.Sprintf("unsupported color space %s", e.Space)
}

// UnsupportedBitDepthError reports a bit depth the colour space does not
// allow here.
type UnsupportedBitDepthError struct {
	Space            string
	BitsPerComponent int
}

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("unsupported bits per component %d for %s", e.BitsPerComponent, e.Space)
}

// ImageError ties a failure to the image it happened on.
type ImageError struct {
	Page int
	Name string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("page %d image %s: %v", e.Page, e.Name, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}
