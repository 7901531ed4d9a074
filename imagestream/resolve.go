package imagestream

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/tsawler/pdftranslate/internal/filters"
	"github.com/tsawler/pdftranslate/model"
)

// ImageObject describes one image XObject on one page. All indirect
// references have been resolved by the caller.
type ImageObject struct {
	// Page is 1-based.
	Page int
	// Name is the resource name without the slash, e.g. "Im1".
	Name string
	// Index is the encounter order among the page's images.
	Index int

	Width            int
	Height           int
	BitsPerComponent int
	ColorSpace       ColorSpace

	// Filters lists filter names outermost first.
	Filters []string
	// DecodeParms is aligned with Filters. Entries may be nil.
	DecodeParms []map[string]any

	// Data is the stream payload before any filter is applied.
	Data []byte
}

// PayloadKind distinguishes the outcomes of Resolve.
type PayloadKind int

const (
	// PayloadEncoded holds a complete JPEG or JPEG 2000 file.
	PayloadEncoded PayloadKind = iota + 1
	// PayloadRaw holds unpacked samples that need reconstruction.
	PayloadRaw
	// PayloadFailed carries the reason the image was skipped.
	PayloadFailed
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadEncoded:
		return "encoded"
	case PayloadRaw:
		return "raw"
	case PayloadFailed:
		return "failed"
	default:
		return fmt.Sprintf("PayloadKind(%d)", int(k))
	}
}

// Payload is the result of Resolve.
type Payload struct {
	Kind PayloadKind
	Data []byte

	// Format is set for PayloadEncoded.
	Format model.OutputFormat

	// ColorSpace and BitsPerComponent are set for PayloadRaw.
	ColorSpace       ColorSpace
	BitsPerComponent int

	// Err is an *ImageError for PayloadFailed.
	Err error
}

type options struct {
	limits filters.Limits
}

// Option configures Resolve.
type Option func(*options)

// WithMaxDecodedBytes caps the output of each filter stage. Values of zero
// or less select the default of 256 MiB.
func WithMaxDecodedBytes(n int64) Option {
	return func(o *options) {
		o.limits.MaxDecodedBytes = n
	}
}

// Resolve runs the image's filter chain and classifies the result. It never
// panics on malformed input; every problem is reported as PayloadFailed.
func Resolve(obj ImageObject, opts ...Option) Payload {
	o := options{limits: filters.DefaultLimits}
	for _, opt := range opts {
		opt(&o)
	}

	fail := func(err error) Payload {
		return Payload{Kind: PayloadFailed, Err: &ImageError{Page: obj.Page, Name: obj.Name, Err: err}}
	}

	if err := checkDepth(obj.ColorSpace, obj.BitsPerComponent); err != nil {
		return fail(err)
	}
	pixels, err := pixelBytes(obj)
	if err != nil {
		return fail(err)
	}

	data := obj.Data
	for i, name := range obj.Filters {
		kind, err := filters.ParseKind(name)
		if err != nil {
			return fail(err)
		}

		if kind.Terminal() {
			if i != len(obj.Filters)-1 {
				return fail(&DecodeFailureError{
					Filter: kind.String(),
					Err:    errors.New("image codec filter must end the chain"),
				})
			}
			return Payload{Kind: PayloadEncoded, Data: data, Format: encodedFormat(kind)}
		}

		var params filters.Params
		if i < len(obj.DecodeParms) && obj.DecodeParms[i] != nil {
			params = filters.Params(obj.DecodeParms[i])
		}

		res, err := o.limits.Decode(kind, data, params)
		if err != nil {
			var de *filters.DecodeError
			if errors.As(err, &de) {
				err = de.Err
			}
			return fail(&DecodeFailureError{Filter: kind.String(), Err: err})
		}
		data = res.Data
	}

	if limit := o.limits.Max(); pixels > uint64(limit) {
		return fail(fmt.Errorf("%w: %dx%d needs more than %d bytes", ErrInvalidDimensions, obj.Width, obj.Height, limit))
	}
	return Payload{
		Kind:             PayloadRaw,
		Data:             data,
		ColorSpace:       obj.ColorSpace,
		BitsPerComponent: obj.BitsPerComponent,
	}
}

// pixelBytes returns width*height*channels, the size of the image once
// widened to 8 bits per sample. Non-positive sizes and products that
// overflow 64 bits are rejected.
func pixelBytes(obj ImageObject) (uint64, error) {
	w, h := obj.Width, obj.Height
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	hi, lo := bits.Mul64(uint64(w), uint64(h))
	if hi == 0 {
		hi, lo = bits.Mul64(lo, uint64(obj.ColorSpace.Mode.Channels()))
	}
	if hi != 0 {
		return 0, fmt.Errorf("%w: %dx%d overflows", ErrInvalidDimensions, w, h)
	}
	return lo, nil
}

func encodedFormat(k filters.Kind) model.OutputFormat {
	switch k {
	case filters.DCT:
		return model.FormatJPEG
	case filters.JPX:
		return model.FormatJPEG2000
	default:
		panic(fmt.Sprintf("imagestream: %s is not an image codec", k))
	}
}
