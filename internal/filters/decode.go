package filters

import "fmt"

// Params represents decode parameters from PDF stream dictionaries.
// Common parameters include Predictor, Columns, Colors, and BitsPerComponent.
type Params map[string]interface{}

// Result is the output of a single filter stage.
type Result struct {
	Data []byte

	// Passthrough is set for terminal image codecs (DCT, JPX) whose input is
	// returned unchanged.
	Passthrough bool
}

// DefaultMaxDecodedBytes bounds a single decode stage.
const DefaultMaxDecodedBytes = 256 << 20

// Limits constrains decoder resource usage.
type Limits struct {
	// MaxDecodedBytes is the largest output a single stage may produce.
	// Zero or negative means DefaultMaxDecodedBytes.
	MaxDecodedBytes int64
}

// DefaultLimits are used by the package-level Decode.
var DefaultLimits = Limits{MaxDecodedBytes: DefaultMaxDecodedBytes}

// Max returns the effective per-stage cap.
func (l Limits) Max() int64 {
	if l.MaxDecodedBytes <= 0 {
		return DefaultMaxDecodedBytes
	}
	return l.MaxDecodedBytes
}

// Decode applies one filter using DefaultLimits.
func Decode(kind Kind, data []byte, params Params) (Result, error) {
	return DefaultLimits.Decode(kind, data, params)
}

// Decode applies one filter stage. Errors are *DecodeError values naming
// the filter.
func (l Limits) Decode(kind Kind, data []byte, params Params) (Result, error) {
	var (
		out []byte
		err error
	)

	if kind.Terminal() {
		return Result{Data: data, Passthrough: true}, nil
	}

	switch kind {
	case ASCII85:
		out, err = ASCII85Decode(data)
	case ASCIIHex:
		out, err = ASCIIHexDecode(data)
	case Flate:
		out, err = flateDecode(data, params, l.Max())
	case RunLength:
		out, err = runLengthDecode(data, l.Max())
	case CCITTFax:
		out, err = ccittFaxDecode(data, params, l.Max())
	default:
		return Result{}, &UnsupportedFilterError{Name: kind.String()}
	}

	if err != nil {
		return Result{}, &DecodeError{Filter: kind, Err: err}
	}
	if int64(len(out)) > l.Max() {
		return Result{}, &DecodeError{Filter: kind, Err: fmt.Errorf("%w: %d bytes", ErrLimitExceeded, len(out))}
	}
	return Result{Data: out}, nil
}

// DecodeChain applies a sequence of byte filters. It stops at the first
// terminal filter, which must be last.
func (l Limits) DecodeChain(kinds []Kind, data []byte, params []Params) ([]byte, error) {
	for i, k := range kinds {
		var p Params
		if i < len(params) {
			p = params[i]
		}
		res, err := l.Decode(k, data, p)
		if err != nil {
			return nil, err
		}
		data = res.Data
		if res.Passthrough {
			if i != len(kinds)-1 {
				return nil, &DecodeError{Filter: k, Err: fmt.Errorf("image codec filter must end the chain")}
			}
			break
		}
	}
	return data, nil
}
