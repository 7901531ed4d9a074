package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode decompresses zlib data and applies the predictor named in
// params, using DefaultLimits.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	return flateDecode(data, params, DefaultMaxDecodedBytes)
}

func flateDecode(data []byte, params Params, limit int64) ([]byte, error) {
	decompressed, err := inflate(data, limit)
	if err != nil {
		return nil, err
	}

	predictor := getIntParam(params, "Predictor", 1)
	if predictor <= 1 {
		return decompressed, nil
	}

	decompressed, err = applyPredictor(decompressed, predictor, params)
	if err != nil {
		return nil, fmt.Errorf("predictor failed: %w", err)
	}
	return decompressed, nil
}

// inflate reads a zlib stream. A missing or bad header, a truncated body and
// a checksum mismatch all fail.
func inflate(data []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer zr.Close()
	return readLimited(zr, limit)
}

// readLimited drains r, failing once more than limit bytes appear.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if n > limit {
		return nil, ErrLimitExceeded
	}
	return buf.Bytes(), nil
}

// applyPredictor undoes prediction. Predictor 2 is TIFF Predictor 2 and
// 10-15 select the PNG predictors, where each row carries its own
// algorithm byte.
func applyPredictor(data []byte, predictor int, params Params) ([]byte, error) {
	switch {
	case predictor == 2:
		return applyTIFFPredictor2(data, params)
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, params)
	default:
		return nil, fmt.Errorf("unsupported predictor: %d", predictor)
	}
}

// applyTIFFPredictor2 predicts each sample from the sample to its left.
func applyTIFFPredictor2(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)

	if bpc != 8 {
		return nil, fmt.Errorf("TIFF Predictor 2 only supports 8 bits per component, got %d", bpc)
	}

	rowSize := columns * colors
	if rowSize <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d is not a multiple of row size %d", len(data), rowSize)
	}

	out := make([]byte, len(data))
	for rowStart := 0; rowStart < len(data); rowStart += rowSize {
		for col := 0; col < rowSize; col++ {
			idx := rowStart + col
			if col < colors {
				out[idx] = data[idx]
			} else {
				out[idx] = data[idx] + out[idx-colors]
			}
		}
	}
	return out, nil
}

// applyPNGPredictor strips the per-row algorithm byte and reverses the
// prediction. Sample depths below 8 bits are handled at byte granularity,
// as PNG does.
func applyPNGPredictor(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)

	bitsPerPixel := colors * bpc
	bytesPerPixel := (bitsPerPixel + 7) / 8
	rowLen := (columns*bitsPerPixel + 7) / 8
	if rowLen <= 0 {
		return nil, fmt.Errorf("invalid predictor geometry: columns=%d colors=%d bpc=%d", columns, colors, bpc)
	}

	stride := rowLen + 1
	// A short final row is tolerated by producers that drop trailing zeros.
	rows := (len(data) + stride - 1) / stride
	out := make([]byte, 0, rows*rowLen)
	prev := make([]byte, rowLen)
	cur := make([]byte, rowLen)

	for r := 0; r < rows; r++ {
		start := r * stride
		end := start + stride
		if end > len(data) {
			end = len(data)
		}
		if end-start < 1 {
			break
		}
		algo := data[start]
		for i := range cur {
			cur[i] = 0
		}
		copy(cur, data[start+1:end])

		if err := unfilterRow(algo, cur, prev, bytesPerPixel); err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
		out = append(out, cur...)
		prev, cur = cur, prev
	}
	return out, nil
}

// unfilterRow reverses one PNG filter in place.
// Types: 0=None, 1=Sub, 2=Up, 3=Average, 4=Paeth.
func unfilterRow(algo byte, cur, prev []byte, bpp int) error {
	switch algo {
	case 0:
	case 1:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case 2:
		for i := range cur {
			cur[i] += prev[i]
		}
	case 3:
		for i := range cur {
			var left byte
			if i >= bpp {
				left = cur[i-bpp]
			}
			cur[i] += byte((int(left) + int(prev[i])) / 2)
		}
	case 4:
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			cur[i] += paethPredictor(left, prev[i], upLeft)
		}
	default:
		return fmt.Errorf("unknown PNG predictor: %d", algo)
	}
	return nil
}

// paethPredictor selects the neighbour (left, above, upper-left) closest to
// a linear prediction.
func paethPredictor(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

// getIntParam extracts an integer parameter, returning defaultValue when
// it is missing or not numeric.
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultValue
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
