package filters

import (
	"bytes"

	"golang.org/x/image/ccitt"
)

// ccittFaxDecode decodes CCITT Group 3/4 fax data into packed 1-bit rows
// where 0 is black, the DeviceGray convention for a 1-bit image.
//
// Parameters from the decode parameters dictionary:
//   - K: group selector (<0 Group 4, >=0 Group 3)
//   - Columns: width in pixels (default 1728)
//   - Rows: height in pixels (default: detect from the data)
//   - BlackIs1: swap the meaning of 0 and 1 in the encoded data
//   - EncodedByteAlign: rows start on byte boundaries
func ccittFaxDecode(data []byte, params Params, limit int64) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1728)
	rows := getIntParam(params, "Rows", 0)
	k := getIntParam(params, "K", 0)

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{
		Align:  getBoolParam(params, "EncodedByteAlign", false),
		Invert: getBoolParam(params, "BlackIs1", false),
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)
	return readLimited(r, limit)
}

// getBoolParam extracts a boolean parameter, returning defaultValue when it
// is missing or not a bool.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultValue
}
