package filters

import (
	"bytes"
	"testing"
)

// TestGetBoolParam tests boolean parameter lookup
func TestGetBoolParam(t *testing.T) {
	tests := []struct {
		name         string
		params       Params
		defaultValue bool
		want         bool
	}{
		{"nil params", nil, false, false},
		{"missing key", Params{"Columns": 1728}, true, true},
		{"true value", Params{"BlackIs1": true}, false, true},
		{"false value", Params{"BlackIs1": false}, true, false},
		{"wrong type", Params{"BlackIs1": "true"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getBoolParam(tt.params, "BlackIs1", tt.defaultValue); got != tt.want {
				t.Errorf("getBoolParam() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestCCITTFaxDecodeWhitePage tests Group 4 rows coded as a single V0 each
func TestCCITTFaxDecodeWhitePage(t *testing.T) {
	// Eight all-white rows, one '1' bit per row.
	params := Params{"K": -1, "Columns": 8, "Rows": 8}

	res, err := Decode(CCITTFax, []byte{0xFF}, params)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := bytes.Repeat([]byte{0xFF}, 8)
	if !bytes.Equal(res.Data, want) {
		t.Errorf("Decode() = %x, want %x", res.Data, want)
	}
}
