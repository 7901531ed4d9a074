package filters

import (
	"bytes"
	"errors"
	"testing"
)

// TestParseKind tests full names, abbreviations and unsupported filters
func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{"FlateDecode", Flate, false},
		{"Fl", Flate, false},
		{"ASCII85Decode", ASCII85, false},
		{"A85", ASCII85, false},
		{"ASCIIHexDecode", ASCIIHex, false},
		{"AHx", ASCIIHex, false},
		{"RunLengthDecode", RunLength, false},
		{"CCITTFaxDecode", CCITTFax, false},
		{"DCTDecode", DCT, false},
		{"DCT", DCT, false},
		{"JPXDecode", JPX, false},
		{"LZWDecode", 0, true},
		{"JBIG2Decode", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKind(tt.name)
			if tt.wantErr {
				var ufe *UnsupportedFilterError
				if !errors.As(err, &ufe) {
					t.Fatalf("ParseKind(%q) error = %v, want *UnsupportedFilterError", tt.name, err)
				}
				if ufe.Name != tt.name {
					t.Errorf("error name = %q, want %q", ufe.Name, tt.name)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.name, got, err, tt.want)
			}
		})
	}
}

// TestKindTerminal tests that only image codecs are terminal
func TestKindTerminal(t *testing.T) {
	for k := range kindNames {
		want := k == DCT || k == JPX
		if k.Terminal() != want {
			t.Errorf("%v.Terminal() = %v, want %v", k, k.Terminal(), want)
		}
	}
}

// TestDecodePassthrough tests that DCT and JPX return their input unchanged
func TestDecodePassthrough(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	for _, k := range []Kind{DCT, JPX} {
		res, err := Decode(k, payload, nil)
		if err != nil {
			t.Fatalf("Decode(%v) error = %v", k, err)
		}
		if !res.Passthrough {
			t.Errorf("Decode(%v) Passthrough = false", k)
		}
		if !bytes.Equal(res.Data, payload) {
			t.Errorf("Decode(%v) changed the payload", k)
		}
	}
}

// TestDecodeWrapsErrors tests that stage failures name their filter
func TestDecodeWrapsErrors(t *testing.T) {
	_, err := Decode(Flate, []byte("not zlib at all"), nil)
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("error = %v, want *DecodeError", err)
	}
	if de.Filter != Flate {
		t.Errorf("Filter = %v, want %v", de.Filter, Flate)
	}
}

// TestDecodeChain tests ASCII85 followed by Flate and a misplaced codec
func TestDecodeChain(t *testing.T) {
	original := []byte("stacked filters")
	encoded := []byte("<~" + encodeASCII85(zlibCompress(original)) + "~>")

	got, err := DefaultLimits.DecodeChain([]Kind{ASCII85, Flate}, encoded, nil)
	if err != nil {
		t.Fatalf("DecodeChain() error = %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Errorf("DecodeChain() = %q, want %q", got, original)
	}

	if _, err := DefaultLimits.DecodeChain([]Kind{DCT, Flate}, encoded, nil); err == nil {
		t.Error("expected error for DCT before Flate")
	}
}

// TestRunLengthDecode tests literal runs, repeats and EOD
func TestRunLengthDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    []byte
		wantErr bool
	}{
		{"literal", []byte{2, 'a', 'b', 'c', 128}, []byte("abc"), false},
		{"repeat", []byte{254, 'x', 128}, []byte("xxx"), false},
		{"mixed without EOD", []byte{0, 'a', 255, 'b'}, []byte("abb"), false},
		{"truncated literal", []byte{4, 'a'}, nil, true},
		{"truncated repeat", []byte{200}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(RunLength, tt.input, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(res.Data, tt.want) {
				t.Errorf("Decode() = %q, want %q", res.Data, tt.want)
			}
		})
	}
}

// encodeASCII85 is a minimal encoder for building fixtures.
func encodeASCII85(src []byte) string {
	var out []byte
	for len(src) > 0 {
		var chunk [4]byte
		n := copy(chunk[:], src)
		src = src[n:]
		v := uint32(chunk[0])<<24 | uint32(chunk[1])<<16 | uint32(chunk[2])<<8 | uint32(chunk[3])
		if n == 4 && v == 0 {
			out = append(out, 'z')
			continue
		}
		var digits [5]byte
		for i := 4; i >= 0; i-- {
			digits[i] = byte(v%85) + '!'
			v /= 85
		}
		out = append(out, digits[:n+1]...)
	}
	return string(out)
}
