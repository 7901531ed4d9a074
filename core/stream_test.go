package core

import (
	"bytes"
	"testing"

	"github.com/tsawler/pdftranslate/internal/pdftest"
)

// TestStreamDecode tests single filters, chains and passthrough codecs
func TestStreamDecode(t *testing.T) {
	plain := []byte("BT /F1 12 Tf (Hi) Tj ET")

	tests := []struct {
		name string
		dict Dict
		data []byte
		want []byte
	}{
		{"no filter", Dict{}, plain, plain},
		{"flate", Dict{"Filter": Name("FlateDecode")}, pdftest.Flate(plain), plain},
		{"chain", Dict{"Filter": Array{Name("ASCII85Decode"), Name("FlateDecode")}}, pdftest.ASCII85(pdftest.Flate(plain)), plain},
		{"abbreviated", Dict{"Filter": Name("AHx")}, []byte("4869>"), []byte("Hi")},
		{"dct passthrough", Dict{"Filter": Name("DCTDecode")}, []byte{0xFF, 0xD8}, []byte{0xFF, 0xD8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := (&Stream{Dict: tt.dict, Data: tt.data}).Decode()
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestStreamDecodeUnsupported tests that unknown filters are reported
func TestStreamDecodeUnsupported(t *testing.T) {
	s := &Stream{Dict: Dict{"Filter": Name("LZWDecode")}, Data: []byte{1}}
	if _, err := s.Decode(); err == nil {
		t.Error("expected error for LZWDecode")
	}
}

// TestDecodeParams tests alignment of /DecodeParms with the filter chain
func TestDecodeParams(t *testing.T) {
	single := DecodeParams(Dict{"Predictor": Int(12), "Columns": Int(4)}, 1)
	if single[0]["Predictor"] != 12 || single[0]["Columns"] != 4 {
		t.Errorf("single = %v", single)
	}

	arr := DecodeParams(Array{Null{}, Dict{"K": Int(-1), "BlackIs1": Bool(true)}}, 2)
	if arr[0] != nil {
		t.Errorf("arr[0] = %v, want nil", arr[0])
	}
	if arr[1]["K"] != -1 || arr[1]["BlackIs1"] != true {
		t.Errorf("arr[1] = %v", arr[1])
	}

	if got := DecodeParams(nil, 3); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

// TestFilterNames tests normalisation of the /Filter value
func TestFilterNames(t *testing.T) {
	got, err := FilterNames(Array{Name("A85"), Name("Fl")})
	if err != nil || len(got) != 2 || got[0] != "A85" || got[1] != "Fl" {
		t.Errorf("FilterNames(array) = %v, %v", got, err)
	}
	if got, _ := FilterNames(nil); got != nil {
		t.Errorf("FilterNames(nil) = %v", got)
	}
	if _, err := FilterNames(Int(3)); err == nil {
		t.Error("expected error for integer /Filter")
	}
}
