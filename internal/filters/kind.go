package filters

import "fmt"

// Kind identifies a PDF stream filter.
type Kind int

const (
	ASCII85 Kind = iota + 1
	ASCIIHex
	Flate
	RunLength
	CCITTFax
	DCT
	JPX
)

var kindNames = map[Kind]string{
	ASCII85:   "ASCII85Decode",
	ASCIIHex:  "ASCIIHexDecode",
	Flate:     "FlateDecode",
	RunLength: "RunLengthDecode",
	CCITTFax:  "CCITTFaxDecode",
	DCT:       "DCTDecode",
	JPX:       "JPXDecode",
}

// abbreviations are the short names allowed for inline images, which some
// producers also write into regular stream dictionaries.
var abbreviations = map[string]Kind{
	"A85": ASCII85,
	"AHx": ASCIIHex,
	"Fl":  Flate,
	"RL":  RunLength,
	"CCF": CCITTFax,
	"DCT": DCT,
}

// ParseKind maps a filter name to its Kind. Names the package cannot decode
// (LZWDecode, JBIG2Decode, Crypt, anything unknown) yield an
// *UnsupportedFilterError.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	if k, ok := abbreviations[name]; ok {
		return k, nil
	}
	return 0, &UnsupportedFilterError{Name: name}
}

// String returns the canonical PDF name of the filter.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Terminal reports whether the filter produces a complete encoded image
// rather than bytes for a further stage.
func (k Kind) Terminal() bool {
	return k == DCT || k == JPX
}
