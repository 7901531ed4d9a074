package font

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Encoding maps single-byte character codes of a simple font to Unicode.
type Encoding interface {
	Name() string
	Decode(b byte) rune
	DecodeString(data []byte) string
}

// charmapEncoding adapts an x/text single-byte charmap.
type charmapEncoding struct {
	name string
	cm   *charmap.Charmap
}

func (e *charmapEncoding) Name() string { return e.name }

func (e *charmapEncoding) Decode(b byte) rune { return e.cm.DecodeByte(b) }

func (e *charmapEncoding) DecodeString(data []byte) string {
	return decodeBytes(e, data)
}

// tableEncoding is a 256-entry lookup table. Zero entries are undefined.
type tableEncoding struct {
	name  string
	table [256]rune
}

func (e *tableEncoding) Name() string { return e.name }

func (e *tableEncoding) Decode(b byte) rune {
	if r := e.table[b]; r != 0 {
		return r
	}
	return utf8.RuneError
}

func (e *tableEncoding) DecodeString(data []byte) string {
	return decodeBytes(e, data)
}

func decodeBytes(e Encoding, data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if r := e.Decode(b); r != utf8.RuneError {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

var (
	// WinAnsiEncoding is Windows code page 1252.
	WinAnsiEncoding Encoding = &charmapEncoding{name: "WinAnsiEncoding", cm: charmap.Windows1252}

	// MacRomanEncoding is the classic Mac OS Roman character set.
	MacRomanEncoding Encoding = &charmapEncoding{name: "MacRomanEncoding", cm: charmap.Macintosh}

	// PDFDocEncoding is the encoding for text strings outside content
	// streams. It is Latin-1 with typographic characters in 0x18-0x1F and
	// 0x80-0xA0.
	PDFDocEncoding Encoding = newTableEncoding("PDFDocEncoding", latin1, map[byte]rune{
		0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9,
		0x1C: 0x02DD, 0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
		0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026,
		0x84: 0x2014, 0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044,
		0x88: 0x2039, 0x89: 0x203A, 0x8A: 0x2212, 0x8B: 0x2030,
		0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D, 0x8F: 0x2018,
		0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
		0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160,
		0x98: 0x0178, 0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142,
		0x9C: 0x0153, 0x9D: 0x0161, 0x9E: 0x017E, 0xA0: 0x20AC,
		0x9F: 0, 0xAD: 0,
	})

	// StandardEncodingTable is Adobe StandardEncoding, the built-in
	// encoding of most Type 1 fonts.
	StandardEncodingTable Encoding = newTableEncoding("StandardEncoding", asciiOnly, map[byte]rune{
		0x27: 0x2019, 0x60: 0x2018,
		0xA1: 0x00A1, 0xA2: 0x00A2, 0xA3: 0x00A3, 0xA4: 0x2044,
		0xA5: 0x00A5, 0xA6: 0x0192, 0xA7: 0x00A7, 0xA8: 0x00A4,
		0xA9: 0x0027, 0xAA: 0x201C, 0xAB: 0x00AB, 0xAC: 0x2039,
		0xAD: 0x203A, 0xAE: 0xFB01, 0xAF: 0xFB02, 0xB1: 0x2013,
		0xB2: 0x2020, 0xB3: 0x2021, 0xB4: 0x00B7, 0xB6: 0x00B6,
		0xB7: 0x2022, 0xB8: 0x201A, 0xB9: 0x201E, 0xBA: 0x201D,
		0xBB: 0x00BB, 0xBC: 0x2026, 0xBD: 0x2030, 0xBF: 0x00BF,
		0xC1: 0x0060, 0xC2: 0x00B4, 0xC3: 0x02C6, 0xC4: 0x02DC,
		0xC5: 0x00AF, 0xC6: 0x02D8, 0xC7: 0x02D9, 0xC8: 0x00A8,
		0xCA: 0x02DA, 0xCB: 0x00B8, 0xCD: 0x02DD, 0xCE: 0x02DB,
		0xCF: 0x02C7, 0xD0: 0x2014, 0xE1: 0x00C6, 0xE3: 0x00AA,
		0xE8: 0x0141, 0xE9: 0x00D8, 0xEA: 0x0152, 0xEB: 0x00BA,
		0xF1: 0x00E6, 0xF5: 0x0131, 0xF8: 0x0142, 0xF9: 0x00F8,
		0xFA: 0x0153, 0xFB: 0x00DF,
	})
)

const (
	latin1 = iota
	asciiOnly
)

func newTableEncoding(name string, base int, overrides map[byte]rune) *tableEncoding {
	e := &tableEncoding{name: name}
	for i := 0; i < 256; i++ {
		switch {
		case i >= 0x20 && i < 0x7F:
			e.table[i] = rune(i)
		case base == latin1 && (i >= 0xA0 || i == '\t' || i == '\n' || i == '\r'):
			e.table[i] = rune(i)
		}
	}
	for b, r := range overrides {
		e.table[b] = r
	}
	return e
}

// GetEncoding returns the named base encoding. Unknown names, including
// Symbol and ZapfDingbats built-ins, fall back to WinAnsiEncoding.
func GetEncoding(name string) Encoding {
	switch name {
	case "MacRomanEncoding":
		return MacRomanEncoding
	case "PDFDocEncoding":
		return PDFDocEncoding
	case "StandardEncoding":
		return StandardEncodingTable
	default:
		return WinAnsiEncoding
	}
}

// DecodeWithEncoding decodes data with the named encoding.
func DecodeWithEncoding(data []byte, encodingName string) string {
	return GetEncoding(encodingName).DecodeString(data)
}

// CustomEncoding is a base encoding with a /Differences overlay.
type CustomEncoding struct {
	base        Encoding
	differences map[byte]rune
}

// NewCustomEncoding overlays differences on base.
func NewCustomEncoding(base Encoding, differences map[byte]rune) *CustomEncoding {
	return &CustomEncoding{base: base, differences: differences}
}

// NewCustomEncodingFromGlyphs overlays glyph-name differences on base.
// Names without a Unicode value are ignored.
func NewCustomEncodingFromGlyphs(base Encoding, differences map[byte]string) *CustomEncoding {
	runes := make(map[byte]rune, len(differences))
	for code, name := range differences {
		if r, ok := GlyphToRune(name); ok {
			runes[code] = r
		}
	}
	return NewCustomEncoding(base, runes)
}

func (e *CustomEncoding) Name() string { return e.base.Name() + "+custom" }

func (e *CustomEncoding) Decode(b byte) rune {
	if r, ok := e.differences[b]; ok {
		return r
	}
	return e.base.Decode(b)
}

func (e *CustomEncoding) DecodeString(data []byte) string {
	return decodeBytes(e, data)
}

// GlyphToRune maps a PostScript glyph name to Unicode. It understands the
// glyph list names, uniXXXX and uXXXX[XX] forms, and strips suffixes such
// as ".sc" or ".alt".
func GlyphToRune(name string) (rune, bool) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if r, ok := glyphNameToUnicode[name]; ok {
		return r, true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		if v, err := strconv.ParseUint(name[3:7], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil && v <= utf8.MaxRune {
			return rune(v), true
		}
	}
	if len(name) == 1 && name[0] < utf8.RuneSelf {
		return rune(name[0]), true
	}
	return 0, false
}

// NormalizeUnicode returns s in NFC form.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}

// IsValidUTF8 reports whether s is valid UTF-8.
func IsValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// DecodeUTF16BE decodes big-endian UTF-16. A trailing odd byte is dropped.
func DecodeUTF16BE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return string(utf16.Decode(units))
}

// DecodeUTF16LE decodes little-endian UTF-16. A trailing odd byte is
// dropped.
func DecodeUTF16LE(data []byte) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i+1])<<8|uint16(data[i]))
	}
	return string(utf16.Decode(units))
}
