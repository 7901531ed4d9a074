package font

import (
	"fmt"

	"github.com/tsawler/pdftranslate/core"
)

// Resolver dereferences indirect objects.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Glyph is one character code shown by a text operator.
type Glyph struct {
	Code uint32
	// Text is the Unicode text for the code; empty when unknown.
	Text string
	// Width is the horizontal advance in text space units for a font size
	// of 1.
	Width float64
	// Space is set for the single-byte code 32, which word spacing applies
	// to.
	Space bool
}

// Font decodes the strings shown with one font resource.
type Font struct {
	Name     string
	BaseFont string
	Subtype  string
	Encoding string

	// ToUnicodeCMap takes priority over Encoding when present.
	ToUnicodeCMap *CMap

	enc Encoding
	// codeCMap splits composite-font strings into codes.
	codeCMap *CMap
	// composite is set for Type0 fonts, whose codes default to two bytes.
	composite bool

	widths       map[uint32]float64
	defaultWidth float64
	// scale converts glyph space widths to text space.
	scale float64
}

// NewFont creates a simple font with WinAnsiEncoding and standard widths.
func NewFont(name, baseFont, subtype string) *Font {
	return &Font{
		Name:     name,
		BaseFont: baseFont,
		Subtype:  subtype,
		Encoding: "WinAnsiEncoding",
		enc:      WinAnsiEncoding,
		widths:   make(map[uint32]float64),
		scale:    0.001,
	}
}

// Load builds a Font from a font dictionary. Missing or broken optional
// entries degrade to defaults rather than failing.
func Load(name string, dict core.Dict, r Resolver) (*Font, error) {
	subtype, _ := dict.GetName("Subtype")
	baseFont, _ := dict.GetName("BaseFont")
	f := NewFont(name, string(baseFont), string(subtype))

	if tu, err := resolveStream(r, dict.Get("ToUnicode")); err == nil && tu != nil {
		if cm, err := ParseToUnicodeCMap(tu); err == nil {
			f.ToUnicodeCMap = cm
		}
	}

	if subtype == "Type0" {
		if err := f.loadComposite(dict, r); err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		return f, nil
	}

	f.loadEncoding(dict.Get("Encoding"), r)
	f.loadSimpleWidths(dict, r)
	return f, nil
}

func (f *Font) loadEncoding(obj core.Object, r Resolver) {
	obj, _ = resolve(r, obj)
	switch v := obj.(type) {
	case core.Name:
		f.Encoding = string(v)
		f.enc = GetEncoding(string(v))
	case core.Dict:
		base := WinAnsiEncoding
		if isStandardFont(f.BaseFont) || f.Subtype == "Type1" {
			base = StandardEncodingTable
		}
		if bn, ok := v.GetName("BaseEncoding"); ok {
			base = GetEncoding(string(bn))
		}
		f.Encoding = base.Name()
		diffs, _ := resolve(r, v.Get("Differences"))
		if arr, ok := diffs.(core.Array); ok {
			f.enc = NewCustomEncodingFromGlyphs(base, parseDifferences(arr))
			f.Encoding = f.enc.Name()
		} else {
			f.enc = base
		}
	default:
		if f.Subtype == "Type1" && f.BaseFont != "" && !isStandardFont(f.BaseFont) {
			f.Encoding = "StandardEncoding"
			f.enc = StandardEncodingTable
		}
	}
}

// parseDifferences reads [code /name /name code /name ...].
func parseDifferences(arr core.Array) map[byte]string {
	out := make(map[byte]string)
	code := -1
	for _, item := range arr {
		switch v := item.(type) {
		case core.Int:
			code = int(v)
		case core.Name:
			if code >= 0 && code <= 255 {
				out[byte(code)] = string(v)
				code++
			}
		}
	}
	return out
}

func (f *Font) loadSimpleWidths(dict core.Dict, r Resolver) {
	if f.Subtype == "Type3" {
		if fm, _ := resolve(r, dict.Get("FontMatrix")); fm != nil {
			if arr, ok := fm.(core.Array); ok && len(arr) > 0 {
				if a, ok := core.Number(arr[0]); ok && a != 0 {
					f.scale = a
				}
			}
		}
	}

	if fd, _ := resolve(r, dict.Get("FontDescriptor")); fd != nil {
		if d, ok := fd.(core.Dict); ok {
			if mw, ok := d.GetNumber("MissingWidth"); ok {
				f.defaultWidth = mw
			}
		}
	}

	first := 0
	if fc, _ := resolve(r, dict.Get("FirstChar")); fc != nil {
		if n, ok := core.Number(fc); ok {
			first = int(n)
		}
	}
	wObj, _ := resolve(r, dict.Get("Widths"))
	arr, ok := wObj.(core.Array)
	if !ok {
		return
	}
	for i, item := range arr {
		item, _ = resolve(r, item)
		if w, ok := core.Number(item); ok {
			f.widths[uint32(first+i)] = w
		}
	}
}

func (f *Font) loadComposite(dict core.Dict, r Resolver) error {
	f.composite = true
	f.defaultWidth = 1000

	encObj, _ := resolve(r, dict.Get("Encoding"))
	switch v := encObj.(type) {
	case core.Name:
		f.Encoding = string(v)
	case *core.Stream:
		f.Encoding = "embedded"
		data, err := v.Decode()
		if err == nil {
			if cm, err := ParseCMap(data); err == nil && cm.HasCodespaces() {
				f.codeCMap = cm
			}
		}
	}

	descObj, _ := resolve(r, dict.Get("DescendantFonts"))
	descs, ok := descObj.(core.Array)
	if !ok || len(descs) == 0 {
		return nil
	}
	cidObj, err := resolve(r, descs[0])
	if err != nil {
		return fmt.Errorf("descendant font: %w", err)
	}
	cid, ok := cidObj.(core.Dict)
	if !ok {
		return nil
	}
	if dw, ok := cid.GetNumber("DW"); ok {
		f.defaultWidth = dw
	}
	if wObj, _ := resolve(r, cid.Get("W")); wObj != nil {
		if arr, ok := wObj.(core.Array); ok {
			f.parseCIDWidths(arr, r)
		}
	}
	return nil
}

// parseCIDWidths reads the W array: "c [w1 w2 ...]" or "cfirst clast w".
func (f *Font) parseCIDWidths(arr core.Array, r Resolver) {
	for i := 0; i < len(arr); {
		first, ok := core.Number(arr[i])
		if !ok || i+1 >= len(arr) {
			return
		}
		next, _ := resolve(r, arr[i+1])
		if list, ok := next.(core.Array); ok {
			for j, item := range list {
				if w, ok := core.Number(item); ok {
					f.widths[uint32(int(first)+j)] = w
				}
			}
			i += 2
			continue
		}
		last, ok1 := core.Number(next)
		if i+2 >= len(arr) {
			return
		}
		w, ok2 := core.Number(arr[i+2])
		if !ok1 || !ok2 || last < first || last-first > 0xFFFF {
			return
		}
		for c := int(first); c <= int(last); c++ {
			f.widths[uint32(c)] = w
		}
		i += 3
	}
}

// codeLen returns the byte length of the next code in data.
func (f *Font) codeLen(data []byte) int {
	switch {
	case !f.composite:
		return 1
	case f.codeCMap != nil:
		return f.codeCMap.NextCode(data)
	case f.ToUnicodeCMap.HasCodespaces():
		return f.ToUnicodeCMap.NextCode(data)
	case len(data) >= 2:
		return 2
	default:
		return len(data)
	}
}

// Decode splits data into glyphs.
func (f *Font) Decode(data []byte) []Glyph {
	glyphs := make([]Glyph, 0, len(data))
	for len(data) > 0 {
		n := f.codeLen(data)
		if n <= 0 {
			n = 1
		}
		code := codeValue(data[:n])
		text := f.text(code)
		glyphs = append(glyphs, Glyph{
			Code:  code,
			Text:  text,
			Width: f.width(code, text) * f.scale,
			Space: n == 1 && code == 32,
		})
		data = data[n:]
	}
	return glyphs
}

func (f *Font) text(code uint32) string {
	if s, ok := f.ToUnicodeCMap.Lookup(code); ok {
		return s
	}
	if f.composite {
		// Without ToUnicode the CID stands in for the code point.
		if code >= 32 && code < 0xD800 {
			return string(rune(code))
		}
		return ""
	}
	r := f.encoding().Decode(byte(code))
	if r == 0xFFFD || r < 32 && r != '\t' {
		return ""
	}
	return string(r)
}

func (f *Font) width(code uint32, text string) float64 {
	if w, ok := f.widths[code]; ok {
		return w
	}
	if !f.composite && len(text) > 0 {
		if w := standardWidth(f.BaseFont, []rune(text)[0]); w > 0 {
			return w
		}
	}
	if f.defaultWidth > 0 {
		return f.defaultWidth
	}
	return 500
}

// DecodeString decodes data to NFC-normalised Unicode. ToUnicode mappings
// come first, then a UTF-16 byte order mark, then the font encoding.
func (f *Font) DecodeString(data []byte) string {
	if f.ToUnicodeCMap == nil && len(data) >= 2 {
		switch {
		case data[0] == 0xFE && data[1] == 0xFF:
			return NormalizeUnicode(DecodeUTF16BE(data[2:]))
		case data[0] == 0xFF && data[1] == 0xFE:
			return NormalizeUnicode(DecodeUTF16LE(data[2:]))
		}
	}

	var out []byte
	for _, g := range f.Decode(data) {
		out = append(out, g.Text...)
	}
	return NormalizeUnicode(string(out))
}

// GetWidth returns the advance of code in 1000ths of an em.
func (f *Font) GetWidth(code uint32) float64 {
	return f.width(code, f.text(code))
}

func (f *Font) encoding() Encoding {
	if f.enc != nil {
		return f.enc
	}
	return GetEncoding(f.Encoding)
}

// IsVertical reports whether the font uses vertical writing mode.
func (f *Font) IsVertical() bool {
	return f.Encoding == "Identity-V"
}

func resolve(r Resolver, obj core.Object) (core.Object, error) {
	if obj == nil || r == nil {
		return obj, nil
	}
	return r.Resolve(obj)
}

func resolveStream(r Resolver, obj core.Object) (*core.Stream, error) {
	obj, err := resolve(r, obj)
	if err != nil {
		return nil, err
	}
	s, _ := obj.(*core.Stream)
	return s, nil
}
