package font

import (
	"fmt"
	"strconv"

	"github.com/tsawler/pdftranslate/core"
)

// CMap maps character codes to Unicode and describes how a byte string
// splits into codes.
type CMap struct {
	// Single character mappings: charCode -> unicode string
	charMappings map[uint32]string

	// Range mappings, each mapping consecutive codes to consecutive text
	rangeMappings []CMapRange

	codespaces []codespaceRange
}

// CMapRange maps StartCode..EndCode to Dst, with the last rune of Dst
// incremented for each code after StartCode.
type CMapRange struct {
	StartCode uint32
	EndCode   uint32
	Dst       string
}

// codespaceRange is one begincodespacerange entry. Low and High have the
// same length, which is the code width in bytes.
type codespaceRange struct {
	Low, High []byte
}

func (r codespaceRange) contains(code []byte) bool {
	if len(code) != len(r.Low) {
		return false
	}
	for i, b := range code {
		if b < r.Low[i] || b > r.High[i] {
			return false
		}
	}
	return true
}

// NewCMap creates an empty CMap.
func NewCMap() *CMap {
	return &CMap{charMappings: make(map[uint32]string)}
}

// ParseToUnicodeCMap decodes and parses a ToUnicode CMap stream.
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode stream: %w", err)
	}
	return ParseCMap(data)
}

// ParseCMap parses CMap program text. It reads codespace ranges and
// bfchar/bfrange mappings; other operators are skipped.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	lex := core.NewLexer(data)

	for {
		tok, err := lex.NextToken()
		if err != nil {
			return cm, fmt.Errorf("cmap: %w", err)
		}
		if tok.Type == core.TokenEOF {
			return cm, nil
		}
		if tok.Type != core.TokenKeyword {
			continue
		}

		switch string(tok.Value) {
		case "begincodespacerange":
			err = cm.readCodespaces(lex)
		case "beginbfchar":
			err = cm.readBfChar(lex)
		case "beginbfrange":
			err = cm.readBfRange(lex)
		}
		if err != nil {
			return cm, fmt.Errorf("cmap: %w", err)
		}
	}
}

// sectionTokens returns the tokens up to the end keyword.
func sectionTokens(lex *core.Lexer, end string) ([]core.Token, error) {
	var toks []core.Token
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == core.TokenEOF {
			return nil, fmt.Errorf("missing %s", end)
		}
		if tok.Is(end) {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (cm *CMap) readCodespaces(lex *core.Lexer) error {
	toks, err := sectionTokens(lex, "endcodespacerange")
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(toks); i += 2 {
		lo, hi := toks[i], toks[i+1]
		if lo.Type != core.TokenHexString || hi.Type != core.TokenHexString {
			continue
		}
		if len(lo.Value) == 0 || len(lo.Value) != len(hi.Value) || len(lo.Value) > 4 {
			continue
		}
		cm.codespaces = append(cm.codespaces, codespaceRange{
			Low:  append([]byte(nil), lo.Value...),
			High: append([]byte(nil), hi.Value...),
		})
	}
	return nil
}

func (cm *CMap) readBfChar(lex *core.Lexer) error {
	toks, err := sectionTokens(lex, "endbfchar")
	if err != nil {
		return err
	}
	for i := 0; i+1 < len(toks); i += 2 {
		src, dst := toks[i], toks[i+1]
		if src.Type != core.TokenHexString {
			continue
		}
		if text, ok := tokenText(dst); ok {
			cm.charMappings[codeValue(src.Value)] = text
		}
	}
	return nil
}

func (cm *CMap) readBfRange(lex *core.Lexer) error {
	toks, err := sectionTokens(lex, "endbfrange")
	if err != nil {
		return err
	}
	for i := 0; i+2 < len(toks); {
		lo, hi := toks[i], toks[i+1]
		if lo.Type != core.TokenHexString || hi.Type != core.TokenHexString {
			i++
			continue
		}
		start, end := codeValue(lo.Value), codeValue(hi.Value)
		i += 2

		if toks[i].Type == core.TokenArrayStart {
			i++
			code := start
			for i < len(toks) && toks[i].Type != core.TokenArrayEnd {
				if text, ok := tokenText(toks[i]); ok && code <= end {
					cm.charMappings[code] = text
				}
				code++
				i++
			}
			i++
			continue
		}

		if text, ok := tokenText(toks[i]); ok && end >= start {
			cm.rangeMappings = append(cm.rangeMappings, CMapRange{StartCode: start, EndCode: end, Dst: text})
		}
		i++
	}
	return nil
}

// tokenText converts a bfchar destination: a UTF-16BE hex string or, in
// some producers' output, a glyph name.
func tokenText(tok core.Token) (string, bool) {
	switch tok.Type {
	case core.TokenHexString:
		if len(tok.Value) == 1 {
			return string(rune(tok.Value[0])), true
		}
		return DecodeUTF16BE(tok.Value), true
	case core.TokenName:
		if r, ok := GlyphToRune(string(tok.Value)); ok {
			return string(r), true
		}
	}
	return "", false
}

func codeValue(b []byte) uint32 {
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v
}

// Lookup returns the text mapped to code.
func (cm *CMap) Lookup(code uint32) (string, bool) {
	if cm == nil {
		return "", false
	}
	if s, ok := cm.charMappings[code]; ok {
		return s, true
	}
	for _, r := range cm.rangeMappings {
		if code < r.StartCode || code > r.EndCode {
			continue
		}
		runes := []rune(r.Dst)
		if len(runes) == 0 {
			return "", false
		}
		runes[len(runes)-1] += rune(code - r.StartCode)
		return string(runes), true
	}
	return "", false
}

// HasCodespaces reports whether the CMap declares code widths.
func (cm *CMap) HasCodespaces() bool {
	return cm != nil && len(cm.codespaces) > 0
}

// NextCode returns the width in bytes of the code at the start of data,
// following the codespace ranges. Bytes matching no range are consumed
// using the narrowest declared width, or 1 byte without ranges.
func (cm *CMap) NextCode(data []byte) int {
	if cm == nil || len(cm.codespaces) == 0 {
		return 1
	}
	narrowest := 4
	for n := 1; n <= 4; n++ {
		for _, r := range cm.codespaces {
			if len(r.Low) != n {
				continue
			}
			if n < narrowest {
				narrowest = n
			}
			if n <= len(data) && r.contains(data[:n]) {
				return n
			}
		}
	}
	if narrowest > len(data) {
		return len(data)
	}
	return narrowest
}

// LookupString decodes data, splitting it by codespace. Unmapped codes are
// dropped.
func (cm *CMap) LookupString(data []byte) string {
	if cm == nil {
		return string(data)
	}
	var out []byte
	for len(data) > 0 {
		n := cm.NextCode(data)
		if s, ok := cm.Lookup(codeValue(data[:n])); ok {
			out = append(out, s...)
		}
		data = data[n:]
	}
	return string(out)
}

// String describes the CMap size for debugging.
func (cm *CMap) String() string {
	return "CMap(" + strconv.Itoa(len(cm.charMappings)) + " chars, " +
		strconv.Itoa(len(cm.rangeMappings)) + " ranges)"
}
