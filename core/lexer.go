package core

import (
	"bytes"
	"fmt"
	"io"
)

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF        TokenType = iota
	TokenKeyword              // true, false, null, obj, endobj, stream, R, operators
	TokenInteger              // 123
	TokenReal                 // 3.14
	TokenString               // (hello)
	TokenHexString            // <48656C6C6F>
	TokenName                 // /Type
	TokenArrayStart           // [
	TokenArrayEnd             // ]
	TokenDictStart            // <<
	TokenDictEnd              // >>
)

// Token represents a lexical token. Value holds the decoded bytes for
// strings and names and the literal text otherwise.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int
}

// Is reports whether the token is the given keyword.
func (t Token) Is(keyword string) bool {
	return t.Type == TokenKeyword && string(t.Value) == keyword
}

// Lexer tokenizes PDF syntax held in memory. Comments are skipped.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a lexer positioned at the start of data.
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the current byte offset.
func (l *Lexer) Pos() int { return l.pos }

// SetPos moves the lexer to offset, clamped to the input.
func (l *Lexer) SetPos(offset int) {
	switch {
	case offset < 0:
		l.pos = 0
	case offset > len(l.data):
		l.pos = len(l.data)
	default:
		l.pos = offset
	}
}

// Data returns the underlying input.
func (l *Lexer) Data() []byte { return l.data }

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()

	if l.pos >= len(l.data) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	b := l.data[l.pos]

	switch b {
	case '[':
		l.pos++
		return Token{Type: TokenArrayStart, Value: l.data[start:l.pos], Pos: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenArrayEnd, Value: l.data[start:l.pos], Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if l.peekAt(1) == '<' {
			l.pos += 2
			return Token{Type: TokenDictStart, Value: l.data[start:l.pos], Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if l.peekAt(1) == '>' {
			l.pos += 2
			return Token{Type: TokenDictEnd, Value: l.data[start:l.pos], Pos: start}, nil
		}
		l.pos++
		return Token{}, fmt.Errorf("unexpected '>' at offset %d", start)
	case '/':
		return l.readName(), nil
	}

	if isDigit(b) || b == '-' || b == '+' || b == '.' {
		return l.readNumber(), nil
	}

	return l.readKeyword(), nil
}

// SkipStreamEOL consumes the end-of-line marker after a stream keyword.
// CRLF and LF are standard; a lone CR is accepted from broken writers.
func (l *Lexer) SkipStreamEOL() {
	for l.pos < len(l.data) && (l.data[l.pos] == ' ' || l.data[l.pos] == '\t') {
		l.pos++
	}
	switch l.peekAt(0) {
	case '\r':
		l.pos++
		if l.peekAt(0) == '\n' {
			l.pos++
		}
	case '\n':
		l.pos++
	}
}

// ReadBytes returns the next n bytes and advances past them.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || l.pos+n > len(l.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := l.data[l.pos : l.pos+n]
	l.pos += n
	return b, nil
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off < len(l.data) {
		return l.data[l.pos+off]
	}
	return 0
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) {
			l.pos++
			continue
		}
		if b == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\r' && l.data[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		return
	}
}

// readString reads a literal string, resolving escapes and balanced parens.
// An unterminated string runs to the end of input.
func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++ // (
	var buf bytes.Buffer
	depth := 1

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
			buf.WriteByte(b)
		case '\\':
			l.readEscape(&buf)
		case '\r':
			// EOL inside a literal string reads as LF.
			if l.peekAt(0) == '\n' {
				l.pos++
			}
			buf.WriteByte('\n')
		default:
			buf.WriteByte(b)
		}
	}
	return Token{}, fmt.Errorf("unterminated string at offset %d", start)
}

func (l *Lexer) readEscape(buf *bytes.Buffer) {
	if l.pos >= len(l.data) {
		return
	}
	next := l.data[l.pos]
	l.pos++
	switch next {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if l.peekAt(0) == '\n' {
			l.pos++
		}
	case '\n':
	case '0', '1', '2', '3', '4', '5', '6', '7':
		val := int(next - '0')
		for i := 0; i < 2 && isOctalDigit(l.peekAt(0)); i++ {
			val = val*8 + int(l.data[l.pos]-'0')
			l.pos++
		}
		buf.WriteByte(byte(val))
	default:
		buf.WriteByte(next)
	}
}

// readHexString reads <...>, decoding pairs of digits. An odd final digit
// is padded with 0 and invalid characters are skipped.
func (l *Lexer) readHexString() (Token, error) {
	start := l.pos
	l.pos++ // <
	out := make([]byte, 0, 16)
	var hi byte
	half := false

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			if half {
				out = append(out, hi<<4)
			}
			return Token{Type: TokenHexString, Value: out, Pos: start}, nil
		}
		if !isHexDigit(b) {
			continue
		}
		if half {
			out = append(out, hi<<4|hexValue(b))
		} else {
			hi = hexValue(b)
		}
		half = !half
	}
	return Token{}, fmt.Errorf("unterminated hex string at offset %d", start)
}

// readName reads /Name, decoding #xx escapes.
func (l *Lexer) readName() Token {
	start := l.pos
	l.pos++ // /
	var buf bytes.Buffer

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
		if b == '#' && isHexDigit(l.peekAt(0)) && isHexDigit(l.peekAt(1)) {
			buf.WriteByte(hexValue(l.data[l.pos])<<4 | hexValue(l.data[l.pos+1]))
			l.pos += 2
			continue
		}
		buf.WriteByte(b)
	}
	return Token{Type: TokenName, Value: buf.Bytes(), Pos: start}
}

// readNumber reads an integer or real number. Stray signs inside the number
// (as in "--5" or "5-3" from sloppy writers) end the token.
func (l *Lexer) readNumber() Token {
	start := l.pos
	hasDecimal := false

scan:
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		switch {
		case b == '.' && !hasDecimal:
			hasDecimal = true
		case isDigit(b):
		case (b == '-' || b == '+') && l.pos == start:
		default:
			break scan
		}
		l.pos++
	}

	t := TokenInteger
	if hasDecimal {
		t = TokenReal
	}
	return Token{Type: t, Value: l.data[start:l.pos], Pos: start}
}

// readKeyword reads a run of regular characters. Unexpected delimiters such
// as '{' or ')' become single-byte keywords so callers can skip them.
func (l *Lexer) readKeyword() Token {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return Token{Type: TokenKeyword, Value: l.data[start:l.pos], Pos: start}
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
