package core

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// maxNesting bounds array and dictionary depth.
const maxNesting = 256

// ReferenceResolver is an interface for resolving indirect references.
// The parser uses it for indirect stream lengths.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// errCloser signals an array or dictionary terminator where a value was
// expected.
var errCloser = errors.New("unexpected closing delimiter")

// Parser parses PDF objects from an in-memory buffer.
type Parser struct {
	lex      *Lexer
	resolver ReferenceResolver
	depth    int
}

// NewParser creates a parser positioned at the start of data.
func NewParser(data []byte) *Parser {
	return &Parser{lex: NewLexer(data)}
}

// NewParserAt creates a parser positioned at offset.
func NewParserAt(data []byte, offset int) *Parser {
	p := NewParser(data)
	p.lex.SetPos(offset)
	return p
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// Pos returns the parser's byte offset.
func (p *Parser) Pos() int { return p.lex.Pos() }

// Lexer exposes the underlying lexer.
func (p *Parser) Lexer() *Lexer { return p.lex }

// ParseObject parses the next direct object. It returns io.EOF at the end
// of input.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	return p.parseFrom(tok)
}

func (p *Parser) parseFrom(tok Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		return p.parseIntegerOrRef(tok), nil
	case TokenReal:
		return Real(parseReal(tok.Value)), nil
	case TokenString, TokenHexString:
		return String(tok.Value), nil
	case TokenName:
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	case TokenArrayEnd, TokenDictEnd:
		return nil, errCloser
	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return nil, fmt.Errorf("unexpected keyword %q at offset %d", tok.Value, tok.Pos)
	}
	return nil, fmt.Errorf("unexpected token at offset %d", tok.Pos)
}

// parseIntegerOrRef looks ahead for "gen R" after an integer.
func (p *Parser) parseIntegerOrRef(tok Token) Object {
	n := parseInt(tok.Value)
	save := p.lex.Pos()

	gen, err := p.lex.NextToken()
	if err == nil && gen.Type == TokenInteger {
		r, err := p.lex.NextToken()
		if err == nil && r.Is("R") {
			return IndirectRef{Number: int(n), Generation: int(parseInt(gen.Value))}
		}
	}
	p.lex.SetPos(save)
	return Int(n)
}

func (p *Parser) parseArray() (Object, error) {
	if p.depth++; p.depth > maxNesting {
		return nil, fmt.Errorf("nesting deeper than %d", maxNesting)
	}
	defer func() { p.depth-- }()

	arr := Array{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenArrayEnd:
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated array")
		case TokenDictEnd:
			// Tolerate "[ ... >>" by closing the array here.
			p.lex.SetPos(tok.Pos)
			return arr, nil
		}
		obj, err := p.parseFrom(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	if p.depth++; p.depth > maxNesting {
		return nil, fmt.Errorf("nesting deeper than %d", maxNesting)
	}
	defer func() { p.depth-- }()

	dict := Dict{}
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary")
		case TokenName:
		default:
			// Skip junk between entries rather than failing the object.
			continue
		}

		key := string(tok.Value)
		val, err := p.ParseObject()
		if errors.Is(err, errCloser) {
			// "/Key >>" with no value; the terminator was consumed.
			dict[key] = Null{}
			return dict, nil
		}
		if err != nil {
			return nil, fmt.Errorf("value for /%s: %w", key, err)
		}
		if _, isNull := val.(Null); !isNull {
			dict[key] = val
		}
	}
}

// ParseIndirectObject parses "num gen obj <object> endobj", including
// stream objects. A missing endobj is tolerated.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	numTok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	genTok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	objTok, err := p.lex.NextToken()
	if err != nil {
		return nil, err
	}
	if numTok.Type != TokenInteger || genTok.Type != TokenInteger || !objTok.Is("obj") {
		return nil, fmt.Errorf("expected object header at offset %d", numTok.Pos)
	}

	ref := IndirectRef{Number: int(parseInt(numTok.Value)), Generation: int(parseInt(genTok.Value))}

	obj, err := p.ParseObject()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("object %d %d: %w", ref.Number, ref.Generation, err)
		}
		obj = Null{}
	}

	save := p.lex.Pos()
	next, err := p.lex.NextToken()
	if err == nil && next.Is("stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d: stream must follow a dictionary", ref.Number)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", ref.Number, err)
		}
		obj = stream
		save = p.lex.Pos()
		next, err = p.lex.NextToken()
	}
	if err != nil || !next.Is("endobj") {
		p.lex.SetPos(save)
	}

	return &IndirectObject{Ref: ref, Object: obj}, nil
}

// parseStream reads stream data after the stream keyword. When /Length is
// missing, unresolvable or wrong, the data runs to the next endstream.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	p.lex.SkipStreamEOL()
	data := p.lex.Data()
	start := p.lex.Pos()

	if length := p.streamLength(dict); length >= 0 && start+length <= len(data) {
		after := NewLexer(data)
		after.SetPos(start + length)
		if tok, err := after.NextToken(); err == nil && tok.Is("endstream") {
			p.lex.SetPos(after.Pos())
			return &Stream{Dict: dict, Data: data[start : start+length]}, nil
		}
	}

	idx := bytes.Index(data[start:], []byte("endstream"))
	if idx < 0 {
		return nil, fmt.Errorf("stream at offset %d has no endstream", start)
	}
	end := start + idx
	switch {
	case end-start >= 2 && data[end-2] == '\r' && data[end-1] == '\n':
		end -= 2
	case end > start && (data[end-1] == '\n' || data[end-1] == '\r'):
		end--
	}
	p.lex.SetPos(start + idx + len("endstream"))
	return &Stream{Dict: dict, Data: data[start:end]}, nil
}

// streamLength returns /Length, or -1 when it is absent or cannot be read.
func (p *Parser) streamLength(dict Dict) int {
	switch v := dict.Get("Length").(type) {
	case Int:
		return int(v)
	case IndirectRef:
		if p.resolver == nil {
			return -1
		}
		obj, err := p.resolver.ResolveReference(v)
		if err != nil {
			return -1
		}
		if n, ok := obj.(Int); ok {
			return int(n)
		}
	}
	return -1
}

func parseInt(b []byte) int64 {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		f := parseReal(b)
		return int64(f)
	}
	return n
}

func parseReal(b []byte) float64 {
	s := string(b)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Forms like "-.5" parse; "-" or "." alone read as zero.
		return 0
	}
	return f
}
