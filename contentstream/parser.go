package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tsawler/pdftranslate/core"
)

// maxOperands bounds the operand stack. Real operators take at most a
// handful; a longer run means the stream is garbage.
const maxOperands = 4096

// Operation is one operator together with the operands that preceded it.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parser splits a content stream into operations. A Parser owns its
// operand stack and is not safe for concurrent use.
type Parser struct {
	lex      *core.Lexer
	operands []core.Object
	ops      []Operation
}

// NewParser creates a content stream parser for data.
func NewParser(data []byte) *Parser {
	return &Parser{lex: core.NewLexer(data)}
}

// Parse returns all operations in order. On a syntax error it returns the
// operations read so far together with the error.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return p.ops, err
		}

		switch tok.Type {
		case core.TokenEOF:
			return p.ops, nil
		case core.TokenInteger:
			n, _ := strconv.ParseInt(string(tok.Value), 10, 64)
			p.push(core.Int(n))
		case core.TokenReal:
			f, _ := strconv.ParseFloat(string(tok.Value), 64)
			p.push(core.Real(f))
		case core.TokenString, core.TokenHexString:
			p.push(core.String(tok.Value))
		case core.TokenName:
			p.push(core.Name(tok.Value))
		case core.TokenArrayStart, core.TokenDictStart:
			obj, err := p.parseComposite(tok.Pos)
			if err != nil {
				return p.ops, err
			}
			p.push(obj)
		case core.TokenArrayEnd, core.TokenDictEnd:
			return p.ops, fmt.Errorf("unexpected %q at offset %d", tok.Value, tok.Pos)
		case core.TokenKeyword:
			if err := p.keyword(tok); err != nil {
				return p.ops, err
			}
		}
	}
}

// parseComposite reads an array or dictionary starting at offset.
func (p *Parser) parseComposite(offset int) (core.Object, error) {
	op := core.NewParserAt(p.lex.Data(), offset)
	obj, err := op.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("operand at offset %d: %w", offset, err)
	}
	p.lex.SetPos(op.Pos())
	return obj, nil
}

func (p *Parser) keyword(tok core.Token) error {
	switch kw := string(tok.Value); kw {
	case "true":
		p.push(core.Bool(true))
	case "false":
		p.push(core.Bool(false))
	case "null":
		p.push(core.Null{})
	case "{", "}":
		// PostScript calculator braces never reach a page stream legitimately.
	case "BI":
		return p.inlineImage(tok.Pos)
	default:
		p.emit(kw)
	}
	return nil
}

func (p *Parser) push(obj core.Object) {
	if len(p.operands) >= maxOperands {
		p.operands = p.operands[:0]
	}
	p.operands = append(p.operands, obj)
}

func (p *Parser) emit(operator string) {
	operands := make([]core.Object, len(p.operands))
	copy(operands, p.operands)
	p.ops = append(p.ops, Operation{Operator: operator, Operands: operands})
	p.operands = p.operands[:0]
}

// inlineImage consumes "BI <dict entries> ID <data> EI". It emits a single
// BI operation whose operand is the image dictionary; the data is skipped.
func (p *Parser) inlineImage(start int) error {
	p.operands = p.operands[:0]
	dict := core.Dict{}

	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return err
		}
		if tok.Type == core.TokenEOF {
			return fmt.Errorf("inline image at offset %d: missing ID", start)
		}
		if tok.Is("ID") {
			break
		}
		if tok.Type != core.TokenName {
			continue
		}

		key := string(tok.Value)
		op := core.NewParserAt(p.lex.Data(), p.lex.Pos())
		val, err := op.ParseObject()
		if err != nil {
			return fmt.Errorf("inline image at offset %d: %w", start, err)
		}
		p.lex.SetPos(op.Pos())
		dict[key] = val
	}

	data := p.lex.Data()
	pos := p.lex.Pos()
	if pos < len(data) && isWhitespace(data[pos]) {
		pos++
	}
	end := findEI(data, pos)
	if end < 0 {
		return fmt.Errorf("inline image at offset %d: missing EI", start)
	}
	p.lex.SetPos(end + 2)

	p.ops = append(p.ops, Operation{Operator: "BI", Operands: []core.Object{dict}})
	return nil
}

// findEI returns the offset of an "EI" that is preceded by whitespace and
// followed by whitespace or the end of data.
func findEI(data []byte, from int) int {
	for i := from; i < len(data); {
		j := bytes.Index(data[i:], []byte("EI"))
		if j < 0 {
			return -1
		}
		at := i + j
		before := at == from || isWhitespace(data[at-1])
		after := at+2 == len(data) || isWhitespace(data[at+2])
		if before && after {
			return at
		}
		i = at + 1
	}
	return -1
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
