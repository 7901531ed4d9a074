package core

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrNoXRef is returned when neither the cross-reference data nor a repair
// scan yields a usable object index.
var ErrNoXRef = errors.New("no usable cross-reference data")

// XRefEntryType distinguishes the three kinds of cross-reference entry.
type XRefEntryType int

const (
	XRefFree XRefEntryType = iota
	XRefInUse
	XRefCompressed
)

// XRefEntry locates one object. In-use entries carry a file offset;
// compressed entries name the object stream and the index within it.
type XRefEntry struct {
	Type         XRefEntryType
	Offset       int64
	Generation   int
	StreamNumber int
	StreamIndex  int
}

// XRefTable maps object numbers to entries, merged across incremental
// updates with the newest section winning.
type XRefTable struct {
	Entries map[int]*XRefEntry
	Trailer Dict
}

// NewXRefTable creates a new empty XRef table
func NewXRefTable() *XRefTable {
	return &XRefTable{
		Entries: make(map[int]*XRefEntry),
		Trailer: make(Dict),
	}
}

// Get retrieves an XRef entry by object number
func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	entry, ok := x.Entries[objNum]
	return entry, ok
}

// Size returns the number of entries in the table
func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// setIfAbsent records an entry unless a newer section already did.
func (x *XRefTable) setIfAbsent(objNum int, entry *XRefEntry) {
	if _, ok := x.Entries[objNum]; !ok {
		x.Entries[objNum] = entry
	}
}

// mergeTrailer copies keys that a newer trailer did not set.
func (x *XRefTable) mergeTrailer(d Dict) {
	for k, v := range d {
		if _, ok := x.Trailer[k]; !ok {
			x.Trailer[k] = v
		}
	}
}

// LoadXRef reads the cross-reference data reachable from startxref,
// following /Prev and /XRefStm links. Both classic tables and xref streams
// are understood. If that fails or yields no /Root, the file is rescanned
// with RebuildXRef.
func LoadXRef(data []byte) (*XRefTable, error) {
	table := NewXRefTable()

	offset, err := findStartXRef(data)
	if err == nil {
		err = table.readSections(data, offset)
	}
	if err == nil && table.Trailer.Has("Root") && len(table.Entries) > 0 {
		delete(table.Trailer, "Prev")
		delete(table.Trailer, "XRefStm")
		return table, nil
	}

	rebuilt, rerr := RebuildXRef(data)
	if rerr != nil {
		if err != nil {
			return nil, fmt.Errorf("%w (xref: %v)", rerr, err)
		}
		return nil, rerr
	}
	return rebuilt, nil
}

// findStartXRef locates the offset after the last startxref keyword.
func findStartXRef(data []byte) (int64, error) {
	tail := data
	if len(tail) > 4096 {
		tail = tail[len(tail)-4096:]
	}
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	lex := NewLexer(tail)
	lex.SetPos(idx + len("startxref"))
	tok, err := lex.NextToken()
	if err != nil || tok.Type != TokenInteger {
		return 0, fmt.Errorf("invalid startxref offset")
	}
	off := parseInt(tok.Value)
	if off <= 0 || off >= int64(len(data)) {
		return 0, fmt.Errorf("startxref offset %d out of range", off)
	}
	return off, nil
}

// readSections walks the chain of sections starting at offset.
func (x *XRefTable) readSections(data []byte, offset int64) error {
	visited := make(map[int64]bool)
	for offset > 0 {
		if visited[offset] {
			return nil
		}
		visited[offset] = true
		if offset >= int64(len(data)) {
			return fmt.Errorf("xref offset %d out of range", offset)
		}

		trailer, err := x.readSection(data, offset)
		if err != nil {
			return err
		}

		// Hybrid files index compressed objects in a side xref stream.
		if stm, ok := trailer.GetInt("XRefStm"); ok && !visited[int64(stm)] {
			visited[int64(stm)] = true
			if _, err := x.readSection(data, int64(stm)); err != nil {
				return fmt.Errorf("XRefStm: %w", err)
			}
		}

		x.mergeTrailer(trailer)
		prev, ok := trailer.GetInt("Prev")
		if !ok {
			return nil
		}
		offset = int64(prev)
	}
	return nil
}

// readSection parses one section, a classic table or an xref stream, and
// returns its trailer dictionary.
func (x *XRefTable) readSection(data []byte, offset int64) (Dict, error) {
	lex := NewLexer(data)
	lex.SetPos(int(offset))
	tok, err := lex.NextToken()
	if err != nil {
		return nil, err
	}
	if tok.Is("xref") {
		return x.readTable(lex)
	}

	p := NewParserAt(data, int(offset))
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("xref stream at %d: %w", offset, err)
	}
	stream, ok := obj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object at %d is not an xref stream", offset)
	}
	return stream.Dict, x.readStream(stream)
}

// readTable parses "xref" subsections up to and including the trailer.
func (x *XRefTable) readTable(lex *Lexer) (Dict, error) {
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Is("trailer") {
			break
		}
		if tok.Type != TokenInteger {
			return nil, fmt.Errorf("expected subsection header at offset %d", tok.Pos)
		}
		countTok, err := lex.NextToken()
		if err != nil || countTok.Type != TokenInteger {
			return nil, fmt.Errorf("expected subsection count at offset %d", tok.Pos)
		}

		start := int(parseInt(tok.Value))
		count := int(parseInt(countTok.Value))
		for i := 0; i < count; i++ {
			offTok, err1 := lex.NextToken()
			genTok, err2 := lex.NextToken()
			kindTok, err3 := lex.NextToken()
			if err1 != nil || err2 != nil || err3 != nil || offTok.Type != TokenInteger || genTok.Type != TokenInteger {
				return nil, fmt.Errorf("malformed xref entry %d", start+i)
			}

			entry := &XRefEntry{
				Offset:     parseInt(offTok.Value),
				Generation: int(parseInt(genTok.Value)),
			}
			switch {
			case kindTok.Is("n"):
				entry.Type = XRefInUse
			case kindTok.Is("f"):
				entry.Type = XRefFree
			default:
				return nil, fmt.Errorf("xref entry %d has type %q", start+i, kindTok.Value)
			}
			// Object 0 heads the free list and is never a real object.
			if start+i == 0 && entry.Type == XRefInUse {
				entry.Type = XRefFree
			}
			x.setIfAbsent(start+i, entry)
		}
	}

	p := &Parser{lex: lex}
	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is %s, not a dictionary", obj.Type())
	}
	return trailer, nil
}

// readStream decodes the binary entries of an xref stream (/W, /Index).
func (x *XRefTable) readStream(stream *Stream) error {
	decoded, err := stream.Decode()
	if err != nil {
		return fmt.Errorf("decode xref stream: %w", err)
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok || len(wArr) < 3 {
		return fmt.Errorf("xref stream has invalid /W")
	}
	var w [3]int
	for i := 0; i < 3; i++ {
		n, ok := wArr[i].(Int)
		if !ok || n < 0 || n > 8 {
			return fmt.Errorf("xref stream /W[%d] invalid", i)
		}
		w[i] = int(n)
	}
	rowLen := w[0] + w[1] + w[2]
	if rowLen == 0 {
		return fmt.Errorf("xref stream /W is all zero")
	}

	var index []int
	if idx, ok := stream.Dict.GetArray("Index"); ok {
		for _, v := range idx {
			if n, ok := v.(Int); ok {
				index = append(index, int(n))
			}
		}
	} else {
		size, _ := stream.Dict.GetInt("Size")
		index = []int{0, int(size)}
	}

	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		start, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+rowLen > len(decoded) {
				return nil
			}
			row := decoded[pos : pos+rowLen]
			pos += rowLen

			typ := int64(1)
			if w[0] > 0 {
				typ = readField(row[:w[0]])
			}
			f2 := readField(row[w[0] : w[0]+w[1]])
			f3 := readField(row[w[0]+w[1]:])

			var entry *XRefEntry
			switch typ {
			case 0:
				entry = &XRefEntry{Type: XRefFree, Generation: int(f3)}
			case 1:
				entry = &XRefEntry{Type: XRefInUse, Offset: f2, Generation: int(f3)}
			case 2:
				entry = &XRefEntry{Type: XRefCompressed, StreamNumber: int(f2), StreamIndex: int(f3)}
			default:
				// Unknown types are to be ignored.
				continue
			}
			x.setIfAbsent(start+j, entry)
		}
	}
	return nil
}

// readField decodes a big-endian unsigned field.
func readField(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

var objHeaderRe = regexp.MustCompile(`(?m)(?:^|[\r\n\s])(\d+)[ \t\r\n\f\x00]+(\d+)[ \t\r\n\f\x00]+obj\b`)

// RebuildXRef recovers an object index by scanning the whole file for
// "n g obj" headers, the way viewers repair damaged files. Later
// definitions win. The trailer comes from the last trailer keyword or xref
// stream; failing both, the first catalog found becomes /Root. Objects
// inside object streams are indexed too.
func RebuildXRef(data []byte) (*XRefTable, error) {
	table := NewXRefTable()
	var objStreams []int

	for _, m := range objHeaderRe.FindAllSubmatchIndex(data, -1) {
		num, err1 := strconv.Atoi(string(data[m[2]:m[3]]))
		gen, err2 := strconv.Atoi(string(data[m[4]:m[5]]))
		if err1 != nil || err2 != nil {
			continue
		}
		table.Entries[num] = &XRefEntry{Type: XRefInUse, Offset: int64(m[2]), Generation: gen}
	}
	if len(table.Entries) == 0 {
		return nil, ErrNoXRef
	}

	if idx := bytes.LastIndex(data, []byte("trailer")); idx >= 0 {
		p := NewParserAt(data, idx+len("trailer"))
		if obj, err := p.ParseObject(); err == nil {
			if d, ok := obj.(Dict); ok {
				table.Trailer = d
			}
		}
	}

	for num, e := range table.Entries {
		p := NewParserAt(data, int(e.Offset))
		obj, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		switch v := obj.Object.(type) {
		case *Stream:
			switch t, _ := v.Dict.GetName("Type"); t {
			case "XRef":
				if !table.Trailer.Has("Root") {
					table.mergeTrailer(v.Dict)
				}
			case "ObjStm":
				objStreams = append(objStreams, num)
			}
		case Dict:
			if t, _ := v.GetName("Type"); t == "Catalog" && !table.Trailer.Has("Root") {
				table.Trailer["Root"] = obj.Ref
			}
		}
	}

	for _, sn := range objStreams {
		p := NewParserAt(data, int(table.Entries[sn].Offset))
		obj, err := p.ParseIndirectObject()
		if err != nil {
			continue
		}
		stream, ok := obj.Object.(*Stream)
		if !ok {
			continue
		}
		os, err := NewObjectStream(stream)
		if err != nil {
			continue
		}
		for i, num := range os.ObjectNumbers() {
			table.setIfAbsent(num, &XRefEntry{Type: XRefCompressed, StreamNumber: sn, StreamIndex: i})
			if table.Trailer.Has("Root") {
				continue
			}
			if _, o, err := os.ObjectAt(i); err == nil {
				if d, ok := o.(Dict); ok {
					if t, _ := d.GetName("Type"); t == "Catalog" {
						table.Trailer["Root"] = IndirectRef{Number: num}
					}
				}
			}
		}
	}

	if !table.Trailer.Has("Root") {
		return nil, fmt.Errorf("%w: no document catalog found", ErrNoXRef)
	}
	delete(table.Trailer, "Prev")
	delete(table.Trailer, "XRefStm")
	return table, nil
}
