package core

import (
	"fmt"
)

// ObjectStream represents a PDF 1.5 object stream (Type /ObjStm), which
// packs several non-stream objects into one compressed stream.
type ObjectStream struct {
	n       int
	first   int
	offsets []objectStreamOffset
	decoded []byte
	cache   map[int]Object
}

// objectStreamOffset pairs an object number with its offset relative to
// /First.
type objectStreamOffset struct {
	ObjNum int
	Offset int
}

// NewObjectStream decodes stream and parses its header of object number and
// offset pairs.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	if t, _ := stream.Dict.GetName("Type"); t != "ObjStm" {
		return nil, fmt.Errorf("stream is not an object stream, got type %q", t)
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N")
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First")
	}

	decoded, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("decode object stream: %w", err)
	}
	if int(first) > len(decoded) {
		return nil, fmt.Errorf("/First %d beyond decoded length %d", first, len(decoded))
	}

	os := &ObjectStream{
		n:       int(n),
		first:   int(first),
		decoded: decoded,
		cache:   make(map[int]Object),
	}
	if err := os.parseHeader(); err != nil {
		return nil, err
	}
	return os, nil
}

// N returns the number of objects in the stream.
func (os *ObjectStream) N() int { return len(os.offsets) }

func (os *ObjectStream) parseHeader() error {
	lex := NewLexer(os.decoded[:os.first])
	os.offsets = make([]objectStreamOffset, 0, os.n)

	for i := 0; i < os.n; i++ {
		numTok, err := lex.NextToken()
		if err != nil {
			return err
		}
		offTok, err := lex.NextToken()
		if err != nil {
			return err
		}
		if numTok.Type != TokenInteger || offTok.Type != TokenInteger {
			if len(os.offsets) > 0 {
				// Short header; keep what was readable.
				return nil
			}
			return fmt.Errorf("object stream header entry %d is malformed", i)
		}
		os.offsets = append(os.offsets, objectStreamOffset{
			ObjNum: int(parseInt(numTok.Value)),
			Offset: int(parseInt(offTok.Value)),
		})
	}
	return nil
}

// ObjectAt parses the object at position index, returning its number.
func (os *ObjectStream) ObjectAt(index int) (int, Object, error) {
	if index < 0 || index >= len(os.offsets) {
		return 0, nil, fmt.Errorf("object stream index %d out of range [0,%d)", index, len(os.offsets))
	}
	entry := os.offsets[index]
	if obj, ok := os.cache[index]; ok {
		return entry.ObjNum, obj, nil
	}

	p := NewParserAt(os.decoded, os.first+entry.Offset)
	obj, err := p.ParseObject()
	if err != nil {
		return 0, nil, fmt.Errorf("object %d in object stream: %w", entry.ObjNum, err)
	}
	os.cache[index] = obj
	return entry.ObjNum, obj, nil
}

// Object finds an object by number. The xref index is used when it is
// correct; otherwise the header is searched.
func (os *ObjectStream) Object(objNum, hint int) (Object, error) {
	if hint >= 0 && hint < len(os.offsets) && os.offsets[hint].ObjNum == objNum {
		_, obj, err := os.ObjectAt(hint)
		return obj, err
	}
	for i, e := range os.offsets {
		if e.ObjNum == objNum {
			_, obj, err := os.ObjectAt(i)
			return obj, err
		}
	}
	return nil, fmt.Errorf("object %d not in object stream", objNum)
}

// ObjectNumbers lists the objects contained in the stream, in order.
func (os *ObjectStream) ObjectNumbers() []int {
	nums := make([]int, len(os.offsets))
	for i, e := range os.offsets {
		nums[i] = e.ObjNum
	}
	return nums
}
