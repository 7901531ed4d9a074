package core

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

// TestParseObject tests parsing of direct objects
func TestParseObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Object
	}{
		{"null", "null", Null{}},
		{"true", "true", Bool(true)},
		{"int", "42", Int(42)},
		{"real", "-1.5", Real(-1.5)},
		{"string", "(abc)", String("abc")},
		{"name", "/Image", Name("Image")},
		{"reference", "12 0 R", IndirectRef{Number: 12}},
		{"array with refs", "[1 2 0 R 3]", Array{Int(1), IndirectRef{Number: 2}, Int(3)}},
		{"dict", "<< /Type /XObject /Width 10 >>", Dict{"Type": Name("XObject"), "Width": Int(10)}},
		{"nested", "<< /A << /B [true] >> >>", Dict{"A": Dict{"B": Array{Bool(true)}}}},
		{"null value dropped", "<< /A null /B 1 >>", Dict{"B": Int(1)}},
		{"missing value", "<< /A 1 /B >>", Dict{"A": Int(1), "B": Null{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewParser([]byte(tt.input)).ParseObject()
			if err != nil {
				t.Fatalf("ParseObject() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseObject() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// TestParseObjectIntegerNotRef tests that the reference lookahead backs off
func TestParseObjectIntegerNotRef(t *testing.T) {
	p := NewParser([]byte("1 2 3"))
	for _, want := range []Int{1, 2, 3} {
		got, err := p.ParseObject()
		if err != nil {
			t.Fatalf("ParseObject() error = %v", err)
		}
		if got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	}
	if _, err := p.ParseObject(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

// TestParseIndirectObject tests object headers and stream bodies
func TestParseIndirectObject(t *testing.T) {
	input := "7 0 obj\n<< /Length 5 >>\nstream\r\nhello\nendstream\nendobj\n"
	obj, err := NewParser([]byte(input)).ParseIndirectObject()
	if err != nil {
		t.Fatalf("ParseIndirectObject() error = %v", err)
	}
	if obj.Ref.Number != 7 {
		t.Errorf("Ref = %v, want 7 0 R", obj.Ref)
	}
	s, ok := obj.Object.(*Stream)
	if !ok {
		t.Fatalf("object is %T, want *Stream", obj.Object)
	}
	if string(s.Data) != "hello" {
		t.Errorf("Data = %q, want %q", s.Data, "hello")
	}
}

// TestParseStreamBadLength tests recovery when /Length is wrong or unresolvable
func TestParseStreamBadLength(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too long", "1 0 obj << /Length 500 >>\nstream\nhello world\nendstream endobj"},
		{"too short", "1 0 obj << /Length 3 >>\nstream\nhello world\nendstream endobj"},
		{"missing", "1 0 obj << >>\nstream\nhello world\r\nendstream endobj"},
		{"unresolved reference", "1 0 obj << /Length 9 0 R >>\nstream\nhello world\nendstream endobj"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := NewParser([]byte(tt.input)).ParseIndirectObject()
			if err != nil {
				t.Fatalf("ParseIndirectObject() error = %v", err)
			}
			s := obj.Object.(*Stream)
			if string(s.Data) != "hello world" {
				t.Errorf("Data = %q, want %q", s.Data, "hello world")
			}
		})
	}
}

type mapResolver map[int]Object

func (m mapResolver) ResolveReference(ref IndirectRef) (Object, error) {
	if o, ok := m[ref.Number]; ok {
		return o, nil
	}
	return nil, errors.New("not found")
}

// TestParseStreamIndirectLength tests /Length given as a reference
func TestParseStreamIndirectLength(t *testing.T) {
	p := NewParser([]byte("1 0 obj << /Length 2 0 R >>\nstream\nab endstream\nendobj"))
	p.SetReferenceResolver(mapResolver{2: Int(2)})

	obj, err := p.ParseIndirectObject()
	if err != nil {
		t.Fatalf("ParseIndirectObject() error = %v", err)
	}
	if got := string(obj.Object.(*Stream).Data); got != "ab" {
		t.Errorf("Data = %q, want %q", got, "ab")
	}
}

// TestParseIndirectObjectMissingEndobj tests tolerance of a missing endobj
func TestParseIndirectObjectMissingEndobj(t *testing.T) {
	p := NewParser([]byte("1 0 obj 5\n2 0 obj 6 endobj"))
	first, err := p.ParseIndirectObject()
	if err != nil || first.Object != Int(5) {
		t.Fatalf("first = %v, %v", first, err)
	}
	second, err := p.ParseIndirectObject()
	if err != nil || second.Object != Int(6) {
		t.Fatalf("second = %v, %v", second, err)
	}
}
