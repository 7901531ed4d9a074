package pages

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/tsawler/pdftranslate/core"
	"github.com/tsawler/pdftranslate/internal/pdftest"
)

// mockResolver is a mock ObjectResolver for testing
type mockResolver struct {
	objects map[int]core.Object
}

func newMockResolver() *mockResolver {
	return &mockResolver{objects: make(map[int]core.Object)}
}

func (m *mockResolver) AddObject(num int, obj core.Object) {
	m.objects[num] = obj
}

func (m *mockResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	o, ok := m.objects[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return o, nil
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

// TestCatalogPages tests resolving the page tree root through a reference
func TestCatalogPages(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(2, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{}})

	catalog := NewCatalog(core.Dict{"Type": core.Name("Catalog"), "Pages": ref(2)}, resolver)
	if catalog.Type() != "Catalog" {
		t.Errorf("Type() = %q, want Catalog", catalog.Type())
	}
	root, err := catalog.Pages()
	if err != nil {
		t.Fatalf("Pages() error = %v", err)
	}
	if n, _ := root.GetName("Type"); n != "Pages" {
		t.Errorf("root type = %q", n)
	}

	if _, err := NewCatalog(core.Dict{}, resolver).Pages(); err == nil {
		t.Error("expected error for catalog without /Pages")
	}
}

// TestPageTreeNested tests ordering and numbering across nested nodes
func TestPageTreeNested(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(10, core.Dict{"Type": core.Name("Page"), "Tag": core.Int(1)})
	resolver.AddObject(11, core.Dict{"Type": core.Name("Page"), "Tag": core.Int(2)})
	resolver.AddObject(12, core.Dict{"Type": core.Name("Page"), "Tag": core.Int(3)})
	resolver.AddObject(20, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(11), ref(12)}})

	root := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(10), ref(20)}, "Count": core.Int(99)}
	tree := NewPageTree(root, resolver)

	count, err := tree.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("Count() = %d, want 3 (traversal, not /Count)", count)
	}

	for i := 0; i < 3; i++ {
		p, err := tree.GetPage(i)
		if err != nil {
			t.Fatalf("GetPage(%d) error = %v", i, err)
		}
		if p.Number() != i+1 {
			t.Errorf("page %d Number() = %d", i, p.Number())
		}
		if tag, _ := p.Dict().GetInt("Tag"); int(tag) != i+1 {
			t.Errorf("page %d has Tag %d, order broken", i, tag)
		}
	}

	if _, err := tree.GetPage(3); err == nil {
		t.Error("expected out of range error")
	}
}

// TestPageTreeCycle tests that a self-referencing tree terminates
func TestPageTreeCycle(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(5, core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(5)}})

	root, _ := resolver.Resolve(ref(5))
	if _, err := NewPageTree(root.(core.Dict), resolver).Pages(); err == nil {
		t.Error("expected error for cyclic page tree")
	}
}

// TestPageInheritance tests attributes inherited through two ancestors
func TestPageInheritance(t *testing.T) {
	resolver := newMockResolver()
	fonts := core.Dict{"Font": core.Dict{"F1": ref(30)}}
	resolver.AddObject(40, fonts)

	leaf := core.Dict{"Type": core.Name("Page")}
	mid := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{leaf}, "Rotate": core.Int(-90)}
	root := core.Dict{
		"Type":      core.Name("Pages"),
		"Kids":      core.Array{mid},
		"Resources": ref(40),
		"MediaBox":  core.Array{core.Int(0), core.Int(0), core.Real(595.5), core.Int(842)},
	}

	p, err := NewPageTree(root, resolver).GetPage(0)
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}

	res, err := p.Resources()
	if err != nil {
		t.Fatalf("Resources() error = %v", err)
	}
	if !reflect.DeepEqual(res, fonts) {
		t.Errorf("Resources() = %v, want %v", res, fonts)
	}
	if w, _ := p.Width(); w != 595.5 {
		t.Errorf("Width() = %v, want 595.5", w)
	}
	if p.Rotate() != 270 {
		t.Errorf("Rotate() = %d, want 270", p.Rotate())
	}
}

// TestPageDefaults tests a page with nothing declared
func TestPageDefaults(t *testing.T) {
	p := NewPage(1, core.Dict{"Type": core.Name("Page")}, nil, newMockResolver())

	res, err := p.Resources()
	if err != nil || len(res) != 0 {
		t.Errorf("Resources() = %v, %v; want empty", res, err)
	}
	box, err := p.MediaBox()
	if err != nil || box[2] != 612 || box[3] != 792 {
		t.Errorf("MediaBox() = %v, %v", box, err)
	}
	streams, err := p.Contents()
	if err != nil || streams != nil {
		t.Errorf("Contents() = %v, %v", streams, err)
	}
}

// TestPageContentData tests decoding and joining of a contents array
func TestPageContentData(t *testing.T) {
	resolver := newMockResolver()
	resolver.AddObject(7, &core.Stream{Dict: core.Dict{"Filter": core.Name("FlateDecode")}, Data: pdftest.Flate([]byte("BT"))})
	resolver.AddObject(8, &core.Stream{Dict: core.Dict{}, Data: []byte("ET")})

	p := NewPage(1, core.Dict{"Contents": core.Array{ref(7), ref(8)}}, nil, resolver)
	data, err := p.ContentData()
	if err != nil {
		t.Fatalf("ContentData() error = %v", err)
	}
	if string(data) != "BT\nET\n" {
		t.Errorf("ContentData() = %q", data)
	}
}
