package pages

import (
	"bytes"
	"fmt"

	"github.com/tsawler/pdftranslate/core"
)

// maxTreeDepth bounds page tree recursion so a cyclic /Kids graph
// terminates.
const maxTreeDepth = 64

// inheritable lists the page attributes a leaf inherits from its
// ancestors.
var inheritable = []string{"Resources", "MediaBox", "CropBox", "Rotate"}

// ObjectResolver dereferences indirect references.
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Type returns the catalog type (should be "Catalog")
func (c *Catalog) Type() string {
	n, _ := c.dict.GetName("Type")
	return string(n)
}

// Pages returns the page tree root
func (c *Catalog) Pages() (core.Dict, error) {
	obj, err := c.resolver.Resolve(c.dict.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve /Pages: %w", err)
	}
	d, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("catalog /Pages is %T, not a dictionary", obj)
	}
	return d, nil
}

// PageTree represents the PDF page tree
type PageTree struct {
	root     core.Dict
	resolver ObjectResolver
	pages    []*Page
}

// NewPageTree creates a new page tree from the root pages dictionary
func NewPageTree(root core.Dict, resolver ObjectResolver) *PageTree {
	return &PageTree{root: root, resolver: resolver}
}

// Count returns the number of leaf pages found by traversal. The /Count
// entry is not trusted since producers get it wrong.
func (t *PageTree) Count() (int, error) {
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// GetPage returns the page at the given index (0-based)
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// Pages returns all pages in document order.
func (t *PageTree) Pages() ([]*Page, error) {
	if t.pages != nil {
		return t.pages, nil
	}
	pages := make([]*Page, 0)
	if err := t.traverse(t.root, core.Dict{}, 0, &pages); err != nil {
		return nil, fmt.Errorf("failed to traverse page tree: %w", err)
	}
	t.pages = pages
	return pages, nil
}

// traverse walks a node, carrying the inheritable attributes seen on the
// path from the root.
func (t *PageTree) traverse(node core.Dict, inherited core.Dict, depth int, out *[]*Page) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}

	typ, _ := node.GetName("Type")
	if typ == "" {
		// Missing /Type: a node with /Kids is an intermediate node.
		if node.Has("Kids") {
			typ = "Pages"
		} else {
			typ = "Page"
		}
	}

	switch typ {
	case "Pages":
		next := core.Dict{}
		for k, v := range inherited {
			next[k] = v
		}
		for _, key := range inheritable {
			if v := node.Get(key); v != nil {
				next[key] = v
			}
		}

		kidsObj, err := t.resolver.Resolve(node.Get("Kids"))
		if err != nil {
			return fmt.Errorf("failed to resolve /Kids: %w", err)
		}
		kids, ok := kidsObj.(core.Array)
		if !ok {
			return fmt.Errorf("invalid /Kids type: %T", kidsObj)
		}
		for i, kid := range kids {
			obj, err := t.resolver.Resolve(kid)
			if err != nil {
				return fmt.Errorf("failed to resolve kid %d: %w", i, err)
			}
			d, ok := obj.(core.Dict)
			if !ok {
				return fmt.Errorf("kid %d is %T, not a dictionary", i, obj)
			}
			if err := t.traverse(d, next, depth+1, out); err != nil {
				return err
			}
		}
	case "Page":
		*out = append(*out, NewPage(len(*out)+1, node, inherited, t.resolver))
	default:
		return fmt.Errorf("unexpected page node type: %s", typ)
	}
	return nil
}

// Page represents a single PDF page
type Page struct {
	number    int
	dict      core.Dict
	inherited core.Dict
	resolver  ObjectResolver
}

// NewPage creates a page. number is 1-based; inherited holds attributes
// collected from ancestor nodes and may be nil.
func NewPage(number int, dict, inherited core.Dict, resolver ObjectResolver) *Page {
	return &Page{number: number, dict: dict, inherited: inherited, resolver: resolver}
}

// Number returns the 1-based page number.
func (p *Page) Number() int { return p.number }

// Dict returns the page dictionary.
func (p *Page) Dict() core.Dict { return p.dict }

// attr returns a possibly inherited attribute.
func (p *Page) attr(key string) core.Object {
	if v := p.dict.Get(key); v != nil {
		return v
	}
	if p.inherited != nil {
		return p.inherited.Get(key)
	}
	return nil
}

// MediaBox returns the page media box [x1 y1 x2 y2], defaulting to US
// Letter when none is declared.
func (p *Page) MediaBox() ([]float64, error) {
	box, err := p.box("MediaBox")
	if err != nil {
		return nil, err
	}
	if box == nil {
		return []float64{0, 0, 612, 792}, nil
	}
	return box, nil
}

// box reads a rectangle attribute. A missing attribute returns nil, nil.
func (p *Page) box(name string) ([]float64, error) {
	obj := p.attr(name)
	if obj == nil {
		return nil, nil
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("invalid %s: %v", name, resolved)
	}
	box := make([]float64, 4)
	for i, elem := range arr {
		elem, err = p.resolver.Resolve(elem)
		if err != nil {
			return nil, err
		}
		v, ok := core.Number(elem)
		if !ok {
			return nil, fmt.Errorf("invalid %s element type: %T", name, elem)
		}
		box[i] = v
	}
	return box, nil
}

// Resources returns the page resources dictionary. A page without
// resources yields an empty dictionary.
func (p *Page) Resources() (core.Dict, error) {
	obj := p.attr("Resources")
	if obj == nil {
		return core.Dict{}, nil
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Resources: %w", err)
	}
	switch d := resolved.(type) {
	case core.Dict:
		return d, nil
	case core.Null:
		return core.Dict{}, nil
	}
	return nil, fmt.Errorf("invalid Resources type: %T", resolved)
}

// Contents returns the page content streams in order.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj := p.dict.Get("Contents")
	if obj == nil {
		return nil, nil
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve Contents: %w", err)
	}

	switch v := resolved.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			r, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve contents[%d]: %w", i, err)
			}
			if s, ok := r.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
		return streams, nil
	case core.Null:
		return nil, nil
	}
	return nil, fmt.Errorf("invalid Contents type: %T", resolved)
}

// ContentData decodes and concatenates the content streams. Streams are
// joined with a newline since a token may not span two of them.
func (p *Page) ContentData() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i, s := range streams {
		data, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Rotate returns the page rotation normalised to 0, 90, 180 or 270.
func (p *Page) Rotate() int {
	r, ok := p.attr("Rotate").(core.Int)
	if !ok {
		return 0
	}
	deg := int(r) % 360
	if deg < 0 {
		deg += 360
	}
	return deg - deg%90
}

// Width returns the page width (from MediaBox)
func (p *Page) Width() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[2] - box[0], nil
}

// Height returns the page height (from MediaBox)
func (p *Page) Height() (float64, error) {
	box, err := p.MediaBox()
	if err != nil {
		return 0, err
	}
	return box[3] - box[1], nil
}
