package reader

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/tsawler/pdftranslate/core"
	"github.com/tsawler/pdftranslate/pages"
)

// headerWindow is how far into the file the %PDF- header may start.
// Some producers prepend junk.
const headerWindow = 1024

// maxRefChain bounds chains of references that point at references.
const maxRefChain = 32

var versionRe = regexp.MustCompile(`%PDF-(\d+)\.(\d+)`)

// PDFVersion represents a PDF version
type PDFVersion struct {
	Major int
	Minor int
}

// String returns the version as a string (e.g., "1.7")
func (v PDFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Reader gives access to the objects and pages of an in-memory PDF. A
// Reader is not safe for concurrent use.
type Reader struct {
	data    []byte
	xref    *core.XRefTable
	trailer core.Dict
	version PDFVersion
	rebuilt bool

	objCache   map[int]core.Object
	objStreams map[int]*core.ObjectStream
	loading    map[int]bool

	pages []*pages.Page
}

var (
	_ pages.ObjectResolver   = (*Reader)(nil)
	_ core.ReferenceResolver = (*Reader)(nil)
)

// Open reads the file at path and loads it.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(data)
}

// Load parses data as a PDF. The header, cross-reference data, catalog and
// page tree are read eagerly; any failure there is a
// *MalformedDocumentError. Damaged cross-reference data is repaired by a
// scan of the file before giving up.
func Load(data []byte) (*Reader, error) {
	version, err := parseHeader(data)
	if err != nil {
		return nil, malformed("header", err)
	}

	xref, err := core.LoadXRef(data)
	if err != nil {
		return nil, malformed("xref", err)
	}

	r := &Reader{
		data:    data,
		version: version,
	}
	r.setXRef(xref)

	if r.trailer.Has("Encrypt") {
		return nil, malformed("trailer", ErrEncrypted)
	}

	if err := r.loadPages(); err != nil {
		if r.rebuilt || !r.rebuild() {
			return nil, malformed("page tree", err)
		}
		if err := r.loadPages(); err != nil {
			return nil, malformed("page tree", err)
		}
	}
	return r, nil
}

func parseHeader(data []byte) (PDFVersion, error) {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	m := versionRe.FindSubmatch(window)
	if m == nil {
		return PDFVersion{}, ErrNoHeader
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	return PDFVersion{Major: major, Minor: minor}, nil
}

func (r *Reader) setXRef(xref *core.XRefTable) {
	r.xref = xref
	r.trailer = xref.Trailer
	r.objCache = make(map[int]core.Object)
	r.objStreams = make(map[int]*core.ObjectStream)
	r.loading = make(map[int]bool)
}

// rebuild replaces the cross-reference data with a repair scan. It runs
// at most once per Reader.
func (r *Reader) rebuild() bool {
	if r.rebuilt {
		return false
	}
	r.rebuilt = true
	xref, err := core.RebuildXRef(r.data)
	if err != nil {
		return false
	}
	r.setXRef(xref)
	return true
}

func (r *Reader) loadPages() error {
	catalog, err := r.GetCatalog()
	if err != nil {
		return err
	}
	root, err := pages.NewCatalog(catalog, r).Pages()
	if err != nil {
		return err
	}
	list, err := pages.NewPageTree(root, r).Pages()
	if err != nil {
		return err
	}
	r.pages = list
	return nil
}

// Version returns the PDF version
func (r *Reader) Version() PDFVersion {
	return r.version
}

// Trailer returns the trailer dictionary
func (r *Reader) Trailer() core.Dict {
	return r.trailer
}

// Rebuilt reports whether the cross-reference data had to be recovered by
// scanning the file.
func (r *Reader) Rebuilt() bool {
	return r.rebuilt
}

// GetCatalog returns the document catalog (root object)
func (r *Reader) GetCatalog() (core.Dict, error) {
	rootObj := r.trailer.Get("Root")
	if rootObj == nil {
		return nil, ErrNoCatalog
	}
	obj, err := r.Resolve(rootObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog: %w", err)
	}
	catalog, ok := obj.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("%w: /Root is %s", ErrNoCatalog, obj.Type())
	}
	return catalog, nil
}

// GetObject loads an object by number. Objects missing from the
// cross-reference data, or marked free, resolve to null.
func (r *Reader) GetObject(objNum int) (core.Object, error) {
	if obj, ok := r.objCache[objNum]; ok {
		return obj, nil
	}
	if r.loading[objNum] {
		return nil, fmt.Errorf("reference cycle at object %d", objNum)
	}
	r.loading[objNum] = true
	defer delete(r.loading, objNum)

	obj, err := r.loadObject(objNum)
	if err != nil && r.rebuild() {
		obj, err = r.loadObject(objNum)
	}
	if err != nil {
		return nil, err
	}
	r.objCache[objNum] = obj
	return obj, nil
}

func (r *Reader) loadObject(objNum int) (core.Object, error) {
	entry, ok := r.xref.Get(objNum)
	if !ok {
		return core.Null{}, nil
	}

	switch entry.Type {
	case core.XRefFree:
		return core.Null{}, nil
	case core.XRefCompressed:
		stm, err := r.objectStream(entry.StreamNumber)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", objNum, err)
		}
		return stm.Object(objNum, entry.StreamIndex)
	}

	if entry.Offset < 0 || entry.Offset >= int64(len(r.data)) {
		return nil, fmt.Errorf("object %d offset %d out of range", objNum, entry.Offset)
	}
	p := core.NewParserAt(r.data, int(entry.Offset))
	p.SetReferenceResolver(r)
	ind, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse object %d: %w", objNum, err)
	}
	if ind.Ref.Number != objNum {
		return nil, fmt.Errorf("object number mismatch: expected %d, got %d", objNum, ind.Ref.Number)
	}
	return ind.Object, nil
}

func (r *Reader) objectStream(num int) (*core.ObjectStream, error) {
	if stm, ok := r.objStreams[num]; ok {
		return stm, nil
	}
	obj, err := r.GetObject(num)
	if err != nil {
		return nil, err
	}
	stream, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is %s", num, obj.Type())
	}
	stm, err := core.NewObjectStream(stream)
	if err != nil {
		return nil, fmt.Errorf("object stream %d: %w", num, err)
	}
	r.objStreams[num] = stm
	return stm, nil
}

// ResolveReference resolves an indirect reference
func (r *Reader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	return r.GetObject(ref.Number)
}

// Resolve dereferences obj until it is a direct object. Direct objects
// and nil are returned as is.
func (r *Reader) Resolve(obj core.Object) (core.Object, error) {
	for i := 0; i < maxRefChain; i++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		var err error
		if obj, err = r.ResolveReference(ref); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("reference chain longer than %d", maxRefChain)
}

// resolveDict resolves obj and returns it when it is a dictionary.
func (r *Reader) resolveDict(obj core.Object) (core.Dict, bool) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, false
	}
	d, ok := resolved.(core.Dict)
	return d, ok
}

// PageCount returns the number of pages in the PDF
func (r *Reader) PageCount() int {
	return len(r.pages)
}

// Pages returns all pages in document order.
func (r *Reader) Pages() []*pages.Page {
	return r.pages
}

// GetPage returns the page at the given index (0-based)
func (r *Reader) GetPage(index int) (*pages.Page, error) {
	if index < 0 || index >= len(r.pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(r.pages))
	}
	return r.pages[index], nil
}
