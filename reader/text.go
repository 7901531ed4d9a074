package reader

import (
	"fmt"

	"github.com/tsawler/pdftranslate/core"
	"github.com/tsawler/pdftranslate/model"
	"github.com/tsawler/pdftranslate/pages"
	"github.com/tsawler/pdftranslate/text"
)

// ExtractText returns the reading-order text of page and the XObject
// names its content invokes with Do, in order of first use. On a content
// stream error the text and names gathered before it are returned with the
// error.
func (r *Reader) ExtractText(page *pages.Page) (string, []string, error) {
	ex, err := r.runContent(page)
	if ex == nil {
		return "", nil, err
	}
	return ex.GetText(), ex.XObjectNames(), err
}

// ExtractTextFragments returns the positioned text fragments of page.
func (r *Reader) ExtractTextFragments(page *pages.Page) ([]text.TextFragment, error) {
	ex, err := r.runContent(page)
	if ex == nil {
		return nil, err
	}
	return ex.GetFragments(), err
}

func (r *Reader) runContent(page *pages.Page) (*text.Extractor, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, err
	}
	data, err := page.ContentData()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Number(), err)
	}

	ex := text.NewExtractor(r)
	_ = ex.RegisterFontsFromResources(resources)
	ex.SetFormLookup(r.lookupForm)

	if _, err := ex.ExtractFromBytes(data); err != nil {
		return ex, fmt.Errorf("page %d: %w", page.Number(), err)
	}
	return ex, nil
}

// lookupForm finds a form XObject by name in resources.
func (r *Reader) lookupForm(resources core.Dict, name string) (*text.Form, bool) {
	stream, ok := r.xobject(resources, name)
	if !ok {
		return nil, false
	}
	if st, _ := stream.Dict.GetName("Subtype"); st != "Form" {
		return nil, false
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, false
	}

	form := &text.Form{Content: data, Matrix: model.Identity()}
	if res, ok := r.resolveDict(stream.Dict.Get("Resources")); ok {
		form.Resources = res
	}
	if m, ok := r.matrix(stream.Dict.Get("Matrix")); ok {
		form.Matrix = m
	}
	return form, true
}

// xobject resolves resources /XObject /name to a stream.
func (r *Reader) xobject(resources core.Dict, name string) (*core.Stream, bool) {
	if resources == nil {
		return nil, false
	}
	xobjects, ok := r.resolveDict(resources.Get("XObject"))
	if !ok {
		return nil, false
	}
	obj, err := r.Resolve(xobjects.Get(name))
	if err != nil {
		return nil, false
	}
	stream, ok := obj.(*core.Stream)
	return stream, ok
}

func (r *Reader) matrix(obj core.Object) (model.Matrix, bool) {
	var m model.Matrix
	resolved, err := r.Resolve(obj)
	if err != nil {
		return m, false
	}
	arr, ok := resolved.(core.Array)
	if !ok || len(arr) != 6 {
		return m, false
	}
	for i, elem := range arr {
		elem, err := r.Resolve(elem)
		if err != nil {
			return m, false
		}
		v, ok := core.Number(elem)
		if !ok {
			return m, false
		}
		m[i] = v
	}
	return m, true
}
