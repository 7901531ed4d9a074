package reader

import (
	"fmt"
	"sort"

	"github.com/tsawler/pdftranslate/core"
	"github.com/tsawler/pdftranslate/imagestream"
	"github.com/tsawler/pdftranslate/pages"
)

// PageImage is one image XObject found on a page. Err is set when the
// stream dictionary is too broken to describe the image; Object is then
// only partly filled.
type PageImage struct {
	Object imagestream.ImageObject
	Err    error
}

// PageImages lists the image XObjects in the page's /Resources /XObject
// dictionary. Names in order, typically the Do sequence from
// ExtractText, come first; the remaining images follow in natural name
// order. Each image appears once.
func (r *Reader) PageImages(page *pages.Page, order []string) ([]PageImage, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, err
	}
	xobjects, ok := r.resolveDict(resources.Get("XObject"))
	if !ok {
		return nil, nil
	}

	var out []PageImage
	seen := make(map[string]bool)
	add := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		obj, err := r.Resolve(xobjects.Get(name))
		if err != nil {
			return
		}
		stream, ok := obj.(*core.Stream)
		if !ok {
			return
		}
		st, err := r.Resolve(stream.Dict.Get("Subtype"))
		if err != nil || st != core.Name("Image") {
			return
		}
		img := r.imageObject(resources, stream)
		img.Object.Page = page.Number()
		img.Object.Name = name
		img.Object.Index = len(out)
		out = append(out, img)
	}

	for _, name := range order {
		if xobjects.Has(name) {
			add(name)
		}
	}
	rest := xobjects.Keys()
	sort.SliceStable(rest, func(i, j int) bool { return naturalLess(rest[i], rest[j]) })
	for _, name := range rest {
		add(name)
	}
	return out, nil
}

// imageObject reads the image dictionary with every entry dereferenced.
func (r *Reader) imageObject(resources core.Dict, stream *core.Stream) PageImage {
	d := stream.Dict
	obj := imagestream.ImageObject{Data: stream.Data}

	obj.Width = r.intEntry(d, "Width", 0)
	obj.Height = r.intEntry(d, "Height", 0)

	mask := false
	if v, err := r.Resolve(d.Get("ImageMask")); err == nil {
		mask = v == core.Bool(true)
	}
	defaultBPC := 8
	if mask {
		defaultBPC = 1
	}
	obj.BitsPerComponent = r.intEntry(d, "BitsPerComponent", defaultBPC)

	if mask {
		obj.ColorSpace = imagestream.ColorSpace{Mode: imagestream.ModeUnsupported, Name: "ImageMask"}
	} else {
		obj.ColorSpace = r.colorSpace(resources, d.Get("ColorSpace"))
	}

	filterObj, err := r.Resolve(d.Get("Filter"))
	if err != nil {
		return PageImage{Object: obj, Err: fmt.Errorf("resolve /Filter: %w", err)}
	}
	if arr, ok := filterObj.(core.Array); ok {
		filterObj = r.resolveArray(arr)
	}
	names, err := core.FilterNames(filterObj)
	if err != nil {
		return PageImage{Object: obj, Err: err}
	}
	obj.Filters = names

	parmsObj, _ := r.Resolve(d.Get("DecodeParms"))
	if parmsObj == nil {
		parmsObj, _ = r.Resolve(d.Get("DP"))
	}
	if arr, ok := parmsObj.(core.Array); ok {
		parmsObj = r.resolveArray(arr)
	}
	if len(names) > 0 {
		obj.DecodeParms = make([]map[string]any, len(names))
		for i, p := range core.DecodeParams(parmsObj, len(names)) {
			if p != nil {
				obj.DecodeParms[i] = r.resolveParams(p)
			}
		}
	}

	return PageImage{Object: obj}
}

// colorSpace classifies /ColorSpace. Array forms are named by their
// family, and names not built in are looked up in the page's
// /ColorSpace resources.
func (r *Reader) colorSpace(resources core.Dict, obj core.Object) imagestream.ColorSpace {
	for depth := 0; depth < 4; depth++ {
		resolved, err := r.Resolve(obj)
		if err != nil || resolved == nil {
			return imagestream.ColorSpace{}
		}
		switch v := resolved.(type) {
		case core.Name:
			cs := imagestream.ParseColorSpace(string(v))
			if cs.Mode != imagestream.ModeUnsupported {
				return cs
			}
			named, ok := r.resolveDict(resources.Get("ColorSpace"))
			if !ok || !named.Has(string(v)) {
				return cs
			}
			obj = named.Get(string(v))
		case core.Array:
			if len(v) == 0 {
				return imagestream.ColorSpace{}
			}
			family, err := r.Resolve(v[0])
			if err != nil {
				return imagestream.ColorSpace{}
			}
			if n, ok := family.(core.Name); ok {
				return imagestream.ParseColorSpace(string(n))
			}
			return imagestream.ColorSpace{Mode: imagestream.ModeUnsupported, Name: family.String()}
		case core.Null:
			return imagestream.ColorSpace{}
		default:
			return imagestream.ColorSpace{Mode: imagestream.ModeUnsupported, Name: resolved.String()}
		}
	}
	return imagestream.ColorSpace{}
}

func (r *Reader) intEntry(d core.Dict, key string, def int) int {
	v, err := r.Resolve(d.Get(key))
	if err != nil {
		return def
	}
	n, ok := core.Number(v)
	if !ok {
		return def
	}
	return int(n)
}

func (r *Reader) resolveArray(arr core.Array) core.Array {
	out := make(core.Array, len(arr))
	for i, item := range arr {
		v, err := r.Resolve(item)
		if err != nil {
			v = core.Null{}
		}
		out[i] = v
	}
	return out
}

// resolveParams dereferences parameter values that core.ParamsFromDict
// left as PDF objects.
func (r *Reader) resolveParams(p map[string]any) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		if ref, ok := v.(core.IndirectRef); ok {
			resolved, err := r.Resolve(ref)
			if err != nil {
				continue
			}
			v = core.ParamsFromDict(core.Dict{k: resolved})[k]
		}
		out[k] = v
	}
	return out
}

// naturalLess orders names so that digit runs compare by value: Im2
// sorts before Im10.
func naturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na, nb := trimZeros(a[si:i]), trimZeros(b[sj:j])
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(a)-i < len(b)-j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
