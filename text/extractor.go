package text

import (
	"fmt"

	"github.com/tsawler/pdftranslate/contentstream"
	"github.com/tsawler/pdftranslate/core"
	"github.com/tsawler/pdftranslate/font"
	"github.com/tsawler/pdftranslate/graphicsstate"
	"github.com/tsawler/pdftranslate/model"
)

// maxFormDepth bounds nesting of form XObjects, which may reference each
// other in a cycle.
const maxFormDepth = 8

// TextFragment represents a piece of extracted text with position
type TextFragment struct {
	Text      string
	X, Y      float64
	Width     float64
	Height    float64
	FontName  string
	FontSize  float64
	Direction Direction
}

// Form is a form XObject ready to be drawn: its content stream, its own
// resources and its /Matrix.
type Form struct {
	Content   []byte
	Resources core.Dict
	Matrix    model.Matrix
}

// FormLookup returns the form XObject named in the current resources,
// or false when the name is not a form.
type FormLookup func(resources core.Dict, name string) (*Form, bool)

// Extractor extracts text from content streams
type Extractor struct {
	gs       *graphicsstate.GraphicsState
	fonts    map[string]*font.Font
	resolver font.Resolver
	forms    FormLookup

	resources core.Dict
	depth     int

	fragments []TextFragment
	xobjects  []string
	seen      map[string]bool
}

// NewExtractor creates a new text extractor. resolver dereferences
// indirect font objects and may be nil for content that has none.
func NewExtractor(resolver font.Resolver) *Extractor {
	return &Extractor{
		gs:       graphicsstate.NewGraphicsState(),
		fonts:    make(map[string]*font.Font),
		resolver: resolver,
		seen:     make(map[string]bool),
	}
}

// SetFormLookup enables descent into form XObjects invoked with Do.
func (e *Extractor) SetFormLookup(lookup FormLookup) {
	e.forms = lookup
}

// RegisterFont registers a font under its resource name.
func (e *Extractor) RegisterFont(name string, f *font.Font) {
	e.fonts[name] = f
}

// RegisterFontsFromResources loads every entry of resources' /Font
// dictionary. Fonts that cannot be loaded are skipped; text shown with
// them falls back to a standard font.
func (e *Extractor) RegisterFontsFromResources(resources core.Dict) error {
	e.resources = resources
	obj, err := e.resolve(resources.Get("Font"))
	if err != nil {
		return fmt.Errorf("resolve font dictionary: %w", err)
	}
	fonts, ok := obj.(core.Dict)
	if !ok {
		return nil
	}

	for _, name := range fonts.Keys() {
		fobj, err := e.resolve(fonts[name])
		if err != nil {
			continue
		}
		dict, ok := fobj.(core.Dict)
		if !ok {
			continue
		}
		if f, err := font.Load(name, dict, e.resolver); err == nil {
			e.fonts[name] = f
		}
	}
	return nil
}

func (e *Extractor) resolve(obj core.Object) (core.Object, error) {
	if obj == nil || e.resolver == nil {
		return obj, nil
	}
	return e.resolver.Resolve(obj)
}

// Extract runs operations and returns the fragments produced so far.
func (e *Extractor) Extract(operations []contentstream.Operation) ([]TextFragment, error) {
	for _, op := range operations {
		e.processOperation(op)
	}
	return e.fragments, nil
}

// ExtractFromBytes parses and extracts text from raw content stream data.
// On a syntax error the operations before it are still applied and the
// error is returned alongside their fragments.
func (e *Extractor) ExtractFromBytes(data []byte) ([]TextFragment, error) {
	ops, perr := contentstream.NewParser(data).Parse()
	frags, _ := e.Extract(ops)
	if perr != nil {
		return frags, fmt.Errorf("parse content stream: %w", perr)
	}
	return frags, nil
}

// XObjectNames returns the page-level XObject names invoked with Do, in
// order of first invocation.
func (e *Extractor) XObjectNames() []string {
	return e.xobjects
}

// GetFragments returns all text fragments
func (e *Extractor) GetFragments() []TextFragment {
	return e.fragments
}

// processOperation applies one operator. Operators with the wrong operand
// count or types are ignored.
func (e *Extractor) processOperation(op contentstream.Operation) {
	args := op.Operands
	switch op.Operator {
	case "q":
		e.gs.Save()
	case "Q":
		// Unbalanced Q is common in producer output.
		_ = e.gs.Restore()
	case "cm":
		if m, ok := operandsToMatrix(args); ok {
			e.gs.Transform(m)
		}

	case "BT":
		e.gs.BeginText()
	case "Tf":
		if len(args) == 2 {
			name, ok := args[0].(core.Name)
			size, ok2 := toFloat(args[1])
			if ok && ok2 {
				e.gs.SetFont(string(name), size)
			}
		}
	case "Tc":
		if v, ok := singleFloat(args); ok {
			e.gs.SetCharSpacing(v)
		}
	case "Tw":
		if v, ok := singleFloat(args); ok {
			e.gs.SetWordSpacing(v)
		}
	case "Tz":
		if v, ok := singleFloat(args); ok {
			e.gs.SetHorizontalScaling(v)
		}
	case "TL":
		if v, ok := singleFloat(args); ok {
			e.gs.SetLeading(v)
		}
	case "Ts":
		if v, ok := singleFloat(args); ok {
			e.gs.SetTextRise(v)
		}

	case "Tm":
		if m, ok := operandsToMatrix(args); ok {
			e.gs.SetTextMatrix(m)
		}
	case "Td", "TD":
		if len(args) == 2 {
			tx, ok := toFloat(args[0])
			ty, ok2 := toFloat(args[1])
			if !ok || !ok2 {
				return
			}
			if op.Operator == "TD" {
				e.gs.TranslateTextSetLeading(tx, ty)
			} else {
				e.gs.TranslateText(tx, ty)
			}
		}
	case "T*":
		e.gs.NextLine()

	case "Tj":
		if len(args) == 1 {
			if s, ok := args[0].(core.String); ok {
				e.showText([]byte(s))
			}
		}
	case "TJ":
		if len(args) == 1 {
			if arr, ok := args[0].(core.Array); ok {
				e.showTextArray(arr)
			}
		}
	case "'":
		e.gs.NextLine()
		if len(args) == 1 {
			if s, ok := args[0].(core.String); ok {
				e.showText([]byte(s))
			}
		}
	case "\"":
		if len(args) == 3 {
			if aw, ok := toFloat(args[0]); ok {
				e.gs.SetWordSpacing(aw)
			}
			if ac, ok := toFloat(args[1]); ok {
				e.gs.SetCharSpacing(ac)
			}
			e.gs.NextLine()
			if s, ok := args[2].(core.String); ok {
				e.showText([]byte(s))
			}
		}

	case "Do":
		if len(args) == 1 {
			if name, ok := args[0].(core.Name); ok {
				e.invoke(string(name))
			}
		}
	}
}

// invoke records a page-level Do and descends into form XObjects.
func (e *Extractor) invoke(name string) {
	if e.depth == 0 && !e.seen[name] {
		e.seen[name] = true
		e.xobjects = append(e.xobjects, name)
	}
	if e.forms == nil || e.depth >= maxFormDepth {
		return
	}
	form, ok := e.forms(e.resources, name)
	if !ok {
		return
	}

	savedFonts, savedResources := e.fonts, e.resources
	e.fonts = make(map[string]*font.Font, len(savedFonts))
	for k, v := range savedFonts {
		e.fonts[k] = v
	}
	if form.Resources != nil {
		_ = e.RegisterFontsFromResources(form.Resources)
	}

	e.depth++
	e.gs.Save()
	e.gs.Transform(form.Matrix)
	ops, _ := contentstream.NewParser(form.Content).Parse()
	for _, op := range ops {
		e.processOperation(op)
	}
	_ = e.gs.Restore()
	e.depth--

	e.fonts, e.resources = savedFonts, savedResources
}

// currentFont returns the font selected by Tf, falling back to Helvetica
// for names missing from the resources.
func (e *Extractor) currentFont() *font.Font {
	name := e.gs.GetFontName()
	if f, ok := e.fonts[name]; ok {
		return f
	}
	f := font.NewFont(name, "Helvetica", "Type1")
	e.fonts[name] = f
	return f
}

// showText emits one fragment for a string operand and advances the text
// matrix glyph by glyph.
func (e *Extractor) showText(data []byte) {
	if len(data) == 0 {
		return
	}
	f := e.currentFont()
	x, y := e.gs.GetTextPosition()
	size := e.gs.GetEffectiveFontSize()

	advance := 0.0
	for _, g := range f.Decode(data) {
		advance += e.gs.Advance(g.Width, g.Space)
	}

	text := f.DecodeString(data)
	if text == "" {
		return
	}
	e.fragments = append(e.fragments, TextFragment{
		Text:      text,
		X:         x,
		Y:         y,
		Width:     e.gs.UserSpaceWidth(advance),
		Height:    size,
		FontName:  e.gs.GetFontName(),
		FontSize:  size,
		Direction: DetectDirection(text),
	})
}

// showTextArray processes a TJ array of strings and kerning numbers.
func (e *Extractor) showTextArray(arr core.Array) {
	for _, item := range arr {
		switch v := item.(type) {
		case core.String:
			e.showText([]byte(v))
		case core.Int, core.Real:
			adj, _ := toFloat(v)
			e.gs.Kern(adj)
		}
	}
}

func toFloat(obj core.Object) (float64, bool) {
	return core.Number(obj)
}

func singleFloat(args []core.Object) (float64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	return toFloat(args[0])
}

func operandsToMatrix(operands []core.Object) (model.Matrix, bool) {
	var m model.Matrix
	if len(operands) != 6 {
		return m, false
	}
	for i, op := range operands {
		v, ok := toFloat(op)
		if !ok {
			return m, false
		}
		m[i] = v
	}
	return m, true
}
