package graphicsstate

import (
	"errors"
	"math"

	"github.com/tsawler/pdftranslate/model"
)

// ErrStackUnderflow is returned by Restore when no state was saved.
var ErrStackUnderflow = errors.New("graphics state stack underflow")

// maxStackDepth bounds the q/Q stack. Content streams that nest deeper
// than this are malformed.
const maxStackDepth = 256

// GraphicsState represents the PDF graphics state
type GraphicsState struct {
	// Current Transformation Matrix
	CTM model.Matrix

	// Text state
	Text TextState

	stack []savedState
}

type savedState struct {
	ctm  model.Matrix
	text TextState
}

// TextState represents text-specific state
type TextState struct {
	FontName string
	FontSize float64

	CharSpacing float64
	WordSpacing float64

	// Horizontal scaling as a percentage.
	HorizontalScaling float64

	Leading float64
	Rise    float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// NewGraphicsState creates a new graphics state with default values
func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM: model.Identity(),
		Text: TextState{
			FontSize:          12.0,
			HorizontalScaling: 100.0,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Depth reports how many states are saved.
func (gs *GraphicsState) Depth() int {
	return len(gs.stack)
}

// Save pushes the current graphics state onto the stack (q operator).
// Saves beyond the depth limit are ignored.
func (gs *GraphicsState) Save() {
	if len(gs.stack) >= maxStackDepth {
		return
	}
	gs.stack = append(gs.stack, savedState{ctm: gs.CTM, text: gs.Text})
}

// Restore pops a graphics state from the stack (Q operator)
func (gs *GraphicsState) Restore() error {
	if len(gs.stack) == 0 {
		return ErrStackUnderflow
	}
	saved := gs.stack[len(gs.stack)-1]
	gs.stack = gs.stack[:len(gs.stack)-1]
	gs.CTM = saved.ctm
	gs.Text = saved.text
	return nil
}

// Transform concatenates m onto the CTM (cm operator)
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

// SetFont sets the current font (Tf operator)
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName = name
	gs.Text.FontSize = size
}

// SetCharSpacing sets character spacing (Tc operator)
func (gs *GraphicsState) SetCharSpacing(spacing float64) {
	gs.Text.CharSpacing = spacing
}

// SetWordSpacing sets word spacing (Tw operator)
func (gs *GraphicsState) SetWordSpacing(spacing float64) {
	gs.Text.WordSpacing = spacing
}

// SetHorizontalScaling sets horizontal scaling (Tz operator)
func (gs *GraphicsState) SetHorizontalScaling(scale float64) {
	gs.Text.HorizontalScaling = scale
}

// SetLeading sets text leading (TL operator)
func (gs *GraphicsState) SetLeading(leading float64) {
	gs.Text.Leading = leading
}

// SetTextRise sets text rise (Ts operator)
func (gs *GraphicsState) SetTextRise(rise float64) {
	gs.Text.Rise = rise
}

// BeginText resets the text matrices (BT operator)
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// SetTextMatrix sets the text matrix (Tm operator)
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix = m
	gs.Text.TextLineMatrix = m
}

// TranslateText starts a new line offset from the current one (Td operator)
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading translates text and sets leading (TD operator)
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.SetLeading(-ty)
	gs.TranslateText(tx, ty)
}

// NextLine moves to next line (T* operator)
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// Advance moves the text matrix past one glyph. width is the glyph
// advance in text space for a font size of 1; space reports whether word
// spacing applies. It returns the horizontal displacement in text space.
func (gs *GraphicsState) Advance(width float64, space bool) float64 {
	tx := width*gs.Text.FontSize + gs.Text.CharSpacing
	if space {
		tx += gs.Text.WordSpacing
	}
	tx *= gs.Text.HorizontalScaling / 100.0
	gs.shift(tx)
	return tx
}

// Kern applies a TJ array adjustment, given in thousandths of text space
// units. Positive values move left.
func (gs *GraphicsState) Kern(adjustment float64) float64 {
	tx := -adjustment / 1000.0 * gs.Text.FontSize * gs.Text.HorizontalScaling / 100.0
	gs.shift(tx)
	return tx
}

func (gs *GraphicsState) shift(tx float64) {
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// GetTextPosition returns the current text origin in device space,
// including the text rise.
func (gs *GraphicsState) GetTextPosition() (x, y float64) {
	p := gs.renderMatrix().Transform(model.Point{X: 0, Y: gs.Text.Rise})
	return p.X, p.Y
}

// UserSpaceWidth converts a horizontal text-space distance to device
// space units.
func (gs *GraphicsState) UserSpaceWidth(tx float64) float64 {
	m := gs.renderMatrix()
	return tx * math.Hypot(m[0], m[1])
}

// GetTextMatrix returns the current text matrix
func (gs *GraphicsState) GetTextMatrix() model.Matrix {
	return gs.Text.TextMatrix
}

// GetFontSize returns the current font size
func (gs *GraphicsState) GetFontSize() float64 {
	return gs.Text.FontSize
}

// GetEffectiveFontSize returns the font size in device space. Producers
// often set Tf to 1 and scale through the text matrix or the CTM.
func (gs *GraphicsState) GetEffectiveFontSize() float64 {
	m := gs.renderMatrix()
	return math.Abs(gs.Text.FontSize) * math.Hypot(m[2], m[3])
}

// GetFontName returns the current font name
func (gs *GraphicsState) GetFontName() string {
	return gs.Text.FontName
}

func (gs *GraphicsState) renderMatrix() model.Matrix {
	return gs.Text.TextMatrix.Multiply(gs.CTM)
}
