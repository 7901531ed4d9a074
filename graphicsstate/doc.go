// Package graphicsstate tracks the parts of the PDF graphics state that
// text extraction depends on.
//
// The main type is GraphicsState, which holds the current transformation
// matrix, the text state and the q/Q save stack:
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()              // q
//	gs.Transform(matrix)   // cm
//	gs.SetFont("F1", 12)   // Tf
//	gs.Restore()           // Q
//
// # Text State
//
// TextState carries the font name and size (Tf), character and word
// spacing (Tc, Tw), horizontal scaling (Tz), leading (TL), rise (Ts) and
// the text and text line matrices (Tm, Td, TD, T*). Advance moves the text
// matrix after a glyph is shown, and Kern applies a TJ adjustment.
package graphicsstate
