// Package text extracts readable text from PDF content streams.
//
// An [Extractor] runs the text operators of a content stream against a
// graphics state and records positioned [TextFragment] values:
//
//	ex := text.NewExtractor(resolver)
//	ex.RegisterFontsFromResources(resources)
//	fragments, err := ex.ExtractFromBytes(content)
//	pageText := ex.GetText()
//
// Glyph advances come from the font's widths, so consecutive strings and
// TJ kerning land where the producer placed them.
//
// # Reading Order
//
// GetText groups fragments into lines by baseline, orders each line by
// its dominant [Direction] and inserts spaces where the gap between
// fragments looks like a word break. Producers that position every glyph
// separately are detected per line and judged against the line's own gap
// distribution.
//
// # XObjects
//
// Do operators are recorded in order of first use (see
// [Extractor.XObjectNames]). With a [FormLookup] installed the extractor
// also descends into form XObjects to collect their text.
package text
