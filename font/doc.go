// Package font decodes strings shown by PDF text operators.
//
// [Load] reads a font dictionary and returns a [Font] that splits byte
// strings into character codes, maps each code to Unicode and reports its
// advance width:
//
//	f, err := font.Load("F1", fontDict, resolver)
//	for _, g := range f.Decode(raw) {
//	    fmt.Print(g.Text)
//	}
//
// Text comes from the ToUnicode CMap when the font has one. Simple fonts
// fall back to their encoding: WinAnsi and MacRoman use the
// golang.org/x/text charmaps, StandardEncoding and PDFDocEncoding use
// built-in tables, and /Differences arrays are resolved through glyph
// names. Composite (Type0) fonts split codes by the codespace ranges of
// their CMap, or two bytes at a time for Identity encodings.
//
// Widths come from /Widths or /W, then from built-in metrics for the
// standard fonts, then from the default width.
package font
