package font

import "strings"

// Advance widths in 1000ths of an em for the printable ASCII range of the
// standard fonts. Bold and italic faces reuse the regular metrics.
var helveticaASCII = [95]uint16{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var timesASCII = [95]uint16{
	250, 333, 408, 500, 500, 833, 778, 180, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

// standardWidth returns the advance of r in a standard font, or 0 if the
// font is not one of the standard 14 or r is outside printable ASCII.
func standardWidth(baseFont string, r rune) float64 {
	if r < 32 || r > 126 {
		return 0
	}
	switch {
	case strings.HasPrefix(baseFont, "Courier"):
		return 600
	case strings.HasPrefix(baseFont, "Helvetica"), strings.HasPrefix(baseFont, "Arial"):
		return float64(helveticaASCII[r-32])
	case strings.HasPrefix(baseFont, "Times"):
		return float64(timesASCII[r-32])
	default:
		return 0
	}
}

// isStandardFont reports whether name is one of the standard 14 fonts.
func isStandardFont(name string) bool {
	switch name {
	case "Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
		"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
		"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
		"Symbol", "ZapfDingbats":
		return true
	}
	return false
}
