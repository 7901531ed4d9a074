package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoTextPlaceholder stands in for a page without a text layer.
const NoTextPlaceholder = "[No extractable text on this page]"

// AnnotatedText is the document text with a boundary marker before each
// page and an image-presence marker after pages that contain images.
type AnnotatedText string

// PageMarker returns the boundary line for page i (1-based).
func PageMarker(i int) string {
	return fmt.Sprintf("--- Page %d ---", i)
}

// ImageMarker returns the image-presence line for page i (1-based).
func ImageMarker(i int) string {
	return fmt.Sprintf("[Image present on page %d]", i)
}

var (
	pageMarkerRe  = regexp.MustCompile(`^\s*-{3}\s*Page\s+(\d+)\s*-{3}\s*$`)
	imageMarkerRe = regexp.MustCompile(`(?i)\[\s*Image present on page\s+(\d+)\s*\]`)
)

// ParsePageMarker reports whether line is a page boundary and which page it
// opens.
func ParsePageMarker(line string) (int, bool) {
	m := pageMarkerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// ParseImageMarker reports whether line carries an image-presence marker
// and for which page. Matching is case-insensitive since translated text
// may change letter case.
func ParseImageMarker(line string) (int, bool) {
	m := imageMarkerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// TextBuilder assembles AnnotatedText page by page.
type TextBuilder struct {
	sb    strings.Builder
	pages int
}

// AddPage appends page i's block. Empty or whitespace-only text is
// replaced by NoTextPlaceholder.
func (b *TextBuilder) AddPage(i int, text string, imageDetected bool) {
	text = strings.TrimRight(text, " \t\r\n\f")
	if strings.TrimSpace(text) == "" {
		text = NoTextPlaceholder
	}
	b.sb.WriteString(PageMarker(i))
	b.sb.WriteByte('\n')
	b.sb.WriteString(text)
	b.sb.WriteByte('\n')
	if imageDetected {
		b.sb.WriteString(ImageMarker(i))
		b.sb.WriteByte('\n')
	}
	b.pages++
}

// Pages returns the number of pages added.
func (b *TextBuilder) Pages() int { return b.pages }

// Text returns the accumulated text.
func (b *TextBuilder) Text() AnnotatedText {
	return AnnotatedText(b.sb.String())
}

// Block is the text of one page as found between boundary markers.
type Block struct {
	// Page is the number from the boundary marker, or 0 for text that
	// precedes the first marker.
	Page  int
	Lines []string
}

// Text joins the block's lines.
func (b Block) Text() string {
	return strings.Join(b.Lines, "\n")
}

// Blocks splits the text at boundary markers. Leading text before the
// first marker is kept as a block with Page 0 unless it is blank.
func (t AnnotatedText) Blocks() []Block {
	var blocks []Block
	cur := Block{}
	started := false

	flush := func() {
		for len(cur.Lines) > 0 && strings.TrimSpace(cur.Lines[len(cur.Lines)-1]) == "" {
			cur.Lines = cur.Lines[:len(cur.Lines)-1]
		}
		if started || len(cur.Lines) > 0 {
			blocks = append(blocks, cur)
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(string(t), "\r\n", "\n"), "\n") {
		if n, ok := ParsePageMarker(line); ok {
			flush()
			cur = Block{Page: n}
			started = true
			continue
		}
		if !started && strings.TrimSpace(line) == "" && len(cur.Lines) == 0 {
			continue
		}
		cur.Lines = append(cur.Lines, line)
	}
	flush()
	return blocks
}

// PageCount returns the number of boundary markers.
func (t AnnotatedText) PageCount() int {
	n := 0
	for _, b := range t.Blocks() {
		if b.Page > 0 {
			n++
		}
	}
	return n
}
