// Package chunk splits annotated document text into page-aligned windows
// for translation. Page boundary lines and image markers are kept
// verbatim so the translated chunks can be joined and parsed again.
package chunk

import (
	"errors"
	"strings"

	"github.com/tsawler/pdftranslate/model"
)

// DefaultPagesPerChunk is the window size used by the command and server.
const DefaultPagesPerChunk = 10

// ErrInvalidSize is returned for a non-positive window size.
var ErrInvalidSize = errors.New("pages per chunk must be positive")

// Chunk is a run of consecutive page blocks.
type Chunk struct {
	// Index is the 0-based position of the chunk.
	Index int
	// FirstPage and LastPage are the page numbers of the first and last
	// block. Both are 0 for text with no page markers.
	FirstPage int
	LastPage  int
	// Pages is the number of page blocks in the chunk.
	Pages int
	Text  string
}

// Empty reports whether the chunk has nothing to translate.
func (c Chunk) Empty() bool {
	return strings.TrimSpace(c.Text) == ""
}

// Split groups the page blocks of text into chunks of at most
// pagesPerChunk pages. Text before the first page marker joins the first
// chunk.
func Split(text model.AnnotatedText, pagesPerChunk int) ([]Chunk, error) {
	if pagesPerChunk <= 0 {
		return nil, ErrInvalidSize
	}

	var (
		chunks []Chunk
		cur    Chunk
		sb     strings.Builder
	)
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		cur.Index = len(chunks)
		cur.Text = sb.String()
		chunks = append(chunks, cur)
		cur = Chunk{}
		sb.Reset()
	}

	for _, b := range text.Blocks() {
		if b.Page == 0 {
			writeLines(&sb, b.Lines)
			continue
		}
		if cur.Pages == pagesPerChunk {
			flush()
		}
		if cur.Pages == 0 {
			cur.FirstPage = b.Page
		}
		cur.LastPage = b.Page
		cur.Pages++

		sb.WriteString(model.PageMarker(b.Page))
		sb.WriteByte('\n')
		writeLines(&sb, b.Lines)
	}
	flush()
	return chunks, nil
}

func writeLines(sb *strings.Builder, lines []string) {
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}

// Join concatenates translated chunk texts in order, one newline after
// each, trimming what the translator added around them.
func Join(parts []string) model.AnnotatedText {
	var sb strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sb.WriteString(p)
		sb.WriteByte('\n')
	}
	return model.AnnotatedText(sb.String())
}
