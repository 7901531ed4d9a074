// Package pdftest builds small PDF files in memory for tests. Offsets in
// the cross-reference table are computed from the serialised objects, so
// fixtures stay valid as they are edited.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
)

// Builder accumulates numbered objects and serialises them with an xref
// table and trailer.
type Builder struct {
	objects []string
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Reserve allocates an object number to be filled in later with Set.
func (b *Builder) Reserve() int {
	b.objects = append(b.objects, "null")
	return len(b.objects)
}

// Add appends an object body and returns its number.
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.objects[num-1] = body
}

// AddStream appends a stream whose dictionary entries are given without
// the enclosing << >> and without /Length.
func (b *Builder) AddStream(dictEntries string, data []byte) int {
	return b.Add(StreamBody(dictEntries, data))
}

// StreamBody formats a stream object body.
func StreamBody(dictEntries string, data []byte) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dictEntries, len(data), data)
}

// Bytes serialises the file with a classic xref table. trailerExtra is
// appended inside the trailer dictionary.
func (b *Builder) Bytes(root int, trailerExtra string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R %s>>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, root, trailerExtra, xref)
	return buf.Bytes()
}

// Page describes one page for Document.
type Page struct {
	// Content is the uncompressed content stream. Empty means no /Contents.
	Content string
	// Resources is the body of the /Resources dictionary entries, for
	// example "/XObject << /Im1 7 0 R >>". It may reference objects added
	// to the builder beforehand.
	Resources string
}

// Document builds a catalog and flat page tree over pages. Objects the
// pages reference must already be in b.
func (b *Builder) Document(pages ...Page) []byte {
	catalog := b.Reserve()
	tree := b.Reserve()

	kids := make([]string, 0, len(pages))
	for _, pg := range pages {
		contents := ""
		if pg.Content != "" {
			cs := b.AddStream("", []byte(pg.Content))
			contents = fmt.Sprintf(" /Contents %d 0 R", cs)
		}
		n := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << %s >>%s >>", tree, pg.Resources, contents))
		kids = append(kids, fmt.Sprintf("%d 0 R", n))
	}

	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", tree))
	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	return b.Bytes(catalog, "")
}

// HelveticaFont is a font dictionary body usable in fixtures.
const HelveticaFont = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

// TextContent returns a content stream drawing each line with font /F1.
func TextContent(lines ...string) string {
	var sb strings.Builder
	sb.WriteString("BT /F1 12 Tf 72 720 Td 14 TL\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "(%s) Tj T*\n", l)
	}
	sb.WriteString("ET")
	return sb.String()
}

// Flate zlib-compresses data.
func Flate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write(data)
	w.Close()
	return buf.Bytes()
}

// ASCII85 encodes data with Adobe <~ ~> delimiters.
func ASCII85(data []byte) []byte {
	out := []byte("<~")
	for len(data) > 0 {
		var chunk [4]byte
		n := copy(chunk[:], data)
		data = data[n:]
		v := uint32(chunk[0])<<24 | uint32(chunk[1])<<16 | uint32(chunk[2])<<8 | uint32(chunk[3])
		if n == 4 && v == 0 {
			out = append(out, 'z')
			continue
		}
		var digits [5]byte
		for i := 4; i >= 0; i-- {
			digits[i] = byte(v%85) + '!'
			v /= 85
		}
		out = append(out, digits[:n+1]...)
	}
	return append(out, '~', '>')
}
