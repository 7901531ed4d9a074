package model

import "fmt"

// OutputFormat is the container of a recovered image.
type OutputFormat int

const (
	FormatPNG OutputFormat = iota + 1
	FormatJPEG
	FormatJPEG2000
)

// String returns the short tag used in file names: png, jpg or jp2.
func (f OutputFormat) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpg"
	case FormatJPEG2000:
		return "jp2"
	default:
		return fmt.Sprintf("OutputFormat(%d)", int(f))
	}
}

// MIMEType returns the media type for HTTP responses.
func (f OutputFormat) MIMEType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatJPEG2000:
		return "image/jp2"
	default:
		return "application/octet-stream"
	}
}

// ExtractedImage is one successfully recovered image.
type ExtractedImage struct {
	// Page is the 1-based page the image was found on.
	Page int
	// Index is the encounter order of the image among the page's images,
	// counting those that failed to decode.
	Index int
	// Name is the XObject resource name, without the slash.
	Name   string
	Format OutputFormat
	Width  int
	Height int
	Data   []byte
}

// FileName returns a stable name such as "page2_img1.png".
func (img ExtractedImage) FileName() string {
	return fmt.Sprintf("page%d_img%d.%s", img.Page, img.Index+1, img.Format)
}

// ImageInventory holds extracted images ordered by page, then by encounter
// order within the page.
type ImageInventory []ExtractedImage

// ForPage returns the images of one page in encounter order.
func (inv ImageInventory) ForPage(page int) []ExtractedImage {
	var out []ExtractedImage
	for _, img := range inv {
		if img.Page == page {
			out = append(out, img)
		}
	}
	return out
}

// Pages returns the distinct page numbers that have images, ascending.
func (inv ImageInventory) Pages() []int {
	var pages []int
	for _, img := range inv {
		if len(pages) == 0 || pages[len(pages)-1] != img.Page {
			pages = append(pages, img.Page)
		}
	}
	return pages
}
