package pdftranslate

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal problem met during extraction. Page is 1-based.
// Image is the XObject name for image failures and empty for text
// failures.
type Warning struct {
	Page  int
	Image string
	Err   error
}

func (w Warning) Error() string {
	if w.Image == "" {
		return fmt.Sprintf("page %d: %v", w.Page, w.Err)
	}
	return fmt.Sprintf("page %d image %s: %v", w.Page, w.Image, w.Err)
}

// Unwrap returns the underlying error, so errors.As reaches the typed
// kind through a Warning.
func (w Warning) Unwrap() error {
	return w.Err
}

// FormatWarnings joins warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.Error()
	}
	return strings.Join(lines, "\n")
}
