package translate

import (
	"context"
	"fmt"
)

// Translator translates one piece of text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Passthrough returns text unchanged.
type Passthrough struct{}

// Translate returns text.
func (Passthrough) Translate(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}

// Prompt returns the instruction sent with a chunk of text.
func Prompt(language, text string) string {
	return fmt.Sprintf("Translate the following text to %s. "+
		"Keep the formatting as close as possible to the original. "+
		"If you see '[Image present on page', just keep that note in the translation. "+
		"Keep every '--- Page N ---' line exactly as it is.\n\n%s", language, text)
}
