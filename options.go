package pdftranslate

import "github.com/rs/zerolog"

// ExtractOptions holds configuration for extraction.
type ExtractOptions struct {
	logger zerolog.Logger

	// Per-filter output cap; 0 selects the imagestream default.
	maxDecodedBytes int64

	// Skip image decoding; markers are still written.
	skipImages bool
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		logger: zerolog.Nop(),
	}
}

// clone copies the options. All fields are values.
func (o ExtractOptions) clone() ExtractOptions {
	return o
}
