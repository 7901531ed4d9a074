package filters

import (
	"errors"
	"fmt"
)

// ErrLimitExceeded is returned when a decoded stream grows past
// Limits.MaxDecodedBytes.
var ErrLimitExceeded = errors.New("decoded size limit exceeded")

// UnsupportedFilterError reports a filter name with no decoder.
type UnsupportedFilterError struct {
	Name string
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("unsupported filter %q", e.Name)
}

// DecodeError reports a failure inside a known filter.
type DecodeError struct {
	Filter Kind
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filter, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
