package csvio

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for a file without a header row.
	ErrEmptyInput = errors.New("input has no header row")

	// ErrNoKnownColumns is returned when the header names none of the review columns.
	ErrNoKnownColumns = errors.New("header contains no review columns")

	// ErrInvalidEmbedding is returned when a snapshot embedding cell is not a JSON number array.
	ErrInvalidEmbedding = errors.New("invalid embedding cell")
)

// LoadError reports why an input or snapshot file could not be read.
// Line is the 1-based CSV line, or zero when the whole file is affected.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	path := e.Path
	if path == "" {
		path = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("load %s line %d: %v", path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
