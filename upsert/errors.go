package upsert

import (
	"errors"
	"fmt"
)

var (
	// ErrSinkRequired is returned when no sink is provided.
	ErrSinkRequired = errors.New("sink required")

	// ErrInvalidBatchSize is returned for a batch size below one.
	ErrInvalidBatchSize = errors.New("batch size must be positive")

	// ErrInvalidMaxAttempts is returned when maxAttempts is negative.
	ErrInvalidMaxAttempts = errors.New("maxAttempts cannot be negative")

	// ErrSkipped marks chunks that were never sent because the run stopped.
	ErrSkipped = errors.New("chunk not sent")
)

// ChunkError reports a chunk whose upsert failed.
type ChunkError struct {
	Span
	Table string
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("upsert %s: %s (records %d-%d): %v", e.Table, e.Span, e.Start, e.End-1, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
