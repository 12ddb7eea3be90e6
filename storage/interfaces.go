package storage

import (
	"context"

	"github.com/poiesic/reviewvec/core"
)

// Sink persists enriched records into a named table.
type Sink interface {
	// Upsert writes records into table, replacing rows with the same key.
	// A single call is one write request; it either succeeds or returns an
	// error describing the failure.
	Upsert(ctx context.Context, table string, records []*core.EnrichedRecord) error

	// Close releases the connection held by the sink.
	Close() error
}

// Counter is implemented by sinks that can report the number of rows in a table.
type Counter interface {
	Count(ctx context.Context, table string) (int, error)
}
