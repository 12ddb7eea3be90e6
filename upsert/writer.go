// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package upsert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage"
)

const (
	// DefaultBatchSize is the number of records per upsert call.
	DefaultBatchSize = 100

	// DefaultTable is the destination table name.
	DefaultTable = "reviews"

	// DefaultRetryDelay is the first backoff delay when MaxAttempts > 1.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Config controls how records are chunked and written.
type Config struct {
	// Table is the sink table (or collection) name.
	Table string

	// BatchSize is the maximum number of records per upsert call.
	BatchSize int

	// ContinueOnError keeps sending later chunks after one fails.
	ContinueOnError bool

	// MaxAttempts is the number of tries per chunk. Zero means one.
	MaxAttempts int

	// RetryDelay is the base backoff between tries, doubled each time.
	RetryDelay time.Duration
}

// Status is the outcome of one chunk.
type Status int

const (
	StatusWritten Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// BatchResult records what happened to one chunk.
type BatchResult struct {
	Span
	Status   Status
	Attempts int
	Err      error
}

// Report lists the outcome of every chunk of a WriteAll call.
type Report struct {
	Table   string
	Batches []BatchResult

	records []*core.EnrichedRecord
}

// Written returns the number of records in successfully written chunks.
func (r *Report) Written() int {
	n := 0
	for _, b := range r.Batches {
		if b.Status == StatusWritten {
			n += b.Len()
		}
	}
	return n
}

// BatchesWritten returns the number of chunks that were written.
func (r *Report) BatchesWritten() int {
	n := 0
	for _, b := range r.Batches {
		if b.Status == StatusWritten {
			n++
		}
	}
	return n
}

// FailedBatches returns the chunks that failed or were never sent.
func (r *Report) FailedBatches() []BatchResult {
	var out []BatchResult
	for _, b := range r.Batches {
		if b.Status != StatusWritten {
			out = append(out, b)
		}
	}
	return out
}

// Failed returns the records of every chunk that was not written, in input
// order, ready to be passed to WriteAll again.
func (r *Report) Failed() []*core.EnrichedRecord {
	var out []*core.EnrichedRecord
	for _, b := range r.FailedBatches() {
		out = append(out, r.records[b.Start:b.End]...)
	}
	return out
}

// OK reports whether every chunk was written.
func (r *Report) OK() bool {
	return len(r.FailedBatches()) == 0
}

// Writer sends chunks to a sink sequentially.
type Writer struct {
	sink   storage.Sink
	cfg    Config
	logger *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWriter validates cfg and returns a Writer for sink. An empty table and
// zero retry settings take their defaults.
func NewWriter(sink storage.Sink, cfg Config, opts ...Option) (*Writer, error) {
	if sink == nil {
		return nil, ErrSinkRequired
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if err := storage.ValidateTable(cfg.Table); err != nil {
		return nil, err
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, cfg.BatchSize)
	}
	if cfg.MaxAttempts < 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	w := &Writer{
		sink:   sink,
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "upsert-writer", "table", cfg.Table)
	return w, nil
}

// Config returns the effective configuration.
func (w *Writer) Config() Config {
	return w.cfg
}

// WriteAll sends records in chunks of at most BatchSize, one call at a time.
//
// The returned Report always covers every chunk. The error is nil only when
// every chunk was written. Otherwise it is the *ChunkError of the failed
// chunk, or with ContinueOnError an errors.Join of every *ChunkError, plus
// the context error when the run was cancelled.
func (w *Writer) WriteAll(ctx context.Context, records []*core.EnrichedRecord) (*Report, error) {
	spans := Chunks(len(records), w.cfg.BatchSize)
	report := &Report{
		Table:   w.cfg.Table,
		Batches: make([]BatchResult, 0, len(spans)),
		records: records,
	}

	var errs []error
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			w.skip(report, spans[i:], err)
			errs = append(errs, fmt.Errorf("upsert stopped before %s: %w", span, err))
			break
		}

		chunk := records[span.Start:span.End]
		attempts, err := retryWithBackoff(ctx, w.logger, w.cfg.MaxAttempts, w.cfg.RetryDelay, func(ctx context.Context) error {
			return w.sink.Upsert(ctx, w.cfg.Table, chunk)
		})
		if err == nil {
			w.logger.Debug("chunk written", "chunk", span.Index, "start", span.Start, "end", span.End)
			report.Batches = append(report.Batches, BatchResult{Span: span, Status: StatusWritten, Attempts: attempts})
			continue
		}

		chunkErr := &ChunkError{Span: span, Table: w.cfg.Table, Err: err}
		w.logger.Error("chunk failed", "chunk", span.Index, "start", span.Start, "end", span.End, "attempts", attempts, "err", err)
		report.Batches = append(report.Batches, BatchResult{Span: span, Status: StatusFailed, Attempts: attempts, Err: err})
		errs = append(errs, chunkErr)

		if !w.cfg.ContinueOnError {
			w.skip(report, spans[i+1:], ErrSkipped)
			return report, chunkErr
		}
	}

	return report, errors.Join(errs...)
}

func (w *Writer) skip(report *Report, spans []Span, cause error) {
	if len(spans) == 0 {
		return
	}
	w.logger.Warn("chunks not sent", "first_chunk", spans[0].Index, "count", len(spans), "reason", cause)
	for _, span := range spans {
		report.Batches = append(report.Batches, BatchResult{Span: span, Status: StatusSkipped, Err: cause})
	}
}
