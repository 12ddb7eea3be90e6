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

package reviewvec

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/reviewvec/ai"
	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/csvio"
	"github.com/poiesic/reviewvec/ingestion"
	"github.com/poiesic/reviewvec/reembed"
	"github.com/poiesic/reviewvec/storage"
	"github.com/poiesic/reviewvec/upsert"
)

// RunConfig describes one run over an input file.
type RunConfig struct {
	// InputPath is the review table to load. Unused by RetryMissing.
	InputPath string

	// SnapshotPath receives the enriched table before anything is sent to
	// the sink. RetryMissing reads and rewrites it.
	SnapshotPath string

	// Table is the sink table. Empty means upsert.DefaultTable.
	Table string

	// BatchSize is the number of records per upsert call.
	BatchSize int

	ContinueOnError bool
	MaxAttempts     int
	RetryDelay      time.Duration

	// IncludeTitle adds the review title to the embedded text.
	IncludeTitle bool
}

func (c RunConfig) writerConfig() upsert.Config {
	batch := c.BatchSize
	if batch == 0 {
		batch = upsert.DefaultBatchSize
	}
	return upsert.Config{
		Table:           c.Table,
		BatchSize:       batch,
		ContinueOnError: c.ContinueOnError,
		MaxAttempts:     c.MaxAttempts,
		RetryDelay:      c.RetryDelay,
	}
}

// Runner sequences load, embed, snapshot and write for a review table.
type Runner struct {
	embedder     ai.Embedder
	sink         storage.Sink
	pipelineOpts []ingestion.Option
	logger       *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPipelineOptions passes options to the embedding pipeline of every run,
// for example ingestion.WithPoolSize or ingestion.WithRateLimit.
func WithPipelineOptions(opts ...ingestion.Option) Option {
	return func(r *Runner) {
		r.pipelineOpts = append(r.pipelineOpts, opts...)
	}
}

// NewRunner creates a runner. The caller keeps ownership of embedder and sink.
func NewRunner(embedder ai.Embedder, sink storage.Sink, opts ...Option) (*Runner, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}
	r := &Runner{
		embedder: embedder,
		sink:     sink,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) newPipeline() (*ingestion.Pipeline, error) {
	opts := append([]ingestion.Option{ingestion.WithLogger(r.logger)}, r.pipelineOpts...)
	return ingestion.NewPipeline(r.embedder, opts...)
}

func (r *Runner) newWriter(cfg RunConfig) (*upsert.Writer, error) {
	return upsert.NewWriter(r.sink, cfg.writerConfig(), upsert.WithLogger(r.logger))
}

// Run loads the input, embeds every review, writes the snapshot and upserts
// the enriched records.
//
// Configuration problems are returned before the input is read. A failure of
// a stage is returned as a *StageError. Rows whose embedding failed do not
// fail the run; they are listed in Summary.MissingRows. When the write stage
// fails the Summary is still returned with the batch outcomes.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*Summary, error) {
	start := time.Now()
	if cfg.InputPath == "" {
		return nil, ErrInputRequired
	}
	if cfg.SnapshotPath == "" {
		return nil, ErrSnapshotRequired
	}
	writer, err := r.newWriter(cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.newPipeline()
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	reviews, err := csvio.LoadReviews(cfg.InputPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	r.logger.Info("loaded reviews", "path", cfg.InputPath, "rows", len(reviews))

	texts := core.Combiner{IncludeTitle: cfg.IncludeTitle}.CombineAll(reviews)
	embeddings := pipeline.EmbedAll(ctx, texts)

	records := make([]*core.EnrichedRecord, len(reviews))
	for i := range reviews {
		records[i] = core.NewEnrichedRecord(reviews[i], embeddings[i])
	}

	summary := &Summary{
		Rows:         len(records),
		MissingRows:  reembed.MissingRows(records),
		SnapshotPath: cfg.SnapshotPath,
	}
	if len(summary.MissingRows) > 0 {
		r.logger.Warn("rows without embedding", "count", len(summary.MissingRows), "rows", summary.MissingRows)
	}

	if err := csvio.WriteSnapshot(cfg.SnapshotPath, records); err != nil {
		summary.Duration = time.Since(start)
		return summary, &StageError{Stage: StageSnapshot, Err: err}
	}
	r.logger.Info("snapshot written", "path", cfg.SnapshotPath)

	report, err := writer.WriteAll(ctx, records)
	summary.setReport(report)
	summary.Duration = time.Since(start)
	if err != nil {
		return summary, &StageError{Stage: StageWrite, Err: err}
	}
	r.logger.Info("run finished", "rows", summary.Rows, "missing", len(summary.MissingRows),
		"batches", summary.BatchesWritten, "duration", summary.Duration)
	return summary, nil
}

// RetryMissing re-embeds the rows of a snapshot that have no vector, rewrites
// the snapshot, and upserts only the rows that were repaired.
func (r *Runner) RetryMissing(ctx context.Context, cfg RunConfig) (*Summary, error) {
	start := time.Now()
	if cfg.SnapshotPath == "" {
		return nil, ErrSnapshotRequired
	}
	writer, err := r.newWriter(cfg)
	if err != nil {
		return nil, err
	}
	pipeline, err := r.newPipeline()
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	reembedder, err := reembed.NewReembedder(pipeline,
		reembed.WithCombiner(core.Combiner{IncludeTitle: cfg.IncludeTitle}),
		reembed.WithLogger(r.logger))
	if err != nil {
		return nil, err
	}

	records, err := csvio.ReadSnapshot(cfg.SnapshotPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	result := reembedder.Run(ctx, records)
	summary := &Summary{
		Rows:         len(result.Records),
		MissingRows:  result.StillMissing,
		Repaired:     len(result.Repaired),
		SnapshotPath: cfg.SnapshotPath,
	}

	if result.Attempted > 0 {
		if err := csvio.WriteSnapshot(cfg.SnapshotPath, result.Records); err != nil {
			summary.Duration = time.Since(start)
			return summary, &StageError{Stage: StageSnapshot, Err: err}
		}
	}

	report, err := writer.WriteAll(ctx, result.Repaired)
	summary.setReport(report)
	summary.Duration = time.Since(start)
	if err != nil {
		return summary, &StageError{Stage: StageWrite, Err: err}
	}
	return summary, nil
}
