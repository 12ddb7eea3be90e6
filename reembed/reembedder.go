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

package reembed

import (
	"context"
	"log/slog"

	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/ingestion"
)

// Result is the outcome of a repair pass.
type Result struct {
	// Records is the full record set in input order, with repaired rows replaced.
	Records []*core.EnrichedRecord

	// Repaired holds only the records that gained a vector in this pass.
	Repaired []*core.EnrichedRecord

	// Attempted is the number of rows that were missing before the pass.
	Attempted int

	// StillMissing lists the rows that are missing after the pass.
	StillMissing []int
}

// Reembedder re-embeds the rows of a snapshot that have no vector.
type Reembedder struct {
	pipeline *ingestion.Pipeline
	combiner core.Combiner
	logger   *slog.Logger
}

// Option configures a Reembedder.
type Option func(*Reembedder)

// WithCombiner sets how review text is rebuilt before embedding. It must
// match the combiner of the original run for the vectors to be comparable.
func WithCombiner(c core.Combiner) Option {
	return func(r *Reembedder) {
		r.combiner = c
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reembedder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReembedder creates a reembedder. The caller owns the pipeline and must
// release it.
func NewReembedder(pipeline *ingestion.Pipeline, opts ...Option) (*Reembedder, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	r := &Reembedder{
		pipeline: pipeline,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "reembedder")
	return r, nil
}

// MissingRows returns the rows of records whose embedding is missing.
func MissingRows(records []*core.EnrichedRecord) []int {
	var rows []int
	for _, rec := range records {
		if !rec.HasVector() {
			rows = append(rows, rec.Row())
		}
	}
	return rows
}

// Run embeds every record that has no vector. The input slice is not
// modified; the returned Result carries a new slice.
func (r *Reembedder) Run(ctx context.Context, records []*core.EnrichedRecord) *Result {
	out := make([]*core.EnrichedRecord, len(records))
	copy(out, records)

	var positions []int
	for i, rec := range records {
		if !rec.HasVector() {
			positions = append(positions, i)
		}
	}
	result := &Result{Records: out, Attempted: len(positions)}
	if len(positions) == 0 {
		r.logger.Info("no missing embeddings", "rows", len(records))
		return result
	}

	texts := make([]string, len(positions))
	rows := make([]int, len(positions))
	for i, pos := range positions {
		review := records[pos].Review()
		texts[i] = r.combiner.Combine(&review)
		rows[i] = review.Row
	}

	r.logger.Info("re-embedding missing rows", "missing", len(positions), "rows", len(records))
	embeddings := r.pipeline.EmbedRows(ctx, rows, texts)

	for i, pos := range positions {
		rec := core.NewEnrichedRecord(records[pos].Review(), embeddings[i])
		out[pos] = rec
		if rec.HasVector() {
			result.Repaired = append(result.Repaired, rec)
			continue
		}
		result.StillMissing = append(result.StillMissing, rec.Row())
	}

	r.logger.Info("re-embedding finished",
		"repaired", len(result.Repaired),
		"still_missing", len(result.StillMissing))
	return result
}
