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

package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/reviewvec/ai"
	"github.com/poiesic/reviewvec/core"
	"golang.org/x/time/rate"
)

// Pipeline embeds texts concurrently with a bounded number of in-flight calls.
type Pipeline struct {
	embedder         ai.Embedder
	pool             *ants.Pool
	limiter          *rate.Limiter
	normalize        bool
	progressWriter   io.Writer
	progressInterval int
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the maximum number of concurrent embedding calls.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRateLimit caps embedding calls at rps requests per second across all
// workers. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(p *Pipeline) error {
		if rps < 0 {
			return ErrInvalidRateLimit
		}
		if rps == 0 {
			p.limiter = nil
			return nil
		}
		p.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		return nil
	}
}

// WithProgress reports progress to w every interval completed texts.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		if interval < 1 {
			interval = 1
		}
		p.progressWriter = w
		p.progressInterval = interval
		return nil
	}
}

// WithNormalize scales every returned vector to unit length.
func WithNormalize(normalize bool) Option {
	return func(p *Pipeline) error {
		p.normalize = normalize
		return nil
	}
}

// NewPipeline creates a pipeline that embeds through embedder.
func NewPipeline(embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		embedder: embedder,
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "embedding-pipeline")

	return p, nil
}

// PoolSize returns the maximum number of concurrent embedding calls.
func (p *Pipeline) PoolSize() int {
	return p.pool.Cap()
}

// EmbedAll embeds every text and returns one result per text, in input order.
// Failed calls, cancelled calls and texts that could not be submitted are
// returned as missing embeddings carrying the failure reason.
func (p *Pipeline) EmbedAll(ctx context.Context, texts []string) []core.Embedding {
	return p.EmbedRows(ctx, nil, texts)
}

// EmbedRows is EmbedAll with rows[i] used as the row label of texts[i] in log
// output. Texts without a label are logged by their index.
func (p *Pipeline) EmbedRows(ctx context.Context, rows []int, texts []string) []core.Embedding {
	slots := make([]core.Embedding, len(texts))
	if len(texts) == 0 {
		return slots
	}
	label := func(i int) int {
		if i < len(rows) {
			return rows[i]
		}
		return i
	}

	start := time.Now()
	var progress *ProgressTracker
	if p.progressWriter != nil {
		progress = NewProgressTracker(p.progressWriter, len(texts), p.progressInterval)
		progress.Start()
	}

	var wg sync.WaitGroup
	for i := range texts {
		if err := ctx.Err(); err != nil {
			p.markRemaining(slots, i, label(i), err.Error())
			break
		}

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slots[i] = core.Missing(fmt.Sprintf("panic: %v", r))
					p.logger.Error("embedding task panicked", "row", label(i), "panic", r)
				}
				if progress != nil {
					progress.Increment(1)
				}
			}()
			slots[i] = p.embedOne(ctx, label(i), texts[i])
		})
		if err != nil {
			wg.Done()
			p.logger.Error("failed to submit embedding task", "row", label(i), "err", err)
			slots[i] = core.Missing(fmt.Sprintf("%s: %v", ReasonNotSubmitted, err))
		}
	}
	wg.Wait()

	elapsed := time.Since(start)
	if progress != nil {
		elapsed = progress.Elapsed()
		progress.Finish()
	}
	missing := 0
	for _, slot := range slots {
		if slot.IsMissing() {
			missing++
		}
	}
	rate := 0.0
	if elapsed > 0 {
		rate = float64(len(texts)) / elapsed.Seconds()
	}
	p.logger.Info("embedding finished",
		"texts", len(texts),
		"missing", missing,
		"elapsed", elapsed,
		"texts_per_sec", fmt.Sprintf("%.1f", rate))

	return slots
}

// embedOne performs a single embedding call. It never returns an error; the
// outcome is carried by the returned Embedding.
func (p *Pipeline) embedOne(ctx context.Context, row int, text string) core.Embedding {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			p.logger.Warn("rate limiter wait aborted", "row", row, "err", err)
			return core.Missing(err.Error())
		}
	}

	vector, err := p.embedder.EmbedText(ctx, text)
	if err != nil {
		p.logger.Warn("embedding failed", "row", row, "err", err)
		return core.Missing(err.Error())
	}
	if len(vector) == 0 {
		p.logger.Warn("embedding failed", "row", row, "err", ReasonEmptyEmbedding)
		return core.Missing(ReasonEmptyEmbedding)
	}

	if p.normalize {
		vector = core.NormalizeVector(vector)
	}
	if err := ai.CheckFinite(vector); err != nil {
		p.logger.Warn("embedding failed", "row", row, "err", err)
		return core.Missing(err.Error())
	}
	return core.Present(vector)
}

func (p *Pipeline) markRemaining(slots []core.Embedding, from, firstRow int, reason string) {
	p.logger.Warn("embedding cancelled", "first_row", firstRow, "remaining", len(slots)-from, "reason", reason)
	for i := from; i < len(slots); i++ {
		slots[i] = core.Missing(reason)
	}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
