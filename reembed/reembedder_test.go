package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/poiesic/reviewvec/ai/mock"
	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeReview(row int) core.Review {
	return core.Review{
		Row:   row,
		Title: fmt.Sprintf("title %d", row),
		Likes: fmt.Sprintf("likes %d", row),
		Link:  fmt.Sprintf("https://example.com/reviews/%d", row),
	}
}

// snapshot builds n records where the listed rows have no vector.
func snapshot(n int, missing ...int) []*core.EnrichedRecord {
	gaps := make(map[int]bool, len(missing))
	for _, row := range missing {
		gaps[row] = true
	}
	records := make([]*core.EnrichedRecord, n)
	for i := range records {
		emb := core.Present([]float32{float32(i), 1})
		if gaps[i] {
			emb = core.Missing("timeout")
		}
		records[i] = core.NewEnrichedRecord(makeReview(i), emb)
	}
	return records
}

func newReembedder(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Reembedder {
	t.Helper()
	p, err := ingestion.NewPipeline(embedder, ingestion.WithPoolSize(4), ingestion.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(p.Release)

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	r, err := NewReembedder(p, opts...)
	require.NoError(t, err)
	return r
}

func TestNewReembedder_RequiresPipeline(t *testing.T) {
	r, err := NewReembedder(nil)
	assert.ErrorIs(t, err, ErrPipelineRequired)
	assert.Nil(t, r)
}

func TestMissingRows(t *testing.T) {
	assert.Equal(t, []int{2, 5}, MissingRows(snapshot(8, 2, 5)))
	assert.Empty(t, MissingRows(snapshot(3)))
}

func TestReembedder_RepairsOnlyMissingRows(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r := newReembedder(t, embedder)

	records := snapshot(10, 3, 7)
	result := r.Run(context.Background(), records)

	assert.Equal(t, 2, embedder.CallCount())
	assert.Equal(t, 2, result.Attempted)
	assert.Empty(t, result.StillMissing)
	require.Len(t, result.Repaired, 2)
	assert.Equal(t, 3, result.Repaired[0].Row())
	assert.Equal(t, 7, result.Repaired[1].Row())

	require.Len(t, result.Records, 10)
	for i, rec := range result.Records {
		assert.True(t, rec.HasVector(), "row %d", i)
		assert.Equal(t, i, rec.Row())
	}
	// untouched rows are the same records
	assert.Same(t, records[0], result.Records[0])

	// the input is not modified
	assert.False(t, records[3].HasVector())
}

func TestReembedder_UsesCombinedText(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	combiner := core.Combiner{IncludeTitle: true}
	r := newReembedder(t, embedder, WithCombiner(combiner))

	records := snapshot(2, 1)
	result := r.Run(context.Background(), records)

	review := records[1].Review()
	text := combiner.Combine(&review)
	assert.Equal(t, []string{text}, embedder.Texts())
	require.Len(t, result.Repaired, 1)
	assert.Equal(t, mock.GenerateDeterministicVector(text, mock.DefaultDimensions), result.Repaired[0].Vector())
}

func TestReembedder_StillMissing(t *testing.T) {
	records := snapshot(5, 1, 4)
	review := records[4].Review()
	embedder := mock.NewMockEmbedder().WithFailText(core.CombineText(&review), errors.New("rate limited"))
	r := newReembedder(t, embedder)

	result := r.Run(context.Background(), records)

	assert.Equal(t, []int{4}, result.StillMissing)
	require.Len(t, result.Repaired, 1)
	assert.Equal(t, 1, result.Repaired[0].Row())
	assert.Contains(t, result.Records[4].MissingReason(), "rate limited")
}

func TestReembedder_NothingMissing(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r := newReembedder(t, embedder)

	records := snapshot(4)
	result := r.Run(context.Background(), records)

	assert.Zero(t, embedder.CallCount())
	assert.Zero(t, result.Attempted)
	assert.Empty(t, result.Repaired)
	assert.Equal(t, records, result.Records)
}

func TestReembedder_CancelledContext(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r := newReembedder(t, embedder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := r.Run(ctx, snapshot(3, 0, 2))
	assert.Equal(t, []int{0, 2}, result.StillMissing)
	assert.Empty(t, result.Repaired)
}

func TestReembedder_LogsSnapshotRows(t *testing.T) {
	records := snapshot(40, 37)
	review := records[37].Review()
	embedder := mock.NewMockEmbedder().WithFailText(core.CombineText(&review), errors.New("connection reset"))

	var logs bytes.Buffer
	p, err := ingestion.NewPipeline(embedder, ingestion.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, err)
	defer p.Release()
	r, err := NewReembedder(p, WithLogger(quietLogger()))
	require.NoError(t, err)

	result := r.Run(context.Background(), records)

	assert.Equal(t, []int{37}, result.StillMissing)
	assert.Contains(t, logs.String(), "row=37")
	assert.NotContains(t, logs.String(), "row=0")
}
