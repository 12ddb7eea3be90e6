package upsert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink remembers every call and fails the calls listed in failCalls.
type recordingSink struct {
	mu        sync.Mutex
	calls     [][]int // rows per call
	failCalls map[int]error
	inFlight  int
	overlap   bool
	onUpsert  func(call int)
}

func (s *recordingSink) Upsert(ctx context.Context, table string, records []*core.EnrichedRecord) error {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > 1 {
		s.overlap = true
	}
	call := len(s.calls)
	rows := make([]int, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	s.calls = append(s.calls, rows)
	err := s.failCalls[call]
	hook := s.onUpsert
	s.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return err
}

func (s *recordingSink) Close() error { return nil }

func makeRecords(n int) []*core.EnrichedRecord {
	records := make([]*core.EnrichedRecord, n)
	for i := range records {
		review := core.Review{Row: i, Likes: fmt.Sprintf("like %d", i), Link: fmt.Sprintf("https://reviews.example.com/%d", i)}
		records[i] = core.NewEnrichedRecord(review, core.Present([]float32{float32(i)}))
	}
	return records
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWriter(t *testing.T, sink *recordingSink, cfg Config) *Writer {
	t.Helper()
	w, err := NewWriter(sink, cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	return w
}

func TestNewWriter_Validation(t *testing.T) {
	_, err := NewWriter(nil, Config{BatchSize: 10})
	assert.ErrorIs(t, err, ErrSinkRequired)

	_, err = NewWriter(&recordingSink{}, Config{BatchSize: 0})
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = NewWriter(&recordingSink{}, Config{BatchSize: 10, MaxAttempts: -1})
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = NewWriter(&recordingSink{}, Config{BatchSize: 10, Table: "no spaces allowed"})
	assert.Error(t, err)

	w, err := NewWriter(&recordingSink{}, Config{BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, DefaultTable, w.Config().Table)
	assert.Equal(t, 1, w.Config().MaxAttempts)
}

func TestWriteAll_ChunkSizes(t *testing.T) {
	sink := &recordingSink{}
	w := newWriter(t, sink, Config{BatchSize: 100})

	report, err := w.WriteAll(context.Background(), makeRecords(250))
	require.NoError(t, err)

	require.Len(t, sink.calls, 3)
	assert.Len(t, sink.calls[0], 100)
	assert.Len(t, sink.calls[1], 100)
	assert.Len(t, sink.calls[2], 50)
	assert.False(t, sink.overlap, "calls must not overlap")

	// No duplicates and no gaps, in order
	next := 0
	for _, rows := range sink.calls {
		for _, row := range rows {
			assert.Equal(t, next, row)
			next++
		}
	}
	assert.Equal(t, 250, next)

	assert.True(t, report.OK())
	assert.Equal(t, 250, report.Written())
	assert.Equal(t, 3, report.BatchesWritten())
	assert.Empty(t, report.Failed())
}

func TestWriteAll_Empty(t *testing.T) {
	sink := &recordingSink{}
	w := newWriter(t, sink, Config{BatchSize: 100})

	report, err := w.WriteAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, sink.calls)
	assert.Empty(t, report.Batches)
	assert.True(t, report.OK())
}

func TestWriteAll_AbortOnError(t *testing.T) {
	boom := errors.New("payload too large")
	sink := &recordingSink{failCalls: map[int]error{1: boom}}
	w := newWriter(t, sink, Config{BatchSize: 100})

	records := makeRecords(250)
	report, err := w.WriteAll(context.Background(), records)

	require.Error(t, err)
	var chunkErr *ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 1, chunkErr.Index)
	assert.Equal(t, 100, chunkErr.Start)
	assert.Equal(t, 200, chunkErr.End)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "records 100-199")

	assert.Len(t, sink.calls, 2, "later chunks are not sent")
	require.Len(t, report.Batches, 3)
	assert.Equal(t, StatusWritten, report.Batches[0].Status)
	assert.Equal(t, StatusFailed, report.Batches[1].Status)
	assert.Equal(t, StatusSkipped, report.Batches[2].Status)
	assert.ErrorIs(t, report.Batches[2].Err, ErrSkipped)

	failed := report.Failed()
	require.Len(t, failed, 150)
	assert.Same(t, records[100], failed[0])
	assert.Same(t, records[249], failed[149])
	assert.Equal(t, 100, report.Written())
}

func TestWriteAll_ContinueOnError(t *testing.T) {
	sink := &recordingSink{failCalls: map[int]error{0: errors.New("first"), 2: errors.New("third")}}
	w := newWriter(t, sink, Config{BatchSize: 10, ContinueOnError: true})

	report, err := w.WriteAll(context.Background(), makeRecords(35))

	require.Error(t, err)
	assert.Len(t, sink.calls, 4, "every chunk is attempted")
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "third")

	failed := report.FailedBatches()
	require.Len(t, failed, 2)
	assert.Equal(t, 0, failed[0].Index)
	assert.Equal(t, 2, failed[1].Index)
	assert.Len(t, report.Failed(), 20)
	assert.Equal(t, 15, report.Written())
}

func TestWriteAll_ResubmitFailed(t *testing.T) {
	sink := &recordingSink{failCalls: map[int]error{1: errors.New("timeout")}}
	w := newWriter(t, sink, Config{BatchSize: 4})

	report, err := w.WriteAll(context.Background(), makeRecords(10))
	require.Error(t, err)

	retry, err := w.WriteAll(context.Background(), report.Failed())
	require.NoError(t, err)
	assert.Equal(t, 6, retry.Written())
}

func TestWriteAll_RetriesChunk(t *testing.T) {
	sink := &recordingSink{failCalls: map[int]error{0: errors.New("flaky")}}
	w := newWriter(t, sink, Config{BatchSize: 5, MaxAttempts: 3, RetryDelay: time.Millisecond})

	report, err := w.WriteAll(context.Background(), makeRecords(5))
	require.NoError(t, err)
	assert.Len(t, sink.calls, 2)
	assert.Equal(t, 2, report.Batches[0].Attempts)
}

func TestWriteAll_CancelStopsBeforeNextChunk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onUpsert: func(call int) {
		if call == 0 {
			cancel()
		}
	}}
	w := newWriter(t, sink, Config{BatchSize: 10})

	report, err := w.WriteAll(ctx, makeRecords(30))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sink.calls, 1)
	require.Len(t, report.Batches, 3)
	assert.Equal(t, StatusSkipped, report.Batches[1].Status)
	assert.Len(t, report.Failed(), 20)
}

func TestWriteAll_Idempotent(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	w, err := NewWriter(store, Config{Table: "reviews", BatchSize: 100}, WithLogger(quietLogger()))
	require.NoError(t, err)

	ctx := context.Background()
	records := makeRecords(250)

	_, err = w.WriteAll(ctx, records)
	require.NoError(t, err)
	once, err := store.List(ctx, "reviews")
	require.NoError(t, err)

	_, err = w.WriteAll(ctx, records)
	require.NoError(t, err)
	twice, err := store.List(ctx, "reviews")
	require.NoError(t, err)

	require.Len(t, twice, 250)
	for i := range once {
		assert.Equal(t, once[i].Review(), twice[i].Review())
		assert.Equal(t, once[i].Vector(), twice[i].Vector())
	}
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "written", StatusWritten.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "skipped", StatusSkipped.String())
}
