package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecords(n int) []*core.EnrichedRecord {
	records := make([]*core.EnrichedRecord, n)
	for i := range records {
		review := core.Review{
			Row:   i,
			Likes: fmt.Sprintf("like %d", i),
			Link:  fmt.Sprintf("https://reviews.example.com/r/%d", i),
		}
		records[i] = core.NewEnrichedRecord(review, core.Present([]float32{float32(i), 1}))
	}
	return records
}

func newStore(t *testing.T) *TableStore {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTableStore_UpsertAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	records := makeRecords(3)

	require.NoError(t, store.Upsert(ctx, "reviews", records))

	got, err := store.Get(ctx, "reviews", records[1].Key())
	require.NoError(t, err)
	assert.Equal(t, records[1].Review(), got.Review())
	assert.Equal(t, records[1].Vector(), got.Vector())

	_, err = store.Get(ctx, "reviews", core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTableStore_UpsertOverwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	records := makeRecords(5)

	require.NoError(t, store.Upsert(ctx, "reviews", records))
	require.NoError(t, store.Upsert(ctx, "reviews", records))

	count, err := store.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	updated := core.NewEnrichedRecord(records[2].Review(), core.Missing("timeout"))
	require.NoError(t, store.Upsert(ctx, "reviews", []*core.EnrichedRecord{updated}))

	got, err := store.Get(ctx, "reviews", records[2].Key())
	require.NoError(t, err)
	assert.False(t, got.HasVector())
	assert.Equal(t, "timeout", got.MissingReason())

	count, err = store.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestTableStore_ListOrderedByRow(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	records := makeRecords(20)

	// Insert in reverse so key order differs from row order
	for i := len(records) - 1; i >= 0; i-- {
		require.NoError(t, store.Upsert(ctx, "reviews", records[i:i+1]))
	}

	listed, err := store.List(ctx, "reviews")
	require.NoError(t, err)
	require.Len(t, listed, 20)
	for i, rec := range listed {
		assert.Equal(t, i, rec.Row())
	}
}

func TestTableStore_TablesAreIsolated(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "reviews", makeRecords(4)))
	require.NoError(t, store.Upsert(ctx, "reviews_copy", makeRecords(2)))

	n, err := store.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = store.Count(ctx, "reviews_copy")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTableStore_Errors(t *testing.T) {
	store := newStore(t)

	err := store.Upsert(context.Background(), "bad table", makeRecords(1))
	assert.ErrorIs(t, err, storage.ErrInvalidTable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.Upsert(ctx, "reviews", makeRecords(1)), context.Canceled)

	require.NoError(t, store.Close())
	assert.ErrorIs(t, store.Upsert(context.Background(), "reviews", makeRecords(1)), storage.ErrStorageClosed)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, "reviews", makeRecords(3)))
	require.NoError(t, store.Close())

	store, err = Open(dir)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx, "reviews")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
