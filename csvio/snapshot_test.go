package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/reviewvec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotRecords() []*core.EnrichedRecord {
	return []*core.EnrichedRecord{
		core.NewEnrichedRecord(core.Review{Row: 0, Likes: "fast, simple", Rating: "4", Link: "https://reviews.example.com/1"},
			core.Present([]float32{0.125, -0.5, 1e-7})),
		core.NewEnrichedRecord(core.Review{Row: 1, Likes: "ok"}, core.Missing("rate limited")),
	}
}

func TestWriteSnapshotTo(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteSnapshotTo(&sb, snapshotRecords()))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], "Review Link,embedding,embedding_error"))
	assert.Contains(t, lines[1], `"[0.125,-0.5,1e-7]"`)
	assert.True(t, strings.HasSuffix(lines[2], ",,rate limited"), "missing embedding leaves the cell empty")
}

func TestSnapshot_ReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	records := snapshotRecords()
	require.NoError(t, WriteSnapshot(path, records))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, records[0].Review(), got[0].Review())
	assert.Equal(t, records[0].Vector(), got[0].Vector())
	assert.False(t, got[1].HasVector())
	assert.Equal(t, "rate limited", got[1].MissingReason())
	assert.Equal(t, 1, got[1].Row())
}

func TestWriteSnapshot_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteSnapshot(path, snapshotRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Reviewer Name,"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteSnapshot_BadDirectory(t *testing.T) {
	err := WriteSnapshot(filepath.Join(t.TempDir(), "missing", "snapshot.csv"), snapshotRecords())
	assert.Error(t, err)
}

func TestReadSnapshotFrom_InvalidEmbedding(t *testing.T) {
	input := "Review Likes,embedding,embedding_error\nok,not-json,\n"
	_, err := ReadSnapshotFrom(strings.NewReader(input))
	assert.ErrorIs(t, err, ErrInvalidEmbedding)
}

func TestReadSnapshotFrom_MissingWithoutReason(t *testing.T) {
	input := "Review Likes,embedding\nok,\n"
	records, err := ReadSnapshotFrom(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].HasVector())
	assert.Equal(t, "unknown", records[0].MissingReason())
}
