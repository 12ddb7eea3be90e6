package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}

	assert.NotEqual(t, IDFromContent("a"), IDFromContent("b"))
}

func TestReview_Key(t *testing.T) {
	t.Run("keyed by link when present", func(t *testing.T) {
		a := Review{Row: 1, Link: "https://g2.com/r/1"}
		b := Review{Row: 99, Link: "https://g2.com/r/1"}
		assert.Equal(t, a.Key(), b.Key(), "same link should give same key regardless of row")
	})

	t.Run("keyed by row without link", func(t *testing.T) {
		a := Review{Row: 3}
		b := Review{Row: 3, Likes: "different text"}
		c := Review{Row: 4}
		assert.Equal(t, a.Key(), b.Key())
		assert.NotEqual(t, a.Key(), c.Key())
	})
}

func TestEmbedding(t *testing.T) {
	present := Present([]float32{0.1, 0.2})
	assert.False(t, present.IsMissing())
	assert.Equal(t, 2, present.Dimensions())

	missing := Missing("timeout")
	assert.True(t, missing.IsMissing())
	assert.Equal(t, "timeout", missing.Reason)
	assert.Equal(t, 0, missing.Dimensions())

	assert.Equal(t, "unknown", Missing("").Reason)
	assert.True(t, Present(nil).IsMissing(), "empty vector counts as missing")
}

func TestNewEnrichedRecord(t *testing.T) {
	t.Run("copies vector", func(t *testing.T) {
		vec := []float32{1, 2, 3}
		rec := NewEnrichedRecord(Review{Row: 7, Likes: "fast"}, Present(vec))

		vec[0] = 42
		require.True(t, rec.HasVector())
		assert.Equal(t, []float32{1, 2, 3}, rec.Vector())
		assert.Equal(t, 7, rec.Row())
		assert.Empty(t, rec.MissingReason())
	})

	t.Run("returned vector is a copy", func(t *testing.T) {
		rec := NewEnrichedRecord(Review{}, Present([]float32{1, 2}))
		out := rec.Vector()
		out[0] = 9
		assert.Equal(t, []float32{1, 2}, rec.Vector())
	})

	t.Run("missing marker", func(t *testing.T) {
		rec := NewEnrichedRecord(Review{Row: 2}, Missing("rate limited"))
		assert.False(t, rec.HasVector())
		assert.Nil(t, rec.Vector())
		assert.Equal(t, "rate limited", rec.MissingReason())
		assert.True(t, rec.Embedding().IsMissing())
	})

	t.Run("vector clears stale reason", func(t *testing.T) {
		rec := NewEnrichedRecord(Review{}, Embedding{Vector: []float32{1}, Reason: "old"})
		assert.Empty(t, rec.MissingReason())
	})
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 0.001)
	assert.InDelta(t, 0.8, v[1], 0.001)

	zero := NormalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)

	assert.Empty(t, NormalizeVector(nil))
}
