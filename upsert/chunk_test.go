package upsert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunks(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		size  int
		sizes []int
	}{
		{"exact multiple", 200, 100, []int{100, 100}},
		{"short last chunk", 250, 100, []int{100, 100, 50}},
		{"smaller than one chunk", 7, 100, []int{7}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"empty", 0, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := Chunks(tt.n, tt.size)

			var sizes []int
			next := 0
			for i, s := range spans {
				assert.Equal(t, i, s.Index)
				assert.Equal(t, next, s.Start, "no gaps or overlaps")
				next = s.End
				sizes = append(sizes, s.Len())
			}
			assert.Equal(t, tt.sizes, sizes)
			if tt.n > 0 {
				assert.Equal(t, tt.n, next, "covers the full input")
			}
		})
	}
}

func TestChunks_CallCount(t *testing.T) {
	for m := 1; m <= 60; m++ {
		for b := 1; b <= 13; b++ {
			spans := Chunks(m, b)
			assert.Len(t, spans, (m+b-1)/b, "M=%d B=%d", m, b)
			for _, s := range spans {
				assert.LessOrEqual(t, s.Len(), b)
				assert.Positive(t, s.Len())
			}
		}
	}
}

func TestChunks_InvalidSize(t *testing.T) {
	assert.Nil(t, Chunks(10, 0))
	assert.Nil(t, Chunks(10, -1))
}

func TestSpan_String(t *testing.T) {
	assert.Equal(t, "chunk 2 [200, 250)", Span{Index: 2, Start: 200, End: 250}.String())
}
