package csvio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Reviewer Name,Reviewer Job Title,Reviewer Business Size,Rating,Review Date,Review Title,Review Likes,Review Dislikes,Review Problem,Review Recommendations,Review Link
Ana P.,CTO,Small-Business (50 or fewer emp.),5.0,2024-01-02,Great,"fast, simple",nothing,search,buy it,https://reviews.example.com/1
Ben,,,,2024-01-03,,likes,,,,
`

func TestReadReviews(t *testing.T) {
	reviews, err := ReadReviews(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	first := reviews[0]
	assert.Equal(t, 0, first.Row)
	assert.Equal(t, "Ana P.", first.ReviewerName)
	assert.Equal(t, "CTO", first.ReviewerJobTitle)
	assert.Equal(t, "5.0", first.Rating)
	assert.Equal(t, "fast, simple", first.Likes)
	assert.Equal(t, "https://reviews.example.com/1", first.Link)

	second := reviews[1]
	assert.Equal(t, 1, second.Row)
	assert.Equal(t, "", second.Rating)
	assert.Equal(t, "", second.Dislikes)
}

func TestReadReviews_ColumnOrderAndUnknownColumns(t *testing.T) {
	input := "Extra,Review Likes,Rating\nignored,good,3\n"
	reviews, err := ReadReviews(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "good", reviews[0].Likes)
	assert.Equal(t, "3", reviews[0].Rating)
	assert.Equal(t, "", reviews[0].Problem, "missing column reads as empty")
}

func TestReadReviews_ShortRowsAndBOM(t *testing.T) {
	input := "\ufeffReview Likes,Review Dislikes,Review Problem\nonly likes\n"
	reviews, err := ReadReviews(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "only likes", reviews[0].Likes)
	assert.Equal(t, "", reviews[0].Problem)
}

func TestReadReviews_HeaderOnly(t *testing.T) {
	reviews, err := ReadReviews(strings.NewReader("Review Likes,Rating\n"))
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestReadReviews_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		line    int
	}{
		{name: "empty", input: "", wantErr: ErrEmptyInput},
		{name: "no known columns", input: "a,b\n1,2\n", wantErr: ErrNoKnownColumns, line: 1},
		{name: "bad rating", input: "Rating,Review Likes\n4,ok\nfive,ok\n", line: 3},
		{name: "malformed quotes", input: "Review Likes\nbad\"quote\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReviews(strings.NewReader(tt.input))
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.line > 0 {
				assert.Equal(t, tt.line, loadErr.Line)
			}
		})
	}
}

func TestLoadReviews(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	reviews, err := LoadReviews(path)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestLoadReviews_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := LoadReviews(path)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, path, loadErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), path)
}
