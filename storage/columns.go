package storage

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/poiesic/reviewvec/core"
)

// Column names written by every sink.
const (
	ColReviewerName          = "reviewer_name"
	ColReviewerJobTitle      = "reviewer_job_title"
	ColReviewerBusinessSize  = "reviewer_business_size"
	ColRating                = "rating"
	ColReviewDate            = "review_date"
	ColReviewTitle           = "review_title"
	ColReviewLikes           = "review_likes"
	ColReviewDislikes        = "review_dislikes"
	ColReviewProblem         = "review_problem"
	ColReviewRecommendations = "review_recommendations"
	ColReviewLink            = "review_link"
	ColEmbedding             = "embedding"
	ColReviewKey             = "review_key"
)

// ColumnNames lists the columns in write order. The key column is last.
var ColumnNames = []string{
	ColReviewerName,
	ColReviewerJobTitle,
	ColReviewerBusinessSize,
	ColRating,
	ColReviewDate,
	ColReviewTitle,
	ColReviewLikes,
	ColReviewDislikes,
	ColReviewProblem,
	ColReviewRecommendations,
	ColReviewLink,
	ColEmbedding,
	ColReviewKey,
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTable rejects table names that cannot be used as a bare SQL
// identifier or collection name.
func ValidateTable(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

// KeyString renders a record key the way sinks store it.
func KeyString(id core.ID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Columns maps a record onto column values. Rating is a float64 when it
// parses and nil otherwise; a missing embedding is nil.
func Columns(record *core.EnrichedRecord) map[string]any {
	r := record.Review()

	var rating any
	if v, ok, err := core.ParseRating(r.Rating); ok && err == nil {
		rating = v
	}

	var embedding any
	if record.HasVector() {
		embedding = record.Vector()
	}

	return map[string]any{
		ColReviewerName:          r.ReviewerName,
		ColReviewerJobTitle:      r.ReviewerJobTitle,
		ColReviewerBusinessSize:  r.ReviewerBusinessSize,
		ColRating:                rating,
		ColReviewDate:            r.ReviewDate,
		ColReviewTitle:           r.Title,
		ColReviewLikes:           r.Likes,
		ColReviewDislikes:        r.Dislikes,
		ColReviewProblem:         r.Problem,
		ColReviewRecommendations: r.Recommendations,
		ColReviewLink:            r.Link,
		ColEmbedding:             embedding,
		ColReviewKey:             KeyString(record.Key()),
	}
}
