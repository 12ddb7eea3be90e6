package csvio

import "github.com/poiesic/reviewvec/core"

// Input column headers.
const (
	HeaderReviewerName          = "Reviewer Name"
	HeaderReviewerJobTitle      = "Reviewer Job Title"
	HeaderReviewerBusinessSize  = "Reviewer Business Size"
	HeaderRating                = "Rating"
	HeaderReviewDate            = "Review Date"
	HeaderReviewTitle           = "Review Title"
	HeaderReviewLikes           = "Review Likes"
	HeaderReviewDislikes        = "Review Dislikes"
	HeaderReviewProblem         = "Review Problem"
	HeaderReviewRecommendations = "Review Recommendations"
	HeaderReviewLink            = "Review Link"

	// Snapshot-only columns.
	HeaderEmbedding      = "embedding"
	HeaderEmbeddingError = "embedding_error"
)

// ReviewHeaders lists the input columns in the order snapshots write them.
var ReviewHeaders = []string{
	HeaderReviewerName,
	HeaderReviewerJobTitle,
	HeaderReviewerBusinessSize,
	HeaderRating,
	HeaderReviewDate,
	HeaderReviewTitle,
	HeaderReviewLikes,
	HeaderReviewDislikes,
	HeaderReviewProblem,
	HeaderReviewRecommendations,
	HeaderReviewLink,
}

// field returns a pointer to the review field stored under header.
func field(r *core.Review, header string) *string {
	switch header {
	case HeaderReviewerName:
		return &r.ReviewerName
	case HeaderReviewerJobTitle:
		return &r.ReviewerJobTitle
	case HeaderReviewerBusinessSize:
		return &r.ReviewerBusinessSize
	case HeaderRating:
		return &r.Rating
	case HeaderReviewDate:
		return &r.ReviewDate
	case HeaderReviewTitle:
		return &r.Title
	case HeaderReviewLikes:
		return &r.Likes
	case HeaderReviewDislikes:
		return &r.Dislikes
	case HeaderReviewProblem:
		return &r.Problem
	case HeaderReviewRecommendations:
		return &r.Recommendations
	case HeaderReviewLink:
		return &r.Link
	}
	return nil
}
