package core

import "strings"

// Combiner builds the descriptive text sent to the embedding model.
// The field order and labels are fixed; they change what the model sees.
type Combiner struct {
	// IncludeTitle prefixes the text with the review title.
	IncludeTitle bool
}

// Combine returns the combined text for a review. It is pure and total:
// a review whose free-text fields are all empty still yields the label string.
func (c Combiner) Combine(r *Review) string {
	var b strings.Builder
	if c.IncludeTitle {
		b.WriteString("Title: ")
		b.WriteString(r.Title)
		b.WriteString(" . ")
	}
	b.WriteString("Likes: ")
	b.WriteString(r.Likes)
	b.WriteString(" . Dislikes: ")
	b.WriteString(r.Dislikes)
	b.WriteString(" . Problem: ")
	b.WriteString(r.Problem)
	b.WriteString(" . Recommendations: ")
	b.WriteString(r.Recommendations)
	return b.String()
}

// CombineAll returns the combined texts of reviews, index-aligned with the input.
func (c Combiner) CombineAll(reviews []Review) []string {
	texts := make([]string, len(reviews))
	for i := range reviews {
		texts[i] = c.Combine(&reviews[i])
	}
	return texts
}

// CombineText combines a review with the default (title-less) template.
func CombineText(r *Review) string {
	return Combiner{}.Combine(r)
}
