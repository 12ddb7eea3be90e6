package ingestion

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidRateLimit is returned for a negative rate limit.
	ErrInvalidRateLimit = errors.New("rate limit cannot be negative")
)

// Reasons recorded on missing embeddings.
const (
	ReasonEmptyEmbedding = "empty embedding"
	ReasonNotSubmitted   = "not submitted"
)
