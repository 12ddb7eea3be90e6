// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder is safe for concurrent use, which the ingestion pipeline
// requires. It returns deterministic vectors derived from the text hash and
// can be told to fail for chosen texts or to delay each call.
//
//	embedder := mock.NewMockEmbedder().
//	    WithFailText(reviews[37].CombinedText, errors.New("rate limited"))
//
//	vec, err := embedder.EmbedText(ctx, "test")
//	count := embedder.CallCount()
package mock
