// Package ingestion provides the parallel embedding stage of a run.
//
// The Pipeline submits one task per combined text to a bounded ants worker
// pool. Each task writes only its own result slot, so the result slice lines
// up with the input slice no matter which calls finish first. A failed call
// leaves a core.Missing marker in its slot and is logged with its row index;
// it never aborts the other calls.
//
//	p, err := ingestion.NewPipeline(embedder, ingestion.WithPoolSize(8))
//	if err != nil {
//	    return err
//	}
//	defer p.Release()
//	embeddings := p.EmbedAll(ctx, texts) // len(embeddings) == len(texts)
package ingestion
