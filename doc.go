// Package reviewvec turns a table of product reviews into vector embeddings
// and upserts the enriched rows into a store.
//
// A Runner wires the stages together:
//
//	load (csvio) → combine (core) → embed (ingestion) → snapshot (csvio) → write (upsert)
//
// Embedding runs in parallel on a bounded worker pool and never aborts on a
// single failed row. The snapshot is written before anything reaches the
// sink, so a failed write never loses computed embeddings, and RetryMissing
// can later repair only the rows that are still missing.
//
//	runner, err := reviewvec.NewRunner(embedder, sink,
//	    reviewvec.WithPipelineOptions(ingestion.WithPoolSize(8)))
//	if err != nil {
//	    return err
//	}
//	summary, err := runner.Run(ctx, reviewvec.RunConfig{
//	    InputPath:    "reviews.csv",
//	    SnapshotPath: "reviews_embedded.csv",
//	    BatchSize:    100,
//	})
package reviewvec
