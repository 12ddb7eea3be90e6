// Package upsert writes enriched records to a storage.Sink in fixed-size,
// contiguous chunks, one sink call at a time.
//
// Chunk N+1 is not sent until the call for chunk N has returned. A failed
// chunk is reported by index and record range so it can be resubmitted;
// whether the remaining chunks are still attempted is controlled by
// Config.ContinueOnError.
//
//	w, err := upsert.NewWriter(sink, upsert.Config{Table: "reviews", BatchSize: 100})
//	if err != nil {
//	    return err
//	}
//	report, err := w.WriteAll(ctx, records)
//	if err != nil {
//	    retry := report.Failed() // records of every chunk that was not written
//	}
package upsert
