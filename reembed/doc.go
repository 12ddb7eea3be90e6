// Package reembed repairs a snapshot whose rows have missing embeddings.
//
// A run never aborts on a single failed embedding call; the row is kept with a
// missing marker instead. The Reembedder selects those rows, rebuilds their
// combined text, and embeds them again through an ingestion.Pipeline. Rows with
// a vector are passed through untouched, so repairing a snapshot twice only
// retries what is still missing.
package reembed
