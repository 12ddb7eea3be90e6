// Package csvio reads the input review table and writes the enriched
// snapshot that is produced before any sink write.
//
// Columns are matched by header name, so column order does not matter.
// Unknown columns are ignored and missing columns or cells read as "".
// The snapshot keeps the input columns and appends an embedding column
// holding the vector as a JSON array (empty when the embedding is missing)
// and an embedding_error column holding the failure reason.
package csvio
