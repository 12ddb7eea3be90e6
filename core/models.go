// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Review is one row of the input review table.
// Absent cells are represented as empty strings, never as a null marker.
type Review struct {
	Row                  int // 0-based position in the input file
	ReviewerName         string
	ReviewerJobTitle     string
	ReviewerBusinessSize string
	Rating               string // numeric text, may be empty
	ReviewDate           string
	Title                string
	Likes                string
	Dislikes             string
	Problem              string
	Recommendations      string
	Link                 string
}

// Key returns the upsert key for the review.
// Reviews with a link are keyed by the link, others by their row position,
// so re-running identical input always produces identical keys.
func (r *Review) Key() ID {
	if r.Link != "" {
		return IDFromContent(r.Link)
	}
	return IDFromContent("row:" + strconv.Itoa(r.Row))
}

// Embedding is the outcome of embedding one combined text: either a vector
// or a missing marker carrying the reason the vector could not be computed.
type Embedding struct {
	Vector []float32
	Reason string // set only when the embedding is missing
}

// Present wraps a computed vector.
func Present(vector []float32) Embedding {
	return Embedding{Vector: vector}
}

// Missing returns the missing marker with a human-readable reason.
func Missing(reason string) Embedding {
	if reason == "" {
		reason = "unknown"
	}
	return Embedding{Reason: reason}
}

// IsMissing reports whether the embedding could not be computed.
func (e Embedding) IsMissing() bool {
	return len(e.Vector) == 0
}

// Dimensions returns the vector length, or 0 when missing.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// EnrichedRecord is a review joined with its embedding, ready for persistence.
// Fields are unexported so a record cannot change after construction.
type EnrichedRecord struct {
	review    Review
	embedding Embedding
}

// NewEnrichedRecord builds an immutable record. The vector is copied so later
// changes to the caller's slice are not observed.
func NewEnrichedRecord(review Review, embedding Embedding) *EnrichedRecord {
	e := Missing(embedding.Reason)
	if len(embedding.Vector) > 0 {
		e.Vector = make([]float32, len(embedding.Vector))
		copy(e.Vector, embedding.Vector)
		e.Reason = ""
	}
	return &EnrichedRecord{review: review, embedding: e}
}

// Review returns a copy of the underlying review.
func (r *EnrichedRecord) Review() Review {
	return r.review
}

// Row returns the input position of the record.
func (r *EnrichedRecord) Row() int {
	return r.review.Row
}

// Key returns the upsert key of the record.
func (r *EnrichedRecord) Key() ID {
	return r.review.Key()
}

// HasVector reports whether an embedding vector is present.
func (r *EnrichedRecord) HasVector() bool {
	return !r.embedding.IsMissing()
}

// Vector returns a copy of the embedding vector, or nil when missing.
func (r *EnrichedRecord) Vector() []float32 {
	if r.embedding.IsMissing() {
		return nil
	}
	out := make([]float32, len(r.embedding.Vector))
	copy(out, r.embedding.Vector)
	return out
}

// MissingReason returns why the embedding is missing, or "" when present.
func (r *EnrichedRecord) MissingReason() string {
	return r.embedding.Reason
}

// Embedding returns a copy of the embedding outcome.
func (r *EnrichedRecord) Embedding() Embedding {
	return Embedding{Vector: r.Vector(), Reason: r.embedding.Reason}
}
