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

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/reviewvec/core"
)

func reviewStrings(r *core.Review) []*string {
	return []*string{
		&r.ReviewerName,
		&r.ReviewerJobTitle,
		&r.ReviewerBusinessSize,
		&r.Rating,
		&r.ReviewDate,
		&r.Title,
		&r.Likes,
		&r.Dislikes,
		&r.Problem,
		&r.Recommendations,
		&r.Link,
	}
}

func recordSize(review *core.Review, emb core.Embedding) int {
	size := varint.Int.Size(review.Row)
	for _, s := range reviewStrings(review) {
		size += ord.String.Size(*s)
	}
	size += varint.Int.Size(len(emb.Vector))
	for _, f := range emb.Vector {
		size += raw.Float32.Size(f)
	}
	size += ord.String.Size(emb.Reason)
	return size
}

// MarshalRecord serializes an EnrichedRecord to bytes.
// Layout: row, the eleven review fields, vector length, vector, missing reason.
func MarshalRecord(record *core.EnrichedRecord) []byte {
	review := record.Review()
	emb := record.Embedding()

	buf := make([]byte, recordSize(&review, emb))
	n := varint.Int.Marshal(review.Row, buf)
	for _, s := range reviewStrings(&review) {
		n += ord.String.Marshal(*s, buf[n:])
	}
	n += varint.Int.Marshal(len(emb.Vector), buf[n:])
	for _, f := range emb.Vector {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	ord.String.Marshal(emb.Reason, buf[n:])
	return buf
}

// UnmarshalRecord deserializes an EnrichedRecord from bytes.
func UnmarshalRecord(data []byte) (*core.EnrichedRecord, error) {
	var (
		review core.Review
		emb    core.Embedding
		n      int
	)

	row, m, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: row: %v", ErrSerializationFailed, err)
	}
	review.Row = row
	n += m

	for _, s := range reviewStrings(&review) {
		v, m, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: review field: %v", ErrSerializationFailed, err)
		}
		*s = v
		n += m
	}

	length, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %v", ErrSerializationFailed, err)
	}
	n += m
	if length < 0 || length*4 > len(data)-n {
		return nil, fmt.Errorf("%w: vector of %d floats", ErrTruncatedData, length)
	}
	if length > 0 {
		emb.Vector = make([]float32, length)
		for i := range emb.Vector {
			f, m, err := raw.Float32.Unmarshal(data[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: vector: %v", ErrSerializationFailed, err)
			}
			emb.Vector[i] = f
			n += m
		}
	}

	reason, _, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: reason: %v", ErrSerializationFailed, err)
	}
	emb.Reason = reason

	return core.NewEnrichedRecord(review, emb), nil
}
