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

package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/reviewvec/core"
)

const utf8BOM = "\ufeff"

// LoadReviews reads the review table at path.
func LoadReviews(path string) ([]core.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	reviews, err := ReadReviews(f)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return reviews, nil
}

// ReadReviews parses a review table. Row numbers start at 0 for the first
// line after the header.
func ReadReviews(r io.Reader) ([]core.Review, error) {
	var reviews []core.Review
	err := readTable(r, func(row int, get func(string) (string, bool)) error {
		review := core.Review{Row: row}
		for _, h := range ReviewHeaders {
			if v, ok := get(h); ok {
				*field(&review, h) = v
			}
		}
		if err := core.ValidateReview(&review); err != nil {
			return err
		}
		reviews = append(reviews, review)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// readTable drives a header-aware CSV scan. fn receives the 0-based data row
// and a lookup by header name.
func readTable(r io.Reader, fn func(row int, get func(string) (string, bool)) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // short rows read as empty cells

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &LoadError{Err: ErrEmptyInput}
		}
		return &LoadError{Line: 1, Err: err}
	}

	index := make(map[string]int, len(header))
	known := 0
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		if field(&core.Review{}, name) != nil {
			known++
		}
	}
	if known == 0 {
		return &LoadError{Line: 1, Err: ErrNoKnownColumns}
	}

	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return &LoadError{Line: line, Err: err}
		}

		get := func(name string) (string, bool) {
			i, ok := index[name]
			if !ok {
				return "", false
			}
			if i >= len(record) {
				return "", true
			}
			return record[i], true
		}
		if err := fn(row, get); err != nil {
			line, _ := reader.FieldPos(0)
			return &LoadError{Line: line, Err: fmt.Errorf("row %d: %w", row, err)}
		}
	}
}
