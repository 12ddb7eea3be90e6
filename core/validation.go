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
	"fmt"
	"strconv"
	"strings"
)

// ValidateReview validates a Review according to domain rules.
//
// Validation rules:
//   - Row must not be negative
//   - Rating, when present, must parse as a number
//
// NOT validated:
//   - Free-text fields (empty is a valid value)
//   - Link (rows without a link are keyed by position)
func ValidateReview(review *Review) error {
	if review == nil {
		return fmt.Errorf("%w: review is nil", ErrInvalidReview)
	}

	if review.Row < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidReview, ErrInvalidRow)
	}

	if _, ok, err := ParseRating(review.Rating); ok && err != nil {
		return fmt.Errorf("%w: %w: %q", ErrInvalidReview, ErrInvalidRating, review.Rating)
	}

	return nil
}

// ParseRating parses a rating cell. ok is false when the cell is empty.
func ParseRating(s string) (value float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(s, 64)
	return value, true, err
}
