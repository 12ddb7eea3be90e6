package core

import (
	"errors"
	"testing"
)

func TestValidateReview(t *testing.T) {
	tests := []struct {
		name    string
		review  *Review
		wantErr error
	}{
		{
			name:    "valid review",
			review:  &Review{Row: 0, Rating: "4.5", Likes: "good"},
			wantErr: nil,
		},
		{
			name:    "valid review with empty rating",
			review:  &Review{Row: 3, Rating: ""},
			wantErr: nil,
		},
		{
			name:    "valid review with padded rating",
			review:  &Review{Row: 3, Rating: " 5 "},
			wantErr: nil,
		},
		{
			name:    "valid review with every field empty",
			review:  &Review{},
			wantErr: nil,
		},
		{
			name:    "nil review",
			review:  nil,
			wantErr: ErrInvalidReview,
		},
		{
			name:    "negative row",
			review:  &Review{Row: -1},
			wantErr: ErrInvalidRow,
		},
		{
			name:    "non numeric rating",
			review:  &Review{Rating: "five stars"},
			wantErr: ErrInvalidRating,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReview(tt.review)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateReview() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateReview() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	v, ok, err := ParseRating("4.0")
	if err != nil || !ok || v != 4.0 {
		t.Errorf("ParseRating(4.0) = %v, %v, %v", v, ok, err)
	}

	_, ok, err = ParseRating("")
	if ok || err != nil {
		t.Errorf("ParseRating(\"\") should report absent without error")
	}
}
