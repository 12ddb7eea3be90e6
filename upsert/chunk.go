package upsert

import "fmt"

// Span is a half-open range [Start, End) of record positions.
type Span struct {
	Index int // chunk number, starting at 0
	Start int
	End   int
}

// Len returns the number of records in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("chunk %d [%d, %d)", s.Index, s.Start, s.End)
}

// Chunks partitions [0, n) into contiguous spans of at most size positions.
// Only the last span may be shorter. It returns nil when n is zero.
func Chunks(n, size int) []Span {
	if n <= 0 || size <= 0 {
		return nil
	}
	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		spans = append(spans, Span{
			Index: len(spans),
			Start: start,
			End:   min(start+size, n),
		})
	}
	return spans
}
