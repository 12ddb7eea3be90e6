package reviewvec

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/reviewvec/upsert"
)

// Summary is what a run reports to the user.
type Summary struct {
	// Rows is the number of records processed.
	Rows int

	// MissingRows lists the rows that ended the run without an embedding.
	MissingRows []int

	// Repaired is the number of rows that gained a vector. Set by RetryMissing.
	Repaired int

	BatchesWritten int
	BatchesFailed  int
	RecordsWritten int

	SnapshotPath string
	Duration     time.Duration

	// Report is the per-chunk outcome of the write stage, nil when the run
	// stopped before writing.
	Report *upsert.Report
}

func (s *Summary) setReport(report *upsert.Report) {
	if report == nil {
		return
	}
	s.Report = report
	s.BatchesWritten = report.BatchesWritten()
	s.BatchesFailed = len(report.FailedBatches())
	s.RecordsWritten = report.Written()
}

// Missing returns the number of rows without an embedding.
func (s *Summary) Missing() int {
	return len(s.MissingRows)
}

// OK reports whether every batch was written.
func (s *Summary) OK() bool {
	return s.BatchesFailed == 0
}

// Print writes a human-readable report to w.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Rows processed:     %d\n", s.Rows)
	if s.Repaired > 0 {
		fmt.Fprintf(w, "Rows repaired:      %d\n", s.Repaired)
	}
	fmt.Fprintf(w, "Missing embeddings: %d", s.Missing())
	if s.Missing() > 0 {
		fmt.Fprintf(w, " (rows %s)", joinRows(s.MissingRows))
	}
	fmt.Fprintln(w)
	if s.Report != nil {
		fmt.Fprintf(w, "Batches written:    %d/%d\n", s.BatchesWritten, len(s.Report.Batches))
		fmt.Fprintf(w, "Records written:    %d\n", s.RecordsWritten)
		for _, b := range s.Report.FailedBatches() {
			fmt.Fprintf(w, "  %s %s (records %d-%d): %v\n", b.Status, b.Span, b.Start, b.End-1, b.Err)
		}
	}
	if s.SnapshotPath != "" {
		fmt.Fprintf(w, "Snapshot:           %s\n", s.SnapshotPath)
	}
	fmt.Fprintf(w, "Duration:           %v\n", s.Duration.Round(time.Millisecond))
}

func joinRows(rows []int) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		parts[i] = strconv.Itoa(row)
	}
	return strings.Join(parts, ", ")
}
