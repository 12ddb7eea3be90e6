package csvio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/reviewvec/core"
)

// SnapshotHeaders lists the snapshot columns in write order.
var SnapshotHeaders = append(append([]string(nil), ReviewHeaders...), HeaderEmbedding, HeaderEmbeddingError)

// WriteSnapshot writes records to path. The file is written to a temporary
// name in the same directory and renamed into place, so readers never see a
// partial snapshot.
func WriteSnapshot(path string, records []*core.EnrichedRecord) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = WriteSnapshotTo(tmp, records); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// WriteSnapshotTo writes the snapshot table to w.
func WriteSnapshotTo(w io.Writer, records []*core.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SnapshotHeaders); err != nil {
		return fmt.Errorf("snapshot header: %w", err)
	}

	row := make([]string, len(SnapshotHeaders))
	for _, record := range records {
		review := record.Review()
		for i, h := range ReviewHeaders {
			row[i] = *field(&review, h)
		}

		embedding, reason := "", record.MissingReason()
		if record.HasVector() {
			data, err := json.Marshal(record.Vector())
			if err != nil {
				return fmt.Errorf("snapshot row %d: %w", record.Row(), err)
			}
			embedding = string(data)
		}
		row[len(ReviewHeaders)] = embedding
		row[len(ReviewHeaders)+1] = reason

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("snapshot row %d: %w", record.Row(), err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSnapshot parses a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) ([]*core.EnrichedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	records, err := ReadSnapshotFrom(f)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return records, nil
}

// ReadSnapshotFrom parses a snapshot table from r. An empty embedding cell
// reads as a missing embedding whose reason is the embedding_error cell.
func ReadSnapshotFrom(r io.Reader) ([]*core.EnrichedRecord, error) {
	var records []*core.EnrichedRecord
	err := readTable(r, func(row int, get func(string) (string, bool)) error {
		review := core.Review{Row: row}
		for _, h := range ReviewHeaders {
			if v, ok := get(h); ok {
				*field(&review, h) = v
			}
		}

		cell, _ := get(HeaderEmbedding)
		reason, _ := get(HeaderEmbeddingError)
		emb, err := parseEmbedding(cell, reason)
		if err != nil {
			return err
		}
		records = append(records, core.NewEnrichedRecord(review, emb))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func parseEmbedding(cell, reason string) (core.Embedding, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return core.Missing(reason), nil
	}
	var vector []float32
	if err := json.Unmarshal([]byte(cell), &vector); err != nil {
		return core.Embedding{}, fmt.Errorf("%w: %v", ErrInvalidEmbedding, err)
	}
	if len(vector) == 0 {
		return core.Missing(reason), nil
	}
	return core.Present(vector), nil
}
