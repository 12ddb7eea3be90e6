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

// Package postgres upserts enriched reviews into a Postgres table with a
// pgvector embedding column. Supabase projects work through their
// Postgres connection string.
//
// The target table must already exist with a unique constraint on
// review_key:
//
//	CREATE TABLE reviews (
//	    review_key             text PRIMARY KEY,
//	    reviewer_name          text,
//	    reviewer_job_title     text,
//	    reviewer_business_size text,
//	    rating                 double precision,
//	    review_date            text,
//	    review_title           text,
//	    review_likes           text,
//	    review_dislikes        text,
//	    review_problem         text,
//	    review_recommendations text,
//	    review_link            text,
//	    embedding              vector(1536)
//	);
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage"
)

// maxParams is the Postgres limit on bind parameters per statement.
const maxParams = 65535

// ErrTooManyRows is returned when a chunk would exceed the bind parameter limit.
var ErrTooManyRows = errors.New("postgres: too many rows for one statement")

// Sink writes records with one multi-row INSERT ... ON CONFLICT per call.
type Sink struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ storage.Sink    = (*Sink)(nil)
	_ storage.Counter = (*Sink)(nil)
)

// Open connects to databaseURL through the pgx driver and checks the connection.
func Open(ctx context.Context, databaseURL string) (*Sink, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres: database URL is empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return NewSink(db), nil
}

// NewSink wraps an existing connection pool. Close closes db.
func NewSink(db *sql.DB) *Sink {
	return &Sink{
		db:     db,
		logger: slog.Default().With("component", "postgres-sink"),
	}
}

// Upsert inserts records into table, updating every column of rows whose
// review_key already exists.
func (s *Sink) Upsert(ctx context.Context, table string, records []*core.EnrichedRecord) error {
	if err := storage.ValidateTable(table); err != nil {
		return err
	}
	records = dedupe(records)
	if len(records) == 0 {
		return nil
	}

	query, args, err := buildUpsert(table, records)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("postgres upsert into %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.logger.Debug("upserted records", "table", table, "count", len(records), "affected", n)
	}
	return nil
}

// Count returns the number of rows in table.
func (s *Sink) Count(ctx context.Context, table string) (int, error) {
	if err := storage.ValidateTable(table); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres count %s: %w", table, err)
	}
	return n, nil
}

// Close closes the connection pool.
func (s *Sink) Close() error {
	return s.db.Close()
}

// dedupe keeps the last record for each key. Postgres rejects an
// ON CONFLICT statement that touches the same row twice.
func dedupe(records []*core.EnrichedRecord) []*core.EnrichedRecord {
	last := make(map[core.ID]int, len(records))
	for i, r := range records {
		last[r.Key()] = i
	}
	if len(last) == len(records) {
		return records
	}
	out := make([]*core.EnrichedRecord, 0, len(last))
	for i, r := range records {
		if last[r.Key()] == i {
			out = append(out, r)
		}
	}
	return out
}

func buildUpsert(table string, records []*core.EnrichedRecord) (string, []any, error) {
	cols := storage.ColumnNames
	if len(records)*len(cols) > maxParams {
		return "", nil, fmt.Errorf("%w: %d rows", ErrTooManyRows, len(records))
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(records)*len(cols))
	for i, record := range records {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		values := storage.Columns(record)
		for j, col := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", len(args)+1)
			args = append(args, sqlValue(col, values[col]))
		}
		b.WriteByte(')')
	}

	b.WriteString(" ON CONFLICT (")
	b.WriteString(storage.ColReviewKey)
	b.WriteString(") DO UPDATE SET ")
	first := true
	for _, col := range cols {
		if col == storage.ColReviewKey {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		b.WriteString(col)
		b.WriteString(" = EXCLUDED.")
		b.WriteString(col)
	}
	return b.String(), args, nil
}

func sqlValue(col string, v any) any {
	if col == storage.ColEmbedding {
		vec, ok := v.([]float32)
		if !ok {
			return nil
		}
		return pgvector.NewVector(vec)
	}
	return v
}
