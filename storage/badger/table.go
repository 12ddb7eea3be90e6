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

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage"
)

// TableStore keeps enriched records in BadgerDB, grouped by table name.
// Each Upsert call is a single read-write transaction.
type TableStore struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var (
	_ storage.Sink    = (*TableStore)(nil)
	_ storage.Counter = (*TableStore)(nil)
)

// NewTableStore creates a TableStore on an already opened backend.
// The caller keeps ownership of the backend.
func NewTableStore(backend *Backend) *TableStore {
	return &TableStore{
		backend: backend,
		logger:  slog.Default().With("component", "badger-table-store"),
	}
}

// Open opens (or creates) a BadgerDB directory and returns a store that
// closes it on Close.
func Open(path string) (*TableStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	store := NewTableStore(backend)
	store.ownsBackend = true
	return store, nil
}

// Upsert writes every record under its review key, overwriting earlier rows.
func (s *TableStore) Upsert(ctx context.Context, table string, records []*core.EnrichedRecord) error {
	if err := storage.ValidateTable(table); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := tx.Set(makeRowKey(table, record.Key()), storage.MarshalRecord(record)); err != nil {
				return fmt.Errorf("row %d: %w", record.Row(), err)
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("badger upsert into %s: %w", table, err)
	}

	s.logger.Debug("upserted records", "table", table, "count", len(records))
	return nil
}

// Get returns the row stored under key.
func (s *TableStore) Get(ctx context.Context, table string, key core.ID) (*core.EnrichedRecord, error) {
	var record *core.EnrichedRecord
	err := s.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRowKey(table, key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalRecord(val)
			return unmarshalErr
		})
	})
	return record, err
}

// List returns every row of table ordered by input row.
func (s *TableStore) List(ctx context.Context, table string) ([]*core.EnrichedRecord, error) {
	var records []*core.EnrichedRecord
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTablePrefix(table)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalRecord(val)
				if err != nil {
					return err
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b *core.EnrichedRecord) int {
		return a.Row() - b.Row()
	})
	return records, nil
}

// Count returns the number of rows in table.
func (s *TableStore) Count(ctx context.Context, table string) (int, error) {
	count := 0
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeTablePrefix(table)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the backend when the store opened it.
func (s *TableStore) Close() error {
	if !s.ownsBackend || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
