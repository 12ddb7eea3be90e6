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

// Package qdrant upserts enriched reviews as points into a Qdrant collection.
// The collection is the table name and must already exist with a vector size
// matching the embedding model.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/reviewvec/core"
	"github.com/poiesic/reviewvec/storage"
	"github.com/qdrant/go-client/qdrant"
)

// DefaultPort is the Qdrant gRPC port.
const DefaultPort = 6334

// Config describes how to reach Qdrant.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// Sink writes one points upsert per call and waits for it to be applied.
type Sink struct {
	client *qdrant.Client
	logger *slog.Logger
}

var _ storage.Sink = (*Sink)(nil)

// Open creates a gRPC client for cfg.
func Open(cfg Config) (*Sink, error) {
	if cfg.Host == "" {
		return nil, errors.New("qdrant: host is empty")
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: creating client: %w", err)
	}
	return &Sink{
		client: client,
		logger: slog.Default().With("component", "qdrant-sink"),
	}, nil
}

// Upsert sends every record that has a vector. A point cannot exist
// without a vector, so records with a missing embedding are skipped and logged.
func (s *Sink) Upsert(ctx context.Context, collection string, records []*core.EnrichedRecord) error {
	if err := storage.ValidateTable(collection); err != nil {
		return err
	}

	points, skipped := buildPoints(records)
	if len(skipped) > 0 {
		s.logger.Warn("skipping records without embeddings", "collection", collection, "rows", skipped)
	}
	if len(points) == 0 {
		return nil
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert into %s: %w", collection, err)
	}
	s.logger.Debug("upserted points", "collection", collection, "count", len(points))
	return nil
}

// Close closes the gRPC connection.
func (s *Sink) Close() error {
	return s.client.Close()
}

// buildPoints converts records into points keyed by review key and returns
// the rows that were left out.
func buildPoints(records []*core.EnrichedRecord) ([]*qdrant.PointStruct, []int) {
	points := make([]*qdrant.PointStruct, 0, len(records))
	var skipped []int
	for _, record := range records {
		if !record.HasVector() {
			skipped = append(skipped, record.Row())
			continue
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(record.Key())),
			Vectors: qdrant.NewVectors(record.Vector()...),
			Payload: qdrant.NewValueMap(payload(record)),
		})
	}
	return points, skipped
}

// payload holds every column except the vector. Null values are omitted.
func payload(record *core.EnrichedRecord) map[string]any {
	cols := storage.Columns(record)
	out := make(map[string]any, len(cols))
	for name, v := range cols {
		if name == storage.ColEmbedding || v == nil {
			continue
		}
		out[name] = v
	}
	return out
}
