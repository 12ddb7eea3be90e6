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

// Package storage defines the persistence sink that enriched review records
// are upserted into.
//
// A Sink receives one chunk of records per call and must write it as a unit,
// updating rows whose key already exists. Implementations live in
// sub-packages:
//
//   - storage/badger: embedded key-value table store, also used in tests
//   - storage/postgres: Postgres or Supabase tables with a pgvector column
//   - storage/qdrant: Qdrant collections, one point per review
//
// Constructors return concrete types; callers hold them as storage.Sink.
//
// # Usage
//
//	sink, err := postgres.Open(ctx, os.Getenv("DATABASE_URL"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close()
//
//	err = sink.Upsert(ctx, "reviews", records)
//
// # Thread Safety
//
// Sinks may be shared between goroutines, but the upsert writer only ever
// issues one call at a time.
package storage
