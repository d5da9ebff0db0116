// Copyright 2025 Casavia Labs
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


// Package storage provides the persistence abstraction layer for RentMatch.
//
// This package defines repository interfaces that decouple storage
// implementation from the matching pipeline. Two kinds of state are
// persisted:
//
//   - CacheRepository: one embedding-cache namespace (text or image),
//     a fingerprint -> vector-or-null table that only ever grows
//   - CorpusRepository: the built corpus, listings keyed by row index
//     plus a manifest written after the final row
//
// # Row Alignment
//
// The corpus row order is load-bearing: the vector indices are built
// from listings in row order, and a search result's row index is used
// to look the listing back up. CorpusRepository therefore exposes only
// order-preserving operations (append rows, load all rows) and refuses
// to load a corpus whose stored keys are not contiguous from zero.
//
// # Serialization
//
// Persisted records are encoded with hand-written mus serializers
// (see serialization.go). Field order is the wire format.
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	textCache := badger.NewTextCacheRepository(backend)
//
// Use in tests with in-memory storage:
//
//	textCache, imageCache, corpus, backend, err := badger.NewMemoryRepositories()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
