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


package badger

import "github.com/casavia/rentmatch/storage"

// NewMemoryRepositories creates in-memory cache and corpus repositories for testing.
// Returns textCache, imageCache, corpus, backend, and error.
// Caller must close the backend when done.
func NewMemoryRepositories() (storage.CacheRepository, storage.CacheRepository, storage.CorpusRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	textCache := NewTextCacheRepository(backend)
	imageCache := NewImageCacheRepository(backend)
	corpus := NewCorpusRepository(backend)

	return textCache, imageCache, corpus, backend, nil
}
