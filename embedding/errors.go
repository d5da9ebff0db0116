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


package embedding

import "errors"

var (
	// ErrCacheRequired is returned when a cache repository is not provided.
	ErrCacheRequired = errors.New("cache repository required")

	// ErrOracleRequired is returned when an embedding oracle is not provided.
	ErrOracleRequired = errors.New("embedding oracle required")

	// ErrFetcherRequired is returned when an image fetcher is not provided.
	ErrFetcherRequired = errors.New("image fetcher required")

	// ErrImageTooLarge is returned when an image response exceeds the
	// configured size limit, whether declared up front or detected mid-stream.
	ErrImageTooLarge = errors.New("image exceeds size limit")
)
