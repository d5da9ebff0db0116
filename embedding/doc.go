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


// Package embedding provides cache-aware embedding services layered over
// the raw oracle clients.
//
// TextEmbedder and ImageEmbedder consult the fingerprint cache before
// invoking the oracle, batch all misses into a single oracle call, and
// write fresh vectors back so any given input is embedded at most once.
// Every vector leaving this package is unit-norm.
//
// Images are fetched by ImageFetcher with a bounded response size and a
// short per-image timeout, decoded, and downscaled to fit the model's
// input resolution. A URL whose fetch or decode fails is recorded in the
// cache as a terminal null and never retried; oracle failures are
// systemic and propagate to the caller without touching the cache.
package embedding
