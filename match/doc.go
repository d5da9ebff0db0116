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


// Package match implements the online matching pipeline: embed a sale
// listing, retrieve the nearest rentals per modality, fuse the candidate
// sets, score every candidate on text, image, and structured similarity,
// and return the ranked, URL-deduplicated top results.
//
// Retrieval is exact inner-product search over the corpus indices.
// Structured scoring never fails; a missing or malformed field on either
// side scores a neutral 50. The final score is a weighted blend of the
// three sub-scores (text 0.45, image 0.35, structured 0.20 by default),
// rounded to two decimals.
package match
