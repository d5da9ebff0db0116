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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")

	// ErrCorpusMisaligned indicates corpus rows whose stored keys are not
	// the contiguous sequence 0..n-1. The row order is the alignment
	// contract with the vector indices, so this is unrecoverable.
	ErrCorpusMisaligned = errors.New("corpus rows out of alignment")

	// ErrManifestMismatch indicates a manifest that disagrees with the
	// stored rows, i.e. an interrupted or corrupt build.
	ErrManifestMismatch = errors.New("manifest does not match stored corpus")
)
