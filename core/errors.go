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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidListing indicates a Listing failed validation.
	ErrInvalidListing = errors.New("invalid listing")

	// ErrEmptyURL indicates the URL field is empty.
	ErrEmptyURL = errors.New("listing url cannot be empty")

	// ErrNegativePrice indicates a price below zero. Zero itself is the
	// missing-price sentinel and is allowed.
	ErrNegativePrice = errors.New("price cannot be negative")

	// ErrInvalidRooms indicates a room count below RoomsUnknown.
	ErrInvalidRooms = errors.New("invalid room count")

	// ErrVectorDimension indicates paired embedding vectors whose
	// dimensions disagree with the rest of the corpus.
	ErrVectorDimension = errors.New("embedding dimension mismatch")
)
