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

import "fmt"

// ValidateListing validates a corpus Listing according to domain rules.
//
// Validation rules:
//   - URL must not be empty (it is the listing's identity source)
//   - Price must not be negative (0 is the missing sentinel)
//   - Rooms must be RoomsUnknown or a non-negative count
//
// NOT validated (populated during corpus build):
//   - TextVector / ImageVector (empty until embedded)
//   - Platform, Title, Description, Location (all may be blank; the
//     structured scorers treat blanks as neutral)
func ValidateListing(listing *Listing) error {
	if listing == nil {
		return fmt.Errorf("%w: listing is nil", ErrInvalidListing)
	}

	if listing.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptyURL)
	}

	if listing.Price < 0 {
		return fmt.Errorf("%w: %w: %g", ErrInvalidListing, ErrNegativePrice, listing.Price)
	}

	if listing.Rooms < RoomsUnknown {
		return fmt.Errorf("%w: %w: %d", ErrInvalidListing, ErrInvalidRooms, listing.Rooms)
	}

	return nil
}
