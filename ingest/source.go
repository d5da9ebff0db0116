package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// RawListing is one scraped rental record as the scrapers emit it. Field
// names and JSON keys follow the Booking.com scraper's export format;
// records from other collaborators are mapped into the same shape. Every
// field is optional and may be malformed; normalization tolerates both.
type RawListing struct {
	Link      string `json:"Link"`
	Name      string `json:"Name"`
	Location  string `json:"Location"`
	Price     string `json:"Price"`
	RoomType  string `json:"Room Type"`
	Rating    string `json:"Rating"`
	Breakfast string `json:"Breakfast"`

	// Description is prose scraped from the listing page. When blank, a
	// description is composed from the fields above.
	Description string `json:"Description,omitempty"`

	// Images holds listing photo URLs when the scraper captured any.
	Images []string `json:"Images,omitempty"`
}

// Source yields raw rental records for a corpus build.
type Source interface {
	Load(ctx context.Context) ([]*RawListing, error)
}

// JSONSource reads raw listings from a scraper JSON export, a single
// top-level array of records.
type JSONSource struct {
	path string
}

// NewJSONSource creates a source backed by the JSON file at path.
func NewJSONSource(path string) *JSONSource {
	return &JSONSource{path: path}
}

// Load reads and decodes the whole export file.
func (s *JSONSource) Load(ctx context.Context) ([]*RawListing, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read listings file: %w", err)
	}

	var raw []*RawListing
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse listings file %s: %w", s.path, err)
	}

	return raw, nil
}
