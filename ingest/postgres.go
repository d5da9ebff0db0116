package ingest

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresSource reads raw listings from the scraper collaborators'
// PostgreSQL listings table. The table is the scrapers' write target, so
// its schema is theirs: price and rating are numeric columns and there is
// no room-type or breakfast field. Both are scanned into the raw record's
// string fields; normalization handles the rest.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource connects to PostgreSQL with the given DSN.
func NewPostgresSource(dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

// Load fetches every stored listing in insertion order. Ordering by the
// serial id keeps repeated builds row-aligned with each other.
func (s *PostgresSource) Load(ctx context.Context) ([]*RawListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, location, price, rating, description
		FROM listings
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query listings: %w", err)
	}
	defer rows.Close()

	var listings []*RawListing
	for rows.Next() {
		raw := &RawListing{}
		if err := rows.Scan(
			&raw.Link, &raw.Name, &raw.Location,
			&raw.Price, &raw.Rating, &raw.Description,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, raw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return listings, nil
}

// Close releases the database connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
