// Package ingest turns raw scraped rental records into the persisted,
// embedded corpus the matcher searches at runtime.
//
// Records arrive from a Source (a scraper JSON export or the scraper's
// Postgres table), are normalized into corpus listings (price digits, room
// heuristics, platform from the URL host, composed descriptions), embedded
// in batches with retry, and written row-aligned with a manifest that is
// only stored once every row is in place.
package ingest
