package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated by content-based hashing, so identical content
// always maps to the same ID across runs and machines.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Listings use their source URL as content.
func IDFromContent(text string) ID {
	return ID(hash64(text))
}

// Fingerprint is the embedding-cache key for a piece of embeddable content.
// Text fingerprints are computed over the normalized (trimmed, lowercased)
// text; image fingerprints are computed over the image URL, never the bytes,
// so a cache hit avoids refetching.
type Fingerprint uint64

// TextFingerprint returns the cache key for a text input.
func TextFingerprint(text string) Fingerprint {
	return Fingerprint(hash64(strings.ToLower(strings.TrimSpace(text))))
}

// ImageFingerprint returns the cache key for an image URL.
func ImageFingerprint(url string) Fingerprint {
	return Fingerprint(hash64(url))
}

func hash64(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// RoomsUnknown marks a listing whose room count is genuinely absent.
// Zero is a real (parsed but unclassifiable) count, not a missing value.
const RoomsUnknown = -1

// Listing is one rental record in the corpus, or an ephemeral sale-side
// query in the same shape. Corpus listings carry their embeddings; query
// listings leave the vector fields empty and are embedded per request.
type Listing struct {
	Id          ID
	URL         string
	Platform    string // derived from the URL host, e.g. "Booking.com"
	Title       string
	Description string
	Price       float64 // 0 or negative means missing
	Rooms       int     // RoomsUnknown when not derivable
	Location    Location
	ImageURLs   []string
	TextVector  []float32 // unit-norm, populated at corpus build
	ImageVector []float32 // unit-norm average, zero vector if no image embeddable
}

// RepresentativeImage returns the listing's first image URL, or the
// placeholder when the listing has none.
func (l *Listing) RepresentativeImage(placeholder string) string {
	if len(l.ImageURLs) > 0 {
		return l.ImageURLs[0]
	}
	return placeholder
}

// SimilarityMatch represents one vector-index hit: a corpus row index
// paired with its inner-product score.
type SimilarityMatch struct {
	Row   int
	Score float32
}

// CacheEntry is one persisted embedding-cache value: a vector, or the
// null sentinel recording that embedding this input failed permanently
// and must not be retried.
type CacheEntry struct {
	Failed bool
	Vector []float32 // nil when Failed
}

// Manifest summarizes a completed corpus build. It is written only after
// every row is stored and is validated at load time; a missing or
// inconsistent manifest means the build never completed.
type Manifest struct {
	Count     int // number of corpus rows
	TextDims  int
	ImageDims int
	BuiltAt   time.Time
}

// MatchResult is one ranked candidate returned from a match request.
// Constructed per request, never persisted.
type MatchResult struct {
	Id       ID
	URL      string
	Platform string
	Title    string
	Image    string // representative image URL, placeholder if none

	TextScore       float64 // may dip below 0 for strongly dissimilar text
	ImageScore      float64
	StructuredScore float64
	FinalScore      float64
}
