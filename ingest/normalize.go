package ingest

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/casavia/rentmatch/core"
)

var (
	nonPriceChars = regexp.MustCompile(`[^\d.]`)
	roomCountRe   = regexp.MustCompile(`(?i)(\d+)\s*[-_]?\s*(bedroom|room|apartment|suite)`)
)

// ParsePrice extracts a price from a scraped string like "PKR 55,776".
// Everything except digits and dots is stripped before parsing; anything
// still unparseable maps to 0, the missing-price sentinel.
func ParsePrice(s string) float64 {
	numeric := nonPriceChars.ReplaceAllString(s, "")
	if numeric == "" {
		return 0
	}

	price, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0
	}
	return price
}

// ParseRooms derives a room count from a free-text room type such as
// "3-Room Apartment" or "Deluxe Double Room". An explicit digit wins;
// otherwise common type keywords map to known counts. Returns 0 when
// nothing matches, and scoring treats that as a real zero-room count.
func ParseRooms(roomType string) int {
	if roomType == "" {
		return 0
	}

	if m := roomCountRe.FindStringSubmatch(roomType); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}

	lower := strings.ToLower(roomType)
	switch {
	case strings.Contains(lower, "studio"):
		return 1
	case strings.Contains(lower, "single"):
		return 1
	case strings.Contains(lower, "double") && !strings.Contains(lower, "twin"):
		return 2
	case strings.Contains(lower, "twin"):
		return 2
	case strings.Contains(lower, "triple"):
		return 3
	case strings.Contains(lower, "quadruple"), strings.Contains(lower, "family"):
		return 4
	}

	return 0
}

// PlatformFromURL labels a listing with the site it came from: the first
// label of the URL host, capitalized. booking.com keeps its conventional
// "Booking.com" form, and unparseable URLs fall back to it as the dominant
// source.
func PlatformFromURL(rawURL string) string {
	const defaultPlatform = "Booking.com"

	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultPlatform
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	if host == "" {
		return defaultPlatform
	}

	label := strings.Split(host, ".")[0]
	if label == "" {
		return defaultPlatform
	}

	if label = capitalize(label); label == "Booking" {
		return defaultPlatform
	}
	return label
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// ComposeDescription builds embedding prose for records whose scraper
// captured no free-text description. Every field contributes, with stand-in
// phrasing for gaps, so listings differing in any field embed differently.
func ComposeDescription(raw *RawListing) string {
	name := raw.Name
	if name == "" {
		name = "Unnamed Listing"
	}
	location := raw.Location
	if location == "" {
		location = "Unknown Location"
	}
	roomType := raw.RoomType
	if roomType == "" {
		roomType = "N/A"
	}
	rating := raw.Rating
	if rating == "" {
		rating = "No rating"
	}
	breakfast := raw.Breakfast
	if breakfast == "" {
		breakfast = "Not specified"
	}

	return fmt.Sprintf("%s. Located in %s. Room type: %s. Rating: %s. Breakfast: %s.",
		name, location, roomType, rating, breakfast)
}

// Normalize maps a raw scraped record onto a corpus listing. Vectors are
// left empty for the embedding phases to fill, and the id is
// content-addressed from the URL so rebuilds assign stable identities.
// The result may still fail listing validation (a record with no URL, for
// instance); the builder decides what to do with those.
func Normalize(raw *RawListing) *core.Listing {
	title := raw.Name
	if title == "" {
		title = "Unnamed Rental Listing"
	}

	description := raw.Description
	if description == "" {
		description = ComposeDescription(raw)
	}

	return &core.Listing{
		Id:          core.IDFromContent(raw.Link),
		URL:         raw.Link,
		Platform:    PlatformFromURL(raw.Link),
		Title:       title,
		Description: description,
		Price:       ParsePrice(raw.Price),
		Rooms:       ParseRooms(raw.RoomType),
		Location:    core.ParseLocation(raw.Location),
		ImageURLs:   raw.Images,
	}
}
