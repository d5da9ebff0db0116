package core

import (
	"math"
	"strconv"
	"strings"
)

// LocationKind discriminates the Location variant.
type LocationKind int

const (
	// LocationNone means no usable location was provided.
	LocationNone LocationKind = iota
	// LocationNamed is a free-text place name.
	LocationNamed
	// LocationCoords is a latitude/longitude pair in decimal degrees.
	LocationCoords
)

// Location is a tagged variant over the three shapes a scraped location
// field takes: absent, a place name, or a coordinate pair. Only the fields
// belonging to the active Kind are meaningful.
type Location struct {
	Kind LocationKind
	Name string
	Lat  float64
	Lon  float64
}

// NamedLocation builds a place-name location.
func NamedLocation(name string) Location {
	return Location{Kind: LocationNamed, Name: name}
}

// CoordsLocation builds a coordinate location.
func CoordsLocation(lat, lon float64) Location {
	return Location{Kind: LocationCoords, Lat: lat, Lon: lon}
}

// ParseLocation interprets a raw scraped location string.
// A comma-separated pair whose halves both parse as floats becomes
// coordinates; any other non-blank string is a place name. Note that
// "Amsterdam, Netherlands" has two comma parts but fails the float
// parse, so it stays a name.
func ParseLocation(raw string) Location {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Location{}
	}

	if parts := strings.Split(s, ","); len(parts) == 2 {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if latErr == nil && lonErr == nil {
			return Location{Kind: LocationCoords, Lat: lat, Lon: lon}
		}
	}

	return Location{Kind: LocationNamed, Name: s}
}

// IsZero reports whether no location was provided.
func (l Location) IsZero() bool {
	return l.Kind == LocationNone
}

// HasCoords reports whether the location carries finite coordinates.
// ParseFloat accepts "nan" and "inf", so LocationCoords alone does not
// guarantee the pair is usable for distance math.
func (l Location) HasCoords() bool {
	return l.Kind == LocationCoords && isFinite(l.Lat) && isFinite(l.Lon)
}

// String renders the canonical form: empty for none, the name for named
// locations, and "lat,lon" for coordinates. Canonical forms are what
// name-vs-coordinate comparisons and serialization operate on.
func (l Location) String() string {
	switch l.Kind {
	case LocationNamed:
		return l.Name
	case LocationCoords:
		return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lon, 'f', -1, 64)
	default:
		return ""
	}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
