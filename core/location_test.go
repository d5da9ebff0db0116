package core

import (
	"math"
	"testing"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Location
	}{
		{
			name: "coordinate pair",
			raw:  "52.3676,4.9041",
			want: Location{Kind: LocationCoords, Lat: 52.3676, Lon: 4.9041},
		},
		{
			name: "coordinate pair with spaces",
			raw:  " 52.3676 , 4.9041 ",
			want: Location{Kind: LocationCoords, Lat: 52.3676, Lon: 4.9041},
		},
		{
			name: "negative coordinates",
			raw:  "-33.8688,151.2093",
			want: Location{Kind: LocationCoords, Lat: -33.8688, Lon: 151.2093},
		},
		{
			name: "place name",
			raw:  "Amsterdam",
			want: Location{Kind: LocationNamed, Name: "Amsterdam"},
		},
		{
			name: "place name with comma",
			raw:  "Amsterdam, Netherlands",
			want: Location{Kind: LocationNamed, Name: "Amsterdam, Netherlands"},
		},
		{
			name: "three comma parts stay a name",
			raw:  "1,2,3",
			want: Location{Kind: LocationNamed, Name: "1,2,3"},
		},
		{
			name: "empty",
			raw:  "",
			want: Location{},
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: Location{},
		},
		{
			name: "name trimmed",
			raw:  "  Utrecht  ",
			want: Location{Kind: LocationNamed, Name: "Utrecht"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocation(tt.raw)
			if got != tt.want {
				t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseLocation_NonFinite(t *testing.T) {
	// ParseFloat accepts "nan"; the pair still parses as coordinates but
	// must be rejected by HasCoords so distance math never sees it.
	loc := ParseLocation("nan,nan")
	if loc.Kind != LocationCoords {
		t.Fatalf("ParseLocation(nan,nan).Kind = %v, want LocationCoords", loc.Kind)
	}
	if !math.IsNaN(loc.Lat) {
		t.Errorf("ParseLocation(nan,nan).Lat = %v, want NaN", loc.Lat)
	}
	if loc.HasCoords() {
		t.Error("HasCoords() should be false for NaN coordinates")
	}

	if ParseLocation("inf,4.9").HasCoords() {
		t.Error("HasCoords() should be false for infinite coordinates")
	}
}

func TestLocation_HasCoords(t *testing.T) {
	if !CoordsLocation(52.4, 4.9).HasCoords() {
		t.Error("HasCoords() should be true for finite coordinates")
	}
	if NamedLocation("Amsterdam").HasCoords() {
		t.Error("HasCoords() should be false for a named location")
	}
	if (Location{}).HasCoords() {
		t.Error("HasCoords() should be false for an absent location")
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want string
	}{
		{
			name: "none",
			loc:  Location{},
			want: "",
		},
		{
			name: "named",
			loc:  NamedLocation("Rotterdam"),
			want: "Rotterdam",
		},
		{
			name: "coordinates",
			loc:  CoordsLocation(52.3676, 4.9041),
			want: "52.3676,4.9041",
		},
		{
			name: "negative coordinates",
			loc:  CoordsLocation(-1.5, -2.25),
			want: "-1.5,-2.25",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.loc.String()
			if got != tt.want {
				t.Errorf("Location.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocation_StringParseRoundTrip(t *testing.T) {
	orig := CoordsLocation(52.3676, 4.9041)
	parsed := ParseLocation(orig.String())

	if parsed != orig {
		t.Errorf("round trip = %+v, want %+v", parsed, orig)
	}
}
