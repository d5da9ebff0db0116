package storage

import (
	"testing"
	"time"

	"github.com/casavia/rentmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalCacheEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *core.CacheEntry
	}{
		{
			name:  "vector entry",
			entry: &core.CacheEntry{Vector: []float32{0.1, -0.5, 0.83, 0}},
		},
		{
			name:  "failed null entry",
			entry: &core.CacheEntry{Failed: true},
		},
		{
			name:  "empty vector entry",
			entry: &core.CacheEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalCacheEntry(tt.entry)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalCacheEntry(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry.Failed, decoded.Failed)
			assert.Equal(t, tt.entry.Vector, decoded.Vector)
		})
	}
}

func TestUnmarshalCacheEntry_Truncated(t *testing.T) {
	full := MarshalCacheEntry(&core.CacheEntry{Vector: []float32{1, 2, 3}})

	_, err := UnmarshalCacheEntry(full[:len(full)-2])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalListing(t *testing.T) {
	tests := []struct {
		name    string
		listing *core.Listing
	}{
		{
			name: "full listing",
			listing: &core.Listing{
				Id:          core.IDFromContent("https://www.booking.com/hotel/nl/canal-view.html"),
				URL:         "https://www.booking.com/hotel/nl/canal-view.html",
				Platform:    "Booking.com",
				Title:       "Canal View Apartment",
				Description: "Canal View Apartment. Located in Amsterdam. Two-bedroom apartment.",
				Price:       145.50,
				Rooms:       2,
				Location:    core.CoordsLocation(52.3676, 4.9041),
				ImageURLs:   []string{"https://cdn.example.com/1.jpg", "https://cdn.example.com/2.jpg"},
				TextVector:  []float32{0.6, 0.8},
				ImageVector: []float32{0, 1},
			},
		},
		{
			name: "minimal listing",
			listing: &core.Listing{
				Id:  core.ID(7),
				URL: "https://example.com/bare",
			},
		},
		{
			name: "named location and unknown rooms",
			listing: &core.Listing{
				Id:       core.ID(9),
				URL:      "https://example.com/9",
				Rooms:    core.RoomsUnknown,
				Location: core.NamedLocation("Amsterdam, Netherlands"),
			},
		},
		{
			name: "zero image vector",
			listing: &core.Listing{
				Id:          core.ID(11),
				URL:         "https://example.com/11",
				TextVector:  []float32{1, 0, 0},
				ImageVector: []float32{0, 0, 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalListing(tt.listing)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalListing(data)
			require.NoError(t, err)
			assert.Equal(t, tt.listing, decoded)
		})
	}
}

func TestUnmarshalListing_Invalid(t *testing.T) {
	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalListing(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})

	t.Run("truncated data", func(t *testing.T) {
		full := MarshalListing(&core.Listing{
			Id:         core.ID(1),
			URL:        "https://example.com/1",
			TextVector: []float32{0.25, 0.5},
		})

		_, err := UnmarshalListing(full[:len(full)/2])
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	builtAt := time.Now().UTC().Truncate(time.Microsecond)

	m := &core.Manifest{
		Count:     1523,
		TextDims:  384,
		ImageDims: 512,
		BuiltAt:   builtAt,
	}

	data := MarshalManifest(m)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalManifest(data)
	require.NoError(t, err)
	assert.Equal(t, m.Count, decoded.Count)
	assert.Equal(t, m.TextDims, decoded.TextDims)
	assert.Equal(t, m.ImageDims, decoded.ImageDims)
	assert.True(t, decoded.BuiltAt.Equal(builtAt), "BuiltAt should survive the round trip")
}

func TestMarshalManifest_EmptyCorpus(t *testing.T) {
	m := &core.Manifest{BuiltAt: time.Unix(0, 0)}

	decoded, err := UnmarshalManifest(MarshalManifest(m))
	require.NoError(t, err)
	assert.Equal(t, 0, decoded.Count)
}
