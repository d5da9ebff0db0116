package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSource_Load(t *testing.T) {
	// A fragment of a real scraper export, spaces in keys included.
	payload := `[
		{
			"Link": "https://www.booking.com/hotel/nl/loft.html",
			"Name": "Lovely Canal Loft",
			"Location": "Amsterdam",
			"Price": "PKR 55,776",
			"Room Type": "Two-Bedroom Apartment",
			"Rating": "8.5",
			"Breakfast": "Included"
		},
		{
			"Link": "https://www.booking.com/hotel/nl/cabin.html",
			"Name": "Forest Cabin",
			"Location": "Utrecht",
			"Price": "",
			"Room Type": "Studio",
			"Rating": "",
			"Breakfast": "",
			"Images": ["https://cf.example.com/cabin.jpg"]
		}
	]`

	path := filepath.Join(t.TempDir(), "booking_rentals.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	source := NewJSONSource(path)
	raws, err := source.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "Lovely Canal Loft", raws[0].Name)
	assert.Equal(t, "Two-Bedroom Apartment", raws[0].RoomType)
	assert.Equal(t, "PKR 55,776", raws[0].Price)
	assert.Empty(t, raws[0].Images)

	assert.Equal(t, "Forest Cabin", raws[1].Name)
	assert.Equal(t, []string{"https://cf.example.com/cabin.jpg"}, raws[1].Images)
}

func TestJSONSource_MissingFile(t *testing.T) {
	source := NewJSONSource(filepath.Join(t.TempDir(), "nope.json"))

	_, err := source.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestJSONSource_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	source := NewJSONSource(path)
	_, err := source.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
