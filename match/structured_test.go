package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casavia/rentmatch/core"
)

var (
	amsterdam = core.CoordsLocation(52.3676, 4.9041)
	utrecht   = core.CoordsLocation(52.0907, 5.1214)
	rotterdam = core.CoordsLocation(51.9244, 4.4777)
)

func TestRound2(t *testing.T) {
	assert.InDelta(t, 67.0, Round2(67.0), 1e-12)
	assert.InDelta(t, 55.13, Round2(55.1284), 1e-12)
	assert.InDelta(t, 55.13, Round2(55.1337), 1e-12)
	assert.InDelta(t, -12.35, Round2(-12.348), 1e-12)
}

func TestPriceSimilarity(t *testing.T) {
	t.Run("known ratio", func(t *testing.T) {
		// 100/night at 50% occupancy over 365 nights yields 18250 against
		// a 20000 target on a 400k sale.
		assert.InDelta(t, 91.25, PriceSimilarity(100, 400000), 1e-9)
	})

	t.Run("excess yield clamps to 100", func(t *testing.T) {
		assert.InDelta(t, 100.0, PriceSimilarity(200, 500000), 1e-9)
	})

	t.Run("weak yield scores low", func(t *testing.T) {
		assert.InDelta(t, 3.65, PriceSimilarity(10, 1000000), 1e-9)
	})

	t.Run("missing prices are neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, PriceSimilarity(0, 400000))
		assert.Equal(t, 50.0, PriceSimilarity(100, 0))
		assert.Equal(t, 50.0, PriceSimilarity(-5, 400000))
		assert.Equal(t, 50.0, PriceSimilarity(0, 0))
	})

	t.Run("stays in range", func(t *testing.T) {
		for _, rental := range []float64{0.01, 1, 50, 500, 100000} {
			for _, sale := range []float64{1, 1000, 250000, 10000000} {
				score := PriceSimilarity(rental, sale)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 100.0)
			}
		}
	})
}

func TestRoomsSimilarity(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		for _, rooms := range []int{0, 1, 2, 5, 12} {
			assert.Equal(t, 100.0, RoomsSimilarity(rooms, rooms), "rooms=%d", rooms)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		pairs := [][2]int{{1, 2}, {0, 3}, {2, 5}, {4, 4}}
		for _, p := range pairs {
			assert.Equal(t, RoomsSimilarity(p[0], p[1]), RoomsSimilarity(p[1], p[0]))
		}
	})

	t.Run("step values", func(t *testing.T) {
		assert.Equal(t, 100.0, RoomsSimilarity(3, 3))
		assert.Equal(t, 70.0, RoomsSimilarity(3, 2))
		assert.Equal(t, 40.0, RoomsSimilarity(3, 1))
		assert.Equal(t, 10.0, RoomsSimilarity(3, 0))
		assert.Equal(t, 10.0, RoomsSimilarity(1, 8))
	})

	t.Run("unknown side is neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, RoomsSimilarity(core.RoomsUnknown, 3))
		assert.Equal(t, 50.0, RoomsSimilarity(3, core.RoomsUnknown))
		assert.Equal(t, 50.0, RoomsSimilarity(core.RoomsUnknown, core.RoomsUnknown))
	})

	t.Run("zero is a real count", func(t *testing.T) {
		assert.Equal(t, 100.0, RoomsSimilarity(0, 0))
		assert.Equal(t, 70.0, RoomsSimilarity(0, 1))
	})
}

func TestLocationSimilarity(t *testing.T) {
	t.Run("same point", func(t *testing.T) {
		assert.Equal(t, 100.0, LocationSimilarity(amsterdam, amsterdam))
	})

	t.Run("nearby coordinates", func(t *testing.T) {
		// Two points inside Amsterdam, well under 5 km apart.
		a := core.CoordsLocation(52.3676, 4.9041)
		b := core.CoordsLocation(52.3702, 4.8952)
		assert.Equal(t, 100.0, LocationSimilarity(a, b))
	})

	t.Run("same region", func(t *testing.T) {
		// Amsterdam to Utrecht is roughly 35 km.
		assert.Equal(t, 60.0, LocationSimilarity(amsterdam, utrecht))
	})

	t.Run("distant coordinates", func(t *testing.T) {
		// Amsterdam to Rotterdam is roughly 57 km.
		assert.Equal(t, 20.0, LocationSimilarity(amsterdam, rotterdam))
	})

	t.Run("non-finite coordinates are neutral", func(t *testing.T) {
		broken := core.CoordsLocation(math.NaN(), 4.9041)
		assert.Equal(t, 50.0, LocationSimilarity(broken, amsterdam))
		assert.Equal(t, 50.0, LocationSimilarity(amsterdam, core.CoordsLocation(52.0, math.Inf(1))))
	})

	t.Run("names match case-insensitively", func(t *testing.T) {
		assert.Equal(t, 100.0, LocationSimilarity(core.NamedLocation("Amsterdam"), core.NamedLocation("amsterdam")))
		assert.Equal(t, 40.0, LocationSimilarity(core.NamedLocation("Amsterdam"), core.NamedLocation("Rotterdam")))
	})

	t.Run("mixed forms compare as strings", func(t *testing.T) {
		assert.Equal(t, 40.0, LocationSimilarity(core.NamedLocation("Amsterdam"), amsterdam))
	})

	t.Run("missing side is neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, LocationSimilarity(core.Location{}, amsterdam))
		assert.Equal(t, 50.0, LocationSimilarity(core.NamedLocation("Amsterdam"), core.Location{}))
		assert.Equal(t, 50.0, LocationSimilarity(core.Location{}, core.Location{}))
	})
}

func TestStructuredScore(t *testing.T) {
	t.Run("all fields missing is fully neutral", func(t *testing.T) {
		rental := &core.Listing{Rooms: core.RoomsUnknown}
		sale := &core.Listing{Rooms: core.RoomsUnknown}
		assert.Equal(t, 50.0, StructuredScore(rental, sale))
	})

	t.Run("averages the three components", func(t *testing.T) {
		rental := &core.Listing{
			Price:    100,
			Rooms:    2,
			Location: core.NamedLocation("Amsterdam"),
		}
		sale := &core.Listing{
			Price:    400000,
			Rooms:    3,
			Location: core.NamedLocation("Amsterdam"),
		}

		// price 91.25, rooms 70, location 100
		assert.InDelta(t, Round2((91.25+70+100)/3), StructuredScore(rental, sale), 1e-9)
	})
}

func TestHaversineKm(t *testing.T) {
	// Identity.
	assert.InDelta(t, 0.0, haversineKm(52.0, 4.0, 52.0, 4.0), 1e-9)

	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.2, haversineKm(52.0, 4.0, 53.0, 4.0), 0.5)

	// Symmetry.
	assert.InDelta(t,
		haversineKm(52.3676, 4.9041, 51.9244, 4.4777),
		haversineKm(51.9244, 4.4777, 52.3676, 4.9041),
		1e-9)
}
