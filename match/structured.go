// Copyright 2025 Casavia Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package match

import (
	"math"
	"strings"

	"github.com/casavia/rentmatch/core"
)

// neutralScore is returned whenever a structured field is missing or
// malformed on either side. Structured comparisons never fail.
const neutralScore = 50.0

const (
	// Yield model assumptions: half the nights let, priced per night
	// across the year, measured against a 5% gross yield on the sale.
	occupancyRate  = 0.5
	periodsPerYear = 365
	targetYield    = 0.05
)

const earthRadiusKm = 6371.0

// Round2 rounds to two decimal places, the precision all scores are
// reported in.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// PriceSimilarity scores how well a rental's nightly price services the
// target yield on a sale price. The score is the implied-revenue to
// target-revenue ratio scaled into [0, 100]. A non-positive price on
// either side is neutral.
func PriceSimilarity(rentalPrice, salePrice float64) float64 {
	if rentalPrice <= 0 || salePrice <= 0 {
		return neutralScore
	}

	annualRevenue := rentalPrice * occupancyRate * periodsPerYear
	target := salePrice * targetYield

	return Round2(math.Min(100, math.Max(0, annualRevenue/target*100)))
}

// RoomsSimilarity maps the room-count difference onto a step scale:
// equal 100, off by one 70, off by two 40, further 10. An unknown count
// (negative sentinel) on either side is neutral; zero is a real count.
func RoomsSimilarity(rentalRooms, saleRooms int) float64 {
	if rentalRooms < 0 || saleRooms < 0 {
		return neutralScore
	}

	diff := rentalRooms - saleRooms
	if diff < 0 {
		diff = -diff
	}

	switch diff {
	case 0:
		return 100
	case 1:
		return 70
	case 2:
		return 40
	default:
		return 10
	}
}

// LocationSimilarity compares two locations. Two coordinate pairs score
// by great-circle distance: within 5 km 100, within 50 km 60, else 20.
// Any other populated combination compares canonical string forms
// case-insensitively: exact match 100, mismatch 40. A missing location
// on either side, or a coordinate pair with non-finite components, is
// neutral.
func LocationSimilarity(rental, sale core.Location) float64 {
	if rental.IsZero() || sale.IsZero() {
		return neutralScore
	}

	if rental.Kind == core.LocationCoords && sale.Kind == core.LocationCoords {
		if !rental.HasCoords() || !sale.HasCoords() {
			return neutralScore
		}
		switch km := haversineKm(rental.Lat, rental.Lon, sale.Lat, sale.Lon); {
		case km <= 5:
			return 100
		case km <= 50:
			return 60
		default:
			return 20
		}
	}

	if strings.EqualFold(strings.TrimSpace(rental.String()), strings.TrimSpace(sale.String())) {
		return 100
	}
	return 40
}

// StructuredScore averages the three structured similarities between a
// rental candidate and the sale query, rounded to two decimals.
func StructuredScore(rental, sale *core.Listing) float64 {
	price := PriceSimilarity(rental.Price, sale.Price)
	rooms := RoomsSimilarity(rental.Rooms, sale.Rooms)
	location := LocationSimilarity(rental.Location, sale.Location)
	return Round2((price + rooms + location) / 3)
}

// haversineKm computes the great-circle distance between two points in
// kilometers.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
