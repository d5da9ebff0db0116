package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/ai/openai"
	"github.com/casavia/rentmatch/embedding"
	"github.com/casavia/rentmatch/ingest"
	"github.com/casavia/rentmatch/storage/badger"
)

var rentals = []*ingest.RawListing{
	{
		Link:     "https://www.booking.com/hotel/nl/herengracht-canal-suite.html",
		Name:     "Herengracht Canal Suite",
		Location: "Grachtengordel, Amsterdam",
		Price:    "€ 1,850",
		RoomType: "2 rooms",
		Rating:   "8.9",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/jordaan-garden-apartment.html",
		Name:     "Jordaan Garden Apartment",
		Location: "Jordaan, Amsterdam",
		Price:    "€ 2,100",
		RoomType: "3 rooms",
		Rating:   "9.1",
		Description: "Quiet three-room apartment on a side street of the Jordaan, " +
			"with a private garden and original wooden beams throughout.",
	},
	{
		Link:      "https://www.booking.com/hotel/nl/de-pijp-studio.html",
		Name:      "De Pijp Market Studio",
		Location:  "De Pijp, Amsterdam",
		Price:     "€ 1,150",
		RoomType:  "Studio",
		Rating:    "8.2",
		Breakfast: "No",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/oud-west-loft.html",
		Name:     "Oud-West Industrial Loft",
		Location: "Oud-West, Amsterdam",
		Price:    "€ 2,400",
		RoomType: "2 rooms",
		Rating:   "8.7",
		Description: "Converted warehouse loft with double-height ceilings, " +
			"steel-framed windows and an open kitchen. Steps from Foodhallen.",
	},
	{
		Link:     "https://www.airbnb.com/rooms/48291057",
		Name:     "Houseboat on the Prinsengracht",
		Location: "52.3676, 4.8841",
		Price:    "€ 1,950",
		RoomType: "2 rooms",
		Rating:   "9.4",
		Description: "Moored houseboat with a sun deck over the water. " +
			"Two cabins, full kitchen, and ducks at the window every morning.",
	},
	{
		Link:     "https://www.airbnb.com/rooms/51077263",
		Name:     "Attic Room near Vondelpark",
		Location: "Vondelbuurt, Amsterdam",
		Price:    "€ 875",
		RoomType: "1 room",
		Rating:   "7.9",
	},
	{
		Link:      "https://www.booking.com/hotel/nl/rivierenbuurt-family-flat.html",
		Name:      "Rivierenbuurt Family Flat",
		Location:  "Rivierenbuurt, Amsterdam",
		Price:     "€ 1,700",
		RoomType:  "4 rooms",
		Rating:    "8.4",
		Breakfast: "No",
		Description: "Spacious 1930s family flat with a balcony on the quiet side, " +
			"close to schools and the Amstel riverbank.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/ndsm-wharf-apartment.html",
		Name:     "NDSM Wharf Waterfront Apartment",
		Location: "NDSM, Amsterdam-Noord",
		Price:    "€ 1,550",
		RoomType: "2 rooms",
		Rating:   "8.8",
		Description: "New-build apartment on the IJ waterfront with floor-to-ceiling " +
			"glass and a free ferry to Centraal every ten minutes.",
	},
	{
		Link:     "https://www.airbnb.com/rooms/39184520",
		Name:     "Painter's Studio in the Plantage",
		Location: "Plantage, Amsterdam",
		Price:    "1,250",
		RoomType: "Studio",
		Rating:   "8.1",
	},
	{
		Link:      "https://www.booking.com/hotel/nl/zuidas-executive-residence.html",
		Name:      "Zuidas Executive Residence",
		Location:  "Zuidas, Amsterdam",
		Price:     "€ 3,200",
		RoomType:  "3 rooms",
		Rating:    "9.0",
		Breakfast: "Yes",
		Description: "Serviced residence on the 14th floor of the business district, " +
			"with gym access, weekly cleaning and a south-facing terrace.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/utrecht-oudegracht-maisonnette.html",
		Name:     "Oudegracht Wharf Maisonnette",
		Location: "Binnenstad, Utrecht",
		Price:    "€ 1,600",
		RoomType: "3 rooms",
		Rating:   "9.2",
		Description: "Split-level maisonnette in a medieval wharf cellar on the " +
			"Oudegracht, vaulted brick ceilings and a terrace at water level.",
	},
	{
		Link:     "https://www.airbnb.com/rooms/44720981",
		Name:     "Wittevrouwen Townhouse Floor",
		Location: "Wittevrouwen, Utrecht",
		Price:    "€ 1,350",
		RoomType: "2 rooms",
		Rating:   "8.6",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/utrecht-station-micro-flat.html",
		Name:     "Station Quarter Micro Flat",
		Location: "Utrecht",
		Price:    "€ 980",
		RoomType: "Studio",
		Rating:   "7.6",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/rotterdam-cube-annex.html",
		Name:     "Blaak Cube Annex",
		Location: "Blaak, Rotterdam",
		Price:    "€ 1,200",
		RoomType: "2 rooms",
		Rating:   "8.0",
		Description: "Angular two-room annex beside the cube houses, all custom " +
			"furniture because none of the walls are vertical.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/kop-van-zuid-tower.html",
		Name:     "Kop van Zuid Tower Apartment",
		Location: "51.9054, 4.4868",
		Price:    "€ 2,050",
		RoomType: "3 rooms",
		Rating:   "8.9",
		Description: "High-rise apartment over the Erasmus Bridge with harbour views " +
			"from every room and parking under the building.",
	},
	{
		Link:      "https://www.airbnb.com/rooms/50318842",
		Name:      "Katendrecht Harbour Loft",
		Location:  "Katendrecht, Rotterdam",
		Price:     "€ 1,750",
		RoomType:  "2 rooms",
		Rating:    "8.5",
		Breakfast: "No",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/delfshaven-historic-house.html",
		Name:     "Delfshaven Historic Harbour House",
		Location: "Delfshaven, Rotterdam",
		Price:    "€ 1,450",
		RoomType: "3 rooms",
		Rating:   "8.3",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/the-hague-statenkwartier-flat.html",
		Name:     "Statenkwartier Embassy Flat",
		Location: "Statenkwartier, Den Haag",
		Price:    "€ 1,900",
		RoomType: "3 rooms",
		Rating:   "8.8",
		Description: "Art nouveau flat between the embassies and the beach tram, " +
			"high ceilings, stained glass and a formal dining room.",
	},
	{
		Link:     "https://www.airbnb.com/rooms/46655109",
		Name:     "Scheveningen Dune Apartment",
		Location: "Scheveningen, Den Haag",
		Price:    "€ 1,500",
		RoomType: "2 rooms",
		Rating:   "8.1",
		Description: "Bright apartment two streets from the boulevard, sea air " +
			"included, bicycles in the shed for the dune paths.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/the-hague-zeeheldenkwartier-studio.html",
		Name:     "Zeeheldenkwartier Corner Studio",
		Location: "Zeeheldenkwartier, Den Haag",
		Price:    "950",
		RoomType: "Studio",
		Rating:   "7.8",
	},
	{
		Link:      "https://www.booking.com/hotel/nl/haarlem-grote-markt-rooms.html",
		Name:      "Grote Markt View Rooms",
		Location:  "Centrum, Haarlem",
		Price:     "€ 1,400",
		RoomType:  "2 rooms",
		Rating:    "8.7",
		Breakfast: "Yes",
	},
	{
		Link:     "https://www.airbnb.com/rooms/41266734",
		Name:     "Haarlemmerhout Park House",
		Location: "Haarlem",
		Price:    "€ 2,250",
		RoomType: "4 rooms",
		Rating:   "9.0",
		Description: "Family house at the edge of the Haarlemmerhout with a deep " +
			"back garden, a study under the stairs and room for four bicycles.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/groningen-student-quarter-room.html",
		Name:     "Student Quarter Attic Room",
		Location: "Binnenstad, Groningen",
		Price:    "€ 650",
		RoomType: "1 room",
		Rating:   "7.2",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/groningen-noorderplantsoen-flat.html",
		Name:     "Noorderplantsoen Park Flat",
		Location: "Groningen",
		Price:    "€ 1,050",
		RoomType: "2 rooms",
		Rating:   "8.4",
	},
	{
		Link:     "https://www.airbnb.com/rooms/52409318",
		Name:     "Eindhoven Strijp-S Designer Loft",
		Location: "Strijp-S, Eindhoven",
		Price:    "€ 1,300",
		RoomType: "2 rooms",
		Rating:   "8.6",
		Description: "Loft in the converted Philips factory quarter, polished " +
			"concrete floors and the design academy across the square.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/maastricht-wyck-apartment.html",
		Name:     "Wyck Riverside Apartment",
		Location: "Wyck, Maastricht",
		Price:    "€ 1,250",
		RoomType: "2 rooms",
		Rating:   "8.9",
	},
	{
		Link:      "https://www.booking.com/hotel/nl/leiden-rapenburg-canal-house.html",
		Name:      "Rapenburg Canal House Floor",
		Location:  "Leiden",
		Price:     "€ 1,550",
		RoomType:  "3 rooms",
		Rating:    "8.8",
		Breakfast: "No",
		Description: "Piano nobile of a canal house on the Rapenburg, " +
			"tall windows over the water and the university library next door.",
	},
	{
		Link:     "https://www.airbnb.com/rooms/47893265",
		Name:     "Delft Pottery District Cottage",
		Location: "Delft",
		Price:    "€ 1,100",
		RoomType: "2 rooms",
		Rating:   "8.3",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/nijmegen-waalkade-penthouse.html",
		Name:     "Waalkade Penthouse",
		Location: "Nijmegen",
		Price:    "€ 2,600",
		RoomType: "4 rooms",
		Rating:   "9.3",
		Description: "Penthouse over the Waal quay with a wraparound roof terrace, " +
			"river traffic below and the oldest market square in the country behind.",
	},
	{
		Link:     "https://www.booking.com/hotel/nl/zwolle-city-wall-studio.html",
		Name:     "City Wall Studio Zwolle",
		Location: "Zwolle",
		Price:    "€ 825",
		RoomType: "Studio",
		Rating:   "7.7",
	},
	{
		Link:     "https://www.airbnb.com/rooms/49502174",
		Name:     "Tilburg Textile Quarter Flat",
		Location: "Tilburg",
		Price:    "€ 975",
		RoomType: "2 rooms",
		Rating:   "7.9",
	},
	{
		Link:      "https://www.booking.com/hotel/nl/amersfoort-muurhuizen-house.html",
		Name:      "Muurhuizen Wall House",
		Location:  "Amersfoort",
		Price:     "€ 1,650",
		RoomType:  "3 rooms",
		Rating:    "9.0",
		Breakfast: "Yes",
		Description: "Medieval wall house on the Muurhuizen ring, crooked stairs, " +
			"thick walls and a reading nook in the old arrow slit.",
	},
}

var srcFileName = flag.String("src", "", "JSON export of scraped listings")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// sliceSource yields the canned records without touching disk.
type sliceSource struct {
	records []*ingest.RawListing
}

func (s *sliceSource) Load(_ context.Context) ([]*ingest.RawListing, error) {
	return s.records, nil
}

func main() {
	ctx := context.Background()

	// Determine source of seed data
	var source ingest.Source
	if srcFileName != nil && *srcFileName != "" {
		source = ingest.NewJSONSource(*srcFileName)
	} else {
		source = &sliceSource{records: rentals}
	}

	backend, err := badger.OpenBackend("./listings_db", false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	textCache := badger.NewTextCacheRepository(backend)
	imageCache := badger.NewImageCacheRepository(backend)
	corpusRepo := badger.NewCorpusRepository(backend)

	provider, err := openai.NewProvider(ai.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer provider.Close()

	textEmbedder, err := embedding.NewTextEmbedder(textCache, provider.Embedder(), nil)
	if err != nil {
		panic(err)
	}

	fetcher := embedding.NewImageFetcher(3*time.Second, 5<<20, nil)
	imageEmbedder, err := embedding.NewImageEmbedder(imageCache, provider.ImageEmbedder(), fetcher)
	if err != nil {
		panic(err)
	}
	defer imageEmbedder.Release()

	builder, err := ingest.NewBuilder(source, textEmbedder, imageEmbedder, corpusRepo, nil, os.Stderr)
	if err != nil {
		panic(err)
	}

	if err := builder.Run(ctx); err != nil {
		panic(err)
	}
}
