package match

import "time"

// Config holds the retrieval and fusion knobs for match requests.
type Config struct {
	// TopKText is the number of candidates drawn from the text index.
	TopKText int

	// TopKImage is the number of candidates drawn from the image index.
	TopKImage int

	// CandidateCap bounds the fused candidate set.
	CandidateCap int

	// TopK is the number of results returned when the caller does not
	// ask for a specific count.
	TopK int

	// TextWeight, ImageWeight, and StructWeight blend the three
	// sub-scores into the final score. They are expected to sum to 1.
	TextWeight   float64
	ImageWeight  float64
	StructWeight float64

	// MaxImages bounds how many of the sale's photos are embedded.
	MaxImages int

	// RequestTimeout is the overall deadline for one match request.
	// Individual image fetches carry their own shorter bound.
	RequestTimeout time.Duration

	// PlaceholderImage is reported for candidates that have no photos.
	PlaceholderImage string
}

// DefaultConfig returns a Config with the deployment defaults.
func DefaultConfig() *Config {
	return &Config{
		TopKText:         120,
		TopKImage:        120,
		CandidateCap:     200,
		TopK:             5,
		TextWeight:       0.45,
		ImageWeight:      0.35,
		StructWeight:     0.20,
		MaxImages:        3,
		RequestTimeout:   30 * time.Second,
		PlaceholderImage: "https://via.placeholder.com/400x250",
	}
}

// FinalScore blends the three sub-scores with the configured weights,
// rounded to two decimals.
func (c *Config) FinalScore(text, image, structured float64) float64 {
	return Round2(c.TextWeight*text + c.ImageWeight*image + c.StructWeight*structured)
}
