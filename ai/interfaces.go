package ai

import (
	"context"
	"image"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ImageEmbedder generates vector embeddings from decoded bitmaps.
// Callers hand over images already fetched and downscaled; implementations
// never touch the network for the image bytes themselves.
// Implementations must be thread-safe for concurrent use.
type ImageEmbedder interface {
	// EmbedImage generates a vector embedding for a single image.
	EmbedImage(ctx context.Context, img image.Image) ([]float32, error)

	// EmbedImages generates vector embeddings for multiple images in a batch.
	// The returned slice contains embeddings in the same order as the inputs.
	// Returns an error if any embedding generation fails; per-image oracle
	// failure is systemic and is not reported per slot.
	EmbedImages(ctx context.Context, imgs []image.Image) ([][]float32, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and ImageEmbedder instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ImageEmbedder returns the image embedding service.
	// The returned ImageEmbedder is safe for concurrent use.
	ImageEmbedder() ImageEmbedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
