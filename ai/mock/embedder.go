package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"image"
)

const (
	// defaultTextDim matches all-MiniLM-L6-v2.
	defaultTextDim = 384
	// defaultImageDim matches clip-ViT-B-32.
	defaultImageDim = 512
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	// Default: generate deterministic vector from text hash
	return generateDeterministicVector(text, defaultTextDim), nil
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	// Default: generate deterministic vectors for each text
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = generateDeterministicVector(text, defaultTextDim)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedTextsFunc = nil
}

// MockImageEmbedder is a test double for ai.ImageEmbedder.
// It allows custom behavior injection via function fields.
type MockImageEmbedder struct {
	// EmbedImageFunc is called by EmbedImage if set.
	// If nil, uses default deterministic behavior.
	EmbedImageFunc func(ctx context.Context, img image.Image) ([]float32, error)

	// EmbedImagesFunc is called by EmbedImages if set.
	// If nil, uses default deterministic behavior.
	EmbedImagesFunc func(ctx context.Context, imgs []image.Image) ([][]float32, error)

	callCount int
}

// NewMockImageEmbedder creates a mock image embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockImageEmbedder() *MockImageEmbedder {
	return &MockImageEmbedder{}
}

// EmbedImage generates a deterministic embedding from the image's size and center pixel.
func (m *MockImageEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	m.callCount++

	if m.EmbedImageFunc != nil {
		return m.EmbedImageFunc(ctx, img)
	}

	return generateDeterministicVector(imageSeed(img), defaultImageDim), nil
}

// EmbedImages generates deterministic embeddings for multiple images.
func (m *MockImageEmbedder) EmbedImages(ctx context.Context, imgs []image.Image) ([][]float32, error) {
	m.callCount++

	if m.EmbedImagesFunc != nil {
		return m.EmbedImagesFunc(ctx, imgs)
	}

	embeddings := make([][]float32, len(imgs))
	for i, img := range imgs {
		embeddings[i] = generateDeterministicVector(imageSeed(img), defaultImageDim)
	}
	return embeddings, nil
}

// CallCount returns the number of times any method was called.
func (m *MockImageEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockImageEmbedder) Reset() {
	m.callCount = 0
	m.EmbedImageFunc = nil
	m.EmbedImagesFunc = nil
}

// imageSeed derives a stable seed string from an image so that the same
// bitmap always produces the same mock vector.
func imageSeed(img image.Image) string {
	b := img.Bounds()
	r, g, bl, a := img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).RGBA()
	return fmt.Sprintf("%dx%d:%d:%d:%d:%d", b.Dx(), b.Dy(), r, g, bl, a)
}

// generateDeterministicVector creates a deterministic embedding vector from a seed.
// It uses FNV hash to ensure the same seed always produces the same vector.
func generateDeterministicVector(seed string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(seed))
	state := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		state = state*1664525 + 1013904223 // LCG constants
		vector[i] = float32(state%1000) / 1000.0
	}

	return vector
}
