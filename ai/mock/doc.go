// Package mock provides test double implementations of the embedding service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ImageEmbedder,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// external embedding services and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vec, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder()
//	mockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("oracle down")
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on a text hash
//   - MockImageEmbedder: Returns deterministic vectors based on image size and pixels
//   - MockProvider: Aggregates both mocks
//
// Default vectors are not unit-norm; the embedding layer normalizes oracle
// output, mock or real, before use.
package mock
