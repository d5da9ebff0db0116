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


package mock

import "github.com/casavia/rentmatch/ai"

// MockProvider is a test double for ai.AIProvider.
// It aggregates mock text and image embedder instances.
type MockProvider struct {
	embedder      *MockEmbedder
	imageEmbedder *MockImageEmbedder
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.AIProvider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockImageEmbedder() to access concrete types for
// test assertions.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:      NewMockEmbedder(),
		imageEmbedder: NewMockImageEmbedder(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, imageEmbedder *MockImageEmbedder) ai.AIProvider {
	return &MockProvider{
		embedder:      embedder,
		imageEmbedder: imageEmbedder,
	}
}

// Embedder returns the mock text embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// ImageEmbedder returns the mock image embedder.
func (p *MockProvider) ImageEmbedder() ai.ImageEmbedder {
	return p.imageEmbedder
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock text embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockImageEmbedder returns the underlying mock image embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockImageEmbedder() *MockImageEmbedder {
	return p.imageEmbedder
}
