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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// TextHost is the base URL for the text embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	TextHost string

	// ImageHost is the base URL for the image embedding service API.
	// Example: "http://localhost:7997/v1" for a local CLIP server
	ImageHost string

	// TextModel is the model identifier to use for text embeddings.
	// Example: "all-MiniLM-L6-v2", "text-embedding-3-small"
	TextModel string

	// ImageModel is the model identifier to use for image embeddings.
	// Example: "clip-ViT-B-32"
	ImageModel string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTextHost sets the text embedding service host URL.
func WithTextHost(host string) ConfigOption {
	return func(c *Config) {
		c.TextHost = host
	}
}

// WithImageHost sets the image embedding service host URL.
func WithImageHost(host string) ConfigOption {
	return func(c *Config) {
		c.ImageHost = host
	}
}

// WithHost sets both text and image hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.TextHost = host
		c.ImageHost = host
	}
}

// WithTextModel sets the text embedding model identifier.
func WithTextModel(model string) ConfigOption {
	return func(c *Config) {
		c.TextModel = model
	}
}

// WithImageModel sets the image embedding model identifier.
func WithImageModel(model string) ConfigOption {
	return func(c *Config) {
		c.ImageModel = model
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both modalities use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		TextHost:   defaultHost,
		ImageHost:  defaultHost,
		TextModel:  "all-MiniLM-L6-v2",
		ImageModel: "clip-ViT-B-32",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithTextModel("text-embedding-3-small"),
//   )
//
// Example with different hosts:
//   cfg := NewConfig(
//       WithTextHost("http://localhost:11434/v1"),
//       WithImageHost("http://localhost:7997/v1"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, infinity, etc).
func (c *Config) Normalize() {
	// Ensure TextHost ends with /v1 for OpenAI-compatible APIs
	if c.TextHost != "" && !strings.HasSuffix(c.TextHost, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.TextHost = strings.TrimSuffix(c.TextHost, "/")
		c.TextHost = c.TextHost + "/v1"
	}
	// Ensure ImageHost ends with /v1 for OpenAI-compatible APIs
	if c.ImageHost != "" && !strings.HasSuffix(c.ImageHost, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.ImageHost = strings.TrimSuffix(c.ImageHost, "/")
		c.ImageHost = c.ImageHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.TextHost == "" {
		return errors.New("ai config: TextHost is required")
	}
	if c.ImageHost == "" {
		return errors.New("ai config: ImageHost is required")
	}
	if c.TextModel == "" {
		return errors.New("ai config: TextModel is required")
	}
	if c.ImageModel == "" {
		return errors.New("ai config: ImageModel is required")
	}
	return nil
}
