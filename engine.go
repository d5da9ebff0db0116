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


package rentmatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/ai/openai"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/embedding"
	"github.com/casavia/rentmatch/index"
	"github.com/casavia/rentmatch/match"
	"github.com/casavia/rentmatch/storage"
	"github.com/casavia/rentmatch/storage/badger"
)

// Engine is the online matching service: an immutable corpus snapshot, the
// cache-aware embedders, and a matcher over both. Construction does all the
// loading; a listing store without a completed build fails here rather than
// on the first request.
type Engine struct {
	backend       *badger.Backend
	textCache     storage.CacheRepository
	imageCache    storage.CacheRepository
	corpusRepo    storage.CorpusRepository
	provider      ai.AIProvider
	textEmbedder  *embedding.TextEmbedder
	imageEmbedder *embedding.ImageEmbedder
	corpus        *index.Corpus
	matcher       *match.Matcher
	logger        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	matchConfig   *match.Config
	provider      ai.AIProvider
	fetchTimeout  time.Duration
	maxImageBytes int64
	logger        *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = cfg
	}
}

// WithMatchConfig sets the retrieval and scoring configuration.
func WithMatchConfig(cfg *match.Config) EngineOption {
	return func(o *engineOptions) {
		o.matchConfig = cfg
	}
}

// WithProvider injects an already-constructed AI provider instead of
// building one from the AI config. The engine takes ownership and closes
// it on Close.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithFetchBounds overrides the per-image fetch timeout and size limit.
// Non-positive values keep the defaults.
func WithFetchBounds(timeout time.Duration, maxBytes int64) EngineOption {
	return func(o *engineOptions) {
		o.fetchTimeout = timeout
		o.maxImageBytes = maxBytes
	}
}

// WithEngineLogger sets the logger. Defaults to slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// NewEngine opens the listing store at filePath, loads the corpus snapshot,
// and wires the embedders and matcher. A store without a completed corpus
// build is a startup failure, not a degraded mode.
func NewEngine(ctx context.Context, filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	textCache := badger.NewTextCacheRepository(backend)
	imageCache := badger.NewImageCacheRepository(backend)
	corpusRepo := badger.NewCorpusRepository(backend)

	corpus, err := index.LoadCorpus(ctx, corpusRepo, options.logger)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	textEmbedder, err := embedding.NewTextEmbedder(textCache, provider.Embedder(), options.logger)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	fetcher := embedding.NewImageFetcher(options.fetchTimeout, options.maxImageBytes, options.logger)
	imageEmbedder, err := embedding.NewImageEmbedder(imageCache, provider.ImageEmbedder(), fetcher,
		embedding.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	matcher, err := match.NewMatcher(corpus, textEmbedder, imageEmbedder, options.matchConfig,
		match.WithLogger(options.logger))
	if err != nil {
		imageEmbedder.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:       backend,
		textCache:     textCache,
		imageCache:    imageCache,
		corpusRepo:    corpusRepo,
		provider:      provider,
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		corpus:        corpus,
		matcher:       matcher,
		logger:        options.logger,
	}, nil
}

// Match ranks corpus rentals against the sale listing.
func (e *Engine) Match(ctx context.Context, sale *core.Listing, topK int) ([]*core.MatchResult, error) {
	return e.matcher.Match(ctx, sale, topK)
}

// MatchWithMonitor ranks corpus rentals against the sale listing with
// observation. The monitor receives callbacks at each stage of the pipeline.
func (e *Engine) MatchWithMonitor(ctx context.Context, sale *core.Listing, topK int, monitor match.MatchMonitor) ([]*core.MatchResult, error) {
	return e.matcher.MatchWithMonitor(ctx, sale, topK, monitor)
}

// Ready reports whether the corpus snapshot is loaded and non-empty.
func (e *Engine) Ready() bool {
	return e.corpus != nil && len(e.corpus.Listings) > 0
}

// Corpus exposes the loaded snapshot for read-only inspection.
func (e *Engine) Corpus() *index.Corpus {
	return e.corpus
}

// TextCache exposes the text embedding cache.
func (e *Engine) TextCache() storage.CacheRepository {
	return e.textCache
}

// ImageCache exposes the image embedding cache.
func (e *Engine) ImageCache() storage.CacheRepository {
	return e.imageCache
}

// Close releases the fetch pool, the AI provider, and the listing store,
// in that order.
func (e *Engine) Close() error {
	e.imageEmbedder.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing listing store", "err", err)
		return err
	}
	return nil
}
