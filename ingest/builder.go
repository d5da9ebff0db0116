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


package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
)

// Config holds configuration for a corpus build.
type Config struct {
	// BatchSize is the number of listings per oracle text batch and per
	// storage write batch.
	BatchSize int

	// ReportInterval is how often to report progress (number of listings).
	ReportInterval int

	// MaxRetries is the maximum number of attempts for oracle batches.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration

	// Workers is the number of listings whose images are embedded
	// concurrently.
	Workers int

	// MaxImagesPerListing caps how many photos of one listing flow into
	// its averaged image vector.
	MaxImagesPerListing int

	// ImageDims shapes the zero vectors of listings without an embeddable
	// image. It is only consulted when no listing in the whole build
	// produced a real image vector to take the width from.
	ImageDims int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:           100,
		ReportInterval:      100,
		MaxRetries:          3,
		RetryDelay:          1 * time.Second,
		Workers:             4,
		MaxImagesPerListing: 3,
		ImageDims:           512,
	}
}

// ImageURLEmbedder is the slice of the image-embedding service the builder
// needs: one vector per URL, with nil slots for unembeddable images.
type ImageURLEmbedder interface {
	EmbedURLs(ctx context.Context, urls []string) ([][]float32, error)
}

// Builder runs an offline corpus build: load raw records, normalize them,
// embed both modalities, and persist row-aligned listings under a manifest.
type Builder struct {
	source        Source
	textEmbedder  ai.Embedder
	imageEmbedder ImageURLEmbedder
	corpus        storage.CorpusRepository
	config        *Config
	progress      io.Writer
}

// NewBuilder creates a corpus builder.
// progress: where to write progress output (typically os.Stderr)
func NewBuilder(source Source, textEmbedder ai.Embedder, imageEmbedder ImageURLEmbedder, corpus storage.CorpusRepository, config *Config, progress io.Writer) (*Builder, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if textEmbedder == nil {
		return nil, ErrTextEmbedderRequired
	}
	if imageEmbedder == nil {
		return nil, ErrImageEmbedderRequired
	}
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Builder{
		source:        source,
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		corpus:        corpus,
		config:        config,
		progress:      progress,
	}, nil
}

// Run executes the build. The manifest is written only after every row is
// stored, so an interrupted build leaves no corpus that loads.
func (b *Builder) Run(ctx context.Context) error {
	startTime := time.Now()

	raws, err := b.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load raw listings: %w", err)
	}

	listings := b.normalizeAll(raws)
	if len(listings) == 0 {
		return ErrEmptySource
	}

	fmt.Fprintf(b.progress, "Building corpus from %d listings (batch size: %d)\n",
		len(listings), b.config.BatchSize)

	if err := b.embedTexts(ctx, listings); err != nil {
		return err
	}

	imageDims, err := b.embedImages(ctx, listings)
	if err != nil {
		return err
	}

	if err := b.store(ctx, listings, imageDims); err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(b.progress, "Build complete. Stored %d listings in %v (%.1f listings/sec)\n",
		len(listings), elapsed.Round(time.Second), float64(len(listings))/elapsed.Seconds())

	return nil
}

// normalizeAll maps raw records to corpus listings, dropping the ones that
// fail validation. A scrape with a missing URL is noise, not a build error.
func (b *Builder) normalizeAll(raws []*RawListing) []*core.Listing {
	listings := make([]*core.Listing, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		listing := Normalize(raw)
		if err := core.ValidateListing(listing); err != nil {
			slog.Warn("skipping unusable scraped record", "url", raw.Link, "error", err)
			skipped++
			continue
		}
		listings = append(listings, listing)
	}

	if skipped > 0 {
		fmt.Fprintf(b.progress, "Skipped %d unusable records\n", skipped)
	}
	return listings
}

// embedTexts fills every listing's text vector.
func (b *Builder) embedTexts(ctx context.Context, listings []*core.Listing) error {
	fmt.Fprintf(b.progress, "Embedding %d descriptions\n", len(listings))
	tracker := NewProgressTracker(b.progress, len(listings), b.config.ReportInterval)
	tracker.Start()

	if err := embedDescriptions(ctx, b.textEmbedder, listings, b.config, tracker); err != nil {
		return err
	}

	tracker.Finish()
	return nil
}

// embedDescriptions fills the text vector of every listing, batching
// oracle calls and retrying transient failures. Vectors are normalized so
// inner product equals cosine similarity. Shared by the builder and the
// reembedder.
func embedDescriptions(ctx context.Context, embedder ai.Embedder, listings []*core.Listing, config *Config, tracker *ProgressTracker) error {
	for start := 0; start < len(listings); start += config.BatchSize {
		end := min(start+config.BatchSize, len(listings))
		batch := listings[start:end]

		texts := make([]string, len(batch))
		for i, l := range batch {
			texts[i] = l.Description
		}

		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = embedder.EmbedTexts(ctx, texts)
			return err
		}, config.MaxRetries, config.RetryDelay)
		if err != nil {
			return fmt.Errorf("failed to embed descriptions after %d attempts: %w", config.MaxRetries, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
		}

		for i, l := range batch {
			l.TextVector = core.NormalizeVector(embeddings[i])
		}
		tracker.Update(end)
	}

	return nil
}

// embedImages fills every listing's image vector: the unit-norm mean of its
// embeddable photos, or a zero vector when it has none. Listings are
// processed concurrently on a bounded pool; per-image failures are already
// absorbed by the embedder as nil slots, so any error surfacing here is
// systemic and aborts the build. Returns the image dimensionality used.
func (b *Builder) embedImages(ctx context.Context, listings []*core.Listing) (int, error) {
	fmt.Fprintf(b.progress, "Embedding listing images (%d workers)\n", b.config.Workers)
	tracker := NewProgressTracker(b.progress, len(listings), b.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(b.config.Workers)
	if err != nil {
		return 0, fmt.Errorf("failed to create image worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		runErr error
	)

	for _, listing := range listings {
		mu.Lock()
		failed := runErr != nil
		mu.Unlock()
		if failed {
			break
		}

		if len(listing.ImageURLs) == 0 {
			tracker.Increment(1)
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			defer tracker.Increment(1)

			urls := listing.ImageURLs
			if len(urls) > b.config.MaxImagesPerListing {
				urls = urls[:b.config.MaxImagesPerListing]
			}

			vectors, err := b.imageEmbedder.EmbedURLs(ctx, urls)
			if err != nil {
				mu.Lock()
				if runErr == nil {
					runErr = err
				}
				mu.Unlock()
				return
			}
			listing.ImageVector = core.MeanVector(vectors)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if runErr == nil {
				runErr = fmt.Errorf("failed to submit image job: %w", submitErr)
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	tracker.Finish()

	if runErr != nil {
		return 0, fmt.Errorf("image embedding failed: %w", runErr)
	}

	// Take the vector width from any real embedding; fall back to the
	// configured dimensionality for an image-free corpus.
	imageDims := 0
	for _, l := range listings {
		if len(l.ImageVector) > 0 {
			imageDims = len(l.ImageVector)
			break
		}
	}
	if imageDims == 0 {
		imageDims = b.config.ImageDims
	}

	for _, l := range listings {
		if len(l.ImageVector) == 0 {
			l.ImageVector = make([]float32, imageDims)
		}
	}

	return imageDims, nil
}

// store writes all rows in deterministic batches and the manifest last.
func (b *Builder) store(ctx context.Context, listings []*core.Listing, imageDims int) error {
	return storeCorpus(ctx, b.corpus, listings, imageDims, b.config.BatchSize)
}

// storeCorpus writes all rows in deterministic batches and the manifest
// last, after verifying that every row's vectors share the manifest
// dimensions. Shared by the builder and the reembedder.
func storeCorpus(ctx context.Context, corpus storage.CorpusRepository, listings []*core.Listing, imageDims, batchSize int) error {
	textDims := len(listings[0].TextVector)
	if textDims == 0 {
		return fmt.Errorf("text embeddings are empty")
	}

	for i, l := range listings {
		if len(l.TextVector) != textDims {
			return fmt.Errorf("row %d: text vector has %d dimensions, expected %d", i, len(l.TextVector), textDims)
		}
		if len(l.ImageVector) != imageDims {
			return fmt.Errorf("row %d: image vector has %d dimensions, expected %d", i, len(l.ImageVector), imageDims)
		}
	}

	for start := 0; start < len(listings); start += batchSize {
		end := min(start+batchSize, len(listings))
		if err := corpus.PutListings(ctx, start, listings[start:end]); err != nil {
			return fmt.Errorf("failed to store rows %d..%d: %w", start, end-1, err)
		}
	}

	manifest := &core.Manifest{
		Count:     len(listings),
		TextDims:  textDims,
		ImageDims: imageDims,
		BuiltAt:   time.Now().UTC(),
	}
	if err := corpus.PutManifest(ctx, manifest); err != nil {
		return fmt.Errorf("failed to store manifest: %w", err)
	}

	return nil
}
