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
	"time"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/storage"
)

// Reembedder regenerates the text vectors of an already built corpus,
// for switching text embedding models without re-scraping. Image vectors
// are carried over unchanged; a photo set does not change with the text
// model, and re-fetching it is a full rebuild's job.
type Reembedder struct {
	corpus   storage.CorpusRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a reembedder. Only the text-side Config fields
// (BatchSize, ReportInterval, MaxRetries, RetryDelay) apply.
//
// The embedder should be the bare oracle for the new model. A
// cache-backed embedder would replay vectors cached under the old model
// and make the whole operation a no-op.
func NewReembedder(corpus storage.CorpusRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if embedder == nil {
		return nil, ErrTextEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		corpus:   corpus,
		embedder: embedder,
		config:   config,
		progress: progress,
	}, nil
}

// Run re-embeds every stored description and rewrites the corpus under a
// fresh manifest. The manifest is written only after every row is back
// in place; an interrupted run leaves a store whose manifest no longer
// matches its rows, which the next load rejects, so rerun to repair.
func (r *Reembedder) Run(ctx context.Context) error {
	startTime := time.Now()

	manifest, err := r.corpus.GetManifest(ctx)
	if err != nil {
		return fmt.Errorf("no completed corpus build to reembed: %w", err)
	}

	listings, err := r.corpus.LoadListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus rows: %w", err)
	}
	if len(listings) == 0 {
		fmt.Fprintf(r.progress, "No listings in store (0 rows)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Reembedding %d descriptions (batch size: %d)\n",
		len(listings), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(listings), r.config.ReportInterval)
	tracker.Start()

	if err := embedDescriptions(ctx, r.embedder, listings, r.config, tracker); err != nil {
		return err
	}

	tracker.Finish()

	if err := storeCorpus(ctx, r.corpus, listings, manifest.ImageDims, r.config.BatchSize); err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d listings in %v (%.1f listings/sec)\n",
		len(listings), elapsed.Round(time.Second), float64(len(listings))/elapsed.Seconds())

	return nil
}
