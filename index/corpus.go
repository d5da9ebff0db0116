package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
)

// Corpus is the immutable in-memory snapshot of a completed build: the
// listings plus one flat index per modality. Listings and indices share
// row order; row i of either index scores Listings[i]. A rebuild
// replaces the whole snapshot, never parts of it.
type Corpus struct {
	Listings []*core.Listing
	Text     *Flat
	Image    *Flat
	BuiltAt  time.Time
}

// LoadCorpus reads the persisted corpus into memory and verifies it
// against the manifest. It returns storage.ErrNotFound when no completed
// build exists and storage.ErrManifestMismatch when the stored rows do
// not line up with what the manifest promises.
func LoadCorpus(ctx context.Context, repo storage.CorpusRepository, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	manifest, err := repo.GetManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("no completed corpus build: %w", err)
	}

	listings, err := repo.LoadListings(ctx)
	if err != nil {
		return nil, err
	}

	if len(listings) != manifest.Count {
		return nil, fmt.Errorf("%w: manifest counts %d rows, store has %d", storage.ErrManifestMismatch, manifest.Count, len(listings))
	}

	textVectors := make([][]float32, len(listings))
	imageVectors := make([][]float32, len(listings))
	for i, listing := range listings {
		if len(listing.TextVector) != manifest.TextDims {
			return nil, fmt.Errorf("%w: row %d text vector has %d dimensions, manifest says %d",
				storage.ErrManifestMismatch, i, len(listing.TextVector), manifest.TextDims)
		}
		if len(listing.ImageVector) != manifest.ImageDims {
			return nil, fmt.Errorf("%w: row %d image vector has %d dimensions, manifest says %d",
				storage.ErrManifestMismatch, i, len(listing.ImageVector), manifest.ImageDims)
		}
		textVectors[i] = listing.TextVector
		imageVectors[i] = listing.ImageVector
	}

	textIndex, err := NewFlat(textVectors)
	if err != nil {
		return nil, err
	}
	imageIndex, err := NewFlat(imageVectors)
	if err != nil {
		return nil, err
	}

	logger.Info("corpus loaded",
		"listings", len(listings),
		"textDims", manifest.TextDims,
		"imageDims", manifest.ImageDims,
		"builtAt", manifest.BuiltAt)

	return &Corpus{
		Listings: listings,
		Text:     textIndex,
		Image:    imageIndex,
		BuiltAt:  manifest.BuiltAt,
	}, nil
}
