package embedding

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"strconv"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
)

// ImageEmbedder embeds listing photos through the fingerprint cache.
// Fingerprints are taken over the image URL, not the bytes. A URL whose
// fetch or decode fails is recorded as a terminal null and never
// retried; a URL that embedded once is never fetched again.
//
// Fetches run on a bounded worker pool shared across calls. Cache writes
// happen on the calling goroutine after the parallel phase, so writes
// within a batch stay serialized.
type ImageEmbedder struct {
	cache   storage.CacheRepository
	oracle  ai.ImageEmbedder
	fetcher *ImageFetcher
	pool    *ants.Pool
	group   singleflight.Group
	logger  *slog.Logger
}

// Option configures an ImageEmbedder.
type Option func(*ImageEmbedder) error

// WithPoolSize sets the fetch worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ie *ImageEmbedder) error {
		if size < 1 {
			size = 1
		}

		if ie.pool != nil {
			ie.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		ie.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ie *ImageEmbedder) error {
		if logger == nil {
			logger = slog.Default()
		}
		ie.logger = logger
		return nil
	}
}

// NewImageEmbedder creates a cache-aware image embedder.
func NewImageEmbedder(cache storage.CacheRepository, oracle ai.ImageEmbedder, fetcher *ImageFetcher, opts ...Option) (*ImageEmbedder, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if oracle == nil {
		return nil, ErrOracleRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ie := &ImageEmbedder{
		cache:   cache,
		oracle:  oracle,
		fetcher: fetcher,
		pool:    pool,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(ie); optErr != nil {
			ie.Release()
			return nil, optErr
		}
	}

	ie.logger = ie.logger.With("component", "image-embedder")

	return ie, nil
}

// EmbedURL embeds the image at url, consulting the cache first. A nil
// vector with a nil error is the null outcome: the image could not be
// fetched or decoded, the failure is now recorded, and the URL will not
// be retried. Concurrent calls for the same fingerprint share one fetch
// and one cache write.
func (ie *ImageEmbedder) EmbedURL(ctx context.Context, url string) ([]float32, error) {
	fp := core.ImageFingerprint(url)

	v, err, _ := ie.group.Do(strconv.FormatUint(uint64(fp), 16), func() (any, error) {
		entry, err := ie.cache.Get(ctx, fp)
		if err == nil {
			if entry.Failed {
				return nil, nil
			}
			return entry.Vector, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		img, fetchErr := ie.fetcher.Fetch(ctx, url)
		if fetchErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			ie.logger.Warn("image unusable, caching null", "url", url, "err", fetchErr)
			if err := ie.cache.Put(ctx, fp, &core.CacheEntry{Failed: true}); err != nil {
				return nil, err
			}
			return nil, nil
		}

		vector, err := ie.oracle.EmbedImage(ctx, img)
		if err != nil {
			// Oracle failure is systemic; no null is recorded.
			return nil, err
		}

		normalized := core.NormalizeVector(vector)
		if err := ie.cache.Put(ctx, fp, &core.CacheEntry{Vector: normalized}); err != nil {
			return nil, err
		}
		return normalized, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.([]float32), nil
}

// pendingImage tracks one unseen URL through the fetch and embed phases.
// slots lists every output position the URL occupies in the batch.
type pendingImage struct {
	fp    core.Fingerprint
	url   string
	slots []int
	img   image.Image
	err   error
}

// EmbedURLs embeds a batch of image URLs with one slot per input, order
// preserved. Slots whose image cannot be fetched or decoded come back
// nil; those failures are independent, recorded in the cache, and never
// retried. The oracle is invoked once across all newly fetched images.
// Only systemic failures return an error.
func (ie *ImageEmbedder) EmbedURLs(ctx context.Context, urls []string) ([][]float32, error) {
	results := make([][]float32, len(urls))
	if len(urls) == 0 {
		return results, nil
	}

	// Resolve hits and terminal nulls, grouping unseen URLs by
	// fingerprint so each is fetched once.
	var misses []*pendingImage
	pendingByFP := make(map[core.Fingerprint]*pendingImage)

	for i, url := range urls {
		fp := core.ImageFingerprint(url)
		if p, pending := pendingByFP[fp]; pending {
			p.slots = append(p.slots, i)
			continue
		}

		entry, err := ie.cache.Get(ctx, fp)
		if err == nil {
			if !entry.Failed {
				results[i] = entry.Vector
			}
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		p := &pendingImage{fp: fp, url: url, slots: []int{i}}
		pendingByFP[fp] = p
		misses = append(misses, p)
	}

	if len(misses) == 0 {
		return results, nil
	}

	ie.logger.Debug("fetching uncached images", "misses", len(misses), "total", len(urls))

	// Parallel fetch. Each job owns its pendingImage, so no locking.
	var wg sync.WaitGroup
	var submitErr error
	for _, p := range misses {
		if submitErr != nil {
			break
		}
		wg.Add(1)
		if err := ie.pool.Submit(func() {
			defer wg.Done()
			p.img, p.err = ie.fetcher.Fetch(ctx, p.url)
		}); err != nil {
			wg.Done()
			submitErr = err
		}
	}
	wg.Wait()

	if submitErr != nil {
		return nil, fmt.Errorf("failed to submit fetch job: %w", submitErr)
	}
	// A cancelled context aborts the batch without recording nulls;
	// the failures say nothing about the images themselves.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Write-back runs on the calling goroutine, keeping cache writes
	// serialized. Fetch failures become terminal nulls.
	var freshImages []image.Image
	var freshPending []*pendingImage
	for _, p := range misses {
		if p.err != nil {
			ie.logger.Warn("image unusable, caching null", "url", p.url, "err", p.err)
			if err := ie.cache.Put(ctx, p.fp, &core.CacheEntry{Failed: true}); err != nil {
				return nil, err
			}
			continue
		}
		freshImages = append(freshImages, p.img)
		freshPending = append(freshPending, p)
	}

	if len(freshImages) == 0 {
		return results, nil
	}

	vectors, err := ie.oracle.EmbedImages(ctx, freshImages)
	if err != nil {
		ie.logger.Error("failed to generate image embeddings", "count", len(freshImages), "err", err)
		return nil, err
	}
	if len(vectors) != len(freshImages) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d", len(freshImages), len(vectors))
	}

	for j, p := range freshPending {
		normalized := core.NormalizeVector(vectors[j])
		if err := ie.cache.Put(ctx, p.fp, &core.CacheEntry{Vector: normalized}); err != nil {
			return nil, err
		}
		for _, slot := range p.slots {
			results[slot] = normalized
		}
	}

	return results, nil
}

// Release releases the fetch worker pool.
// The embedder should not be used after calling Release.
func (ie *ImageEmbedder) Release() {
	if ie.pool != nil {
		ie.pool.Release()
	}
}
