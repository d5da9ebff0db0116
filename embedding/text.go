package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
)

// TextEmbedder embeds text through the fingerprint cache. Cache hits are
// returned as stored; misses are batched into a single oracle call,
// normalized to unit length, and written back before being returned.
// Output vectors are unit-norm on every path because only normalized
// vectors ever enter the cache.
type TextEmbedder struct {
	cache  storage.CacheRepository
	oracle ai.Embedder
	group  singleflight.Group
	logger *slog.Logger
}

var _ ai.Embedder = (*TextEmbedder)(nil)

// NewTextEmbedder creates a cache-aware text embedder.
func NewTextEmbedder(cache storage.CacheRepository, oracle ai.Embedder, logger *slog.Logger) (*TextEmbedder, error) {
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if oracle == nil {
		return nil, ErrOracleRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TextEmbedder{
		cache:  cache,
		oracle: oracle,
		logger: logger.With("component", "text-embedder"),
	}, nil
}

// EmbedText embeds a single text, consulting the cache first. Concurrent
// calls for the same fingerprint share one oracle invocation and one
// cache write.
func (te *TextEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	fp := core.TextFingerprint(text)

	v, err, _ := te.group.Do(strconv.FormatUint(uint64(fp), 16), func() (any, error) {
		entry, err := te.cache.Get(ctx, fp)
		if err == nil && !entry.Failed {
			return entry.Vector, nil
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		vector, err := te.oracle.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}

		normalized := core.NormalizeVector(vector)
		if err := te.cache.Put(ctx, fp, &core.CacheEntry{Vector: normalized}); err != nil {
			return nil, err
		}
		return normalized, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EmbedTexts embeds a batch of texts, preserving input order. The oracle
// is invoked once for all cache misses; duplicate texts within the batch
// are embedded once and fanned out to every slot. An oracle failure
// propagates to the caller and nothing is cached.
func (te *TextEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	// Resolve hits and collect misses in first-occurrence order. Repeats
	// of a pending miss only record an extra output slot.
	var missFPs []core.Fingerprint
	var missTexts []string
	missSlots := make(map[core.Fingerprint][]int)

	for i, text := range texts {
		fp := core.TextFingerprint(text)
		if slots, pending := missSlots[fp]; pending {
			missSlots[fp] = append(slots, i)
			continue
		}

		entry, err := te.cache.Get(ctx, fp)
		if err == nil && !entry.Failed {
			results[i] = entry.Vector
			continue
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}

		missSlots[fp] = []int{i}
		missFPs = append(missFPs, fp)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	te.logger.Debug("embedding cache misses", "misses", len(missTexts), "total", len(texts))

	fresh, err := te.oracle.EmbedTexts(ctx, missTexts)
	if err != nil {
		te.logger.Error("failed to generate embeddings", "count", len(missTexts), "err", err)
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding result mismatch: expected %d, received %d", len(missTexts), len(fresh))
	}

	for j, vector := range fresh {
		normalized := core.NormalizeVector(vector)
		fp := missFPs[j]
		if err := te.cache.Put(ctx, fp, &core.CacheEntry{Vector: normalized}); err != nil {
			return nil, err
		}
		for _, slot := range missSlots[fp] {
			results[slot] = normalized
		}
	}

	return results, nil
}
