package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/casavia/rentmatch/ai"
	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/index"
)

// ImageURLEmbedder embeds a batch of image URLs with one result slot per
// input, nil slots marking images that could not be embedded.
type ImageURLEmbedder interface {
	EmbedURLs(ctx context.Context, urls []string) ([][]float32, error)
}

// Matcher runs the online pipeline over a loaded corpus: embed the sale,
// retrieve per modality, fuse candidates, score, rank. The corpus is
// read-only, so a Matcher is safe for concurrent requests.
type Matcher struct {
	corpus        *index.Corpus
	textEmbedder  ai.Embedder
	imageEmbedder ImageURLEmbedder
	config        *Config
	logger        *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewMatcher creates a matcher over a loaded corpus. A nil config uses
// DefaultConfig.
func NewMatcher(corpus *index.Corpus, textEmbedder ai.Embedder, imageEmbedder ImageURLEmbedder, config *Config, opts ...Option) (*Matcher, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if textEmbedder == nil {
		return nil, ErrTextEmbedderRequired
	}
	if imageEmbedder == nil {
		return nil, ErrImageEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	m := &Matcher{
		corpus:        corpus,
		textEmbedder:  textEmbedder,
		imageEmbedder: imageEmbedder,
		config:        config,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Match returns the topK corpus rentals ranked against the sale listing.
// A topK of zero or less uses the configured default. The request runs
// under the configured overall deadline; the sale listing is never
// mutated or persisted.
func (m *Matcher) Match(ctx context.Context, sale *core.Listing, topK int) ([]*core.MatchResult, error) {
	return m.MatchWithMonitor(ctx, sale, topK, nil)
}

// MatchWithMonitor ranks the corpus against the sale listing with
// observation. The monitor receives callbacks at each stage of the
// pipeline.
func (m *Matcher) MatchWithMonitor(ctx context.Context, sale *core.Listing, topK int, monitor MatchMonitor) ([]*core.MatchResult, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if sale == nil {
		return nil, core.ErrInvalidListing
	}
	if topK <= 0 {
		topK = m.config.TopK
	}

	monitor.Start(sale)

	ctx, cancel := context.WithTimeout(ctx, m.config.RequestTimeout)
	defer cancel()

	queryText, err := m.textEmbedder.EmbedText(ctx, sale.Description)
	if err != nil {
		m.logger.Error("error embedding sale description", "err", err)
		return nil, err
	}
	monitor.AfterTextEmbedding(queryText)

	queryImage, err := m.embedSaleImages(ctx, sale)
	if err != nil {
		return nil, err
	}
	monitor.AfterImageEmbedding(queryImage)

	textHits, err := m.corpus.Text.Search(queryText, m.config.TopKText)
	if err != nil {
		return nil, fmt.Errorf("text retrieval failed: %w", err)
	}
	monitor.AfterTextRetrieval(textHits)

	var imageHits []core.SimilarityMatch
	if queryImage != nil {
		imageHits, err = m.corpus.Image.Search(queryImage, m.config.TopKImage)
		if err != nil {
			return nil, fmt.Errorf("image retrieval failed: %w", err)
		}
	}
	monitor.AfterImageRetrieval(imageHits)

	candidates := fuseCandidates(textHits, imageHits, len(m.corpus.Listings), m.config.CandidateCap)
	monitor.AfterFusion(candidates)

	m.logger.Debug("scoring candidates",
		"textHits", len(textHits),
		"imageHits", len(imageHits),
		"candidates", len(candidates))

	results := make([]*core.MatchResult, 0, len(candidates))
	for _, row := range candidates {
		rental := m.corpus.Listings[row]

		textScore := Round2(float64(core.DotProduct(queryText, rental.TextVector)) * 100)
		imageScore := 0.0
		if queryImage != nil {
			imageScore = Round2(float64(core.DotProduct(queryImage, rental.ImageVector)) * 100)
		}
		structured := StructuredScore(rental, sale)

		result := &core.MatchResult{
			Id:              rental.Id,
			URL:             rental.URL,
			Platform:        rental.Platform,
			Title:           rental.Title,
			Image:           rental.RepresentativeImage(m.config.PlaceholderImage),
			TextScore:       textScore,
			ImageScore:      imageScore,
			StructuredScore: structured,
			FinalScore:      m.config.FinalScore(textScore, imageScore, structured),
		}
		monitor.Scored(result)
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	results = dedupByURL(results)

	if len(results) > topK {
		results = results[:topK]
	}

	monitor.Finish(results)
	return results, nil
}

// embedSaleImages embeds up to MaxImages of the sale's photos and
// averages the successful slots into one unit-norm query vector.
// It returns nil when the sale has no embeddable image.
func (m *Matcher) embedSaleImages(ctx context.Context, sale *core.Listing) ([]float32, error) {
	urls := sale.ImageURLs
	if len(urls) == 0 {
		return nil, nil
	}
	if len(urls) > m.config.MaxImages {
		urls = urls[:m.config.MaxImages]
	}

	vectors, err := m.imageEmbedder.EmbedURLs(ctx, urls)
	if err != nil {
		m.logger.Error("error embedding sale images", "err", err)
		return nil, err
	}

	return core.MeanVector(vectors), nil
}

// dedupByURL keeps the first, highest-ranked result per URL.
func dedupByURL(results []*core.MatchResult) []*core.MatchResult {
	seen := make(map[string]bool, len(results))
	deduped := results[:0]
	for _, r := range results {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		deduped = append(deduped, r)
	}
	return deduped
}
