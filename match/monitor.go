package match

import "github.com/casavia/rentmatch/core"

// MatchMonitor provides hooks to observe the matching pipeline.
// Implement this interface to track each stage while a sale listing is
// ranked against the corpus, for explaining why a rental surfaced.
type MatchMonitor interface {
	Start(sale *core.Listing)
	AfterTextEmbedding(query []float32)
	// AfterImageEmbedding receives nil when the sale has no embeddable image.
	AfterImageEmbedding(query []float32)
	AfterTextRetrieval(hits []core.SimilarityMatch)
	// AfterImageRetrieval receives nil when image retrieval was skipped.
	AfterImageRetrieval(hits []core.SimilarityMatch)
	AfterFusion(rows []int)
	Scored(result *core.MatchResult)
	Finish(results []*core.MatchResult)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Listing)                        {}
func (n *noopMonitor) AfterTextEmbedding(_ []float32)               {}
func (n *noopMonitor) AfterImageEmbedding(_ []float32)              {}
func (n *noopMonitor) AfterTextRetrieval(_ []core.SimilarityMatch)  {}
func (n *noopMonitor) AfterImageRetrieval(_ []core.SimilarityMatch) {}
func (n *noopMonitor) AfterFusion(_ []int)                          {}
func (n *noopMonitor) Scored(_ *core.MatchResult)                   {}
func (n *noopMonitor) Finish(_ []*core.MatchResult)                 {}
