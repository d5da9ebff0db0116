package match

import "github.com/casavia/rentmatch/core"

// fuseCandidates merges retrieval hits into one candidate row list.
// Text hits are walked first, then image hits, keeping the first
// occurrence of each row and stopping at limit. An empty merge falls
// back to the first min(limit, corpusSize) rows in storage order, so a
// sale that hits nothing still gets deterministic candidates.
func fuseCandidates(textHits, imageHits []core.SimilarityMatch, corpusSize, limit int) []int {
	if limit <= 0 || corpusSize <= 0 {
		return nil
	}

	candidates := make([]int, 0, min(limit, corpusSize))
	seen := make(map[int]bool)

	for _, hits := range [][]core.SimilarityMatch{textHits, imageHits} {
		for _, hit := range hits {
			if len(candidates) == limit {
				return candidates
			}
			if seen[hit.Row] {
				continue
			}
			seen[hit.Row] = true
			candidates = append(candidates, hit.Row)
		}
	}

	if len(candidates) > 0 {
		return candidates
	}

	for row := 0; row < min(limit, corpusSize); row++ {
		candidates = append(candidates, row)
	}
	return candidates
}
