package index

import (
	"fmt"
	"sort"

	"github.com/casavia/rentmatch/core"
)

// Flat is an exact inner-product index over a fixed set of row vectors.
// Rows are unit-norm, so the inner product is cosine similarity. The
// index is immutable after construction and safe for concurrent search.
type Flat struct {
	vectors [][]float32
	dims    int
}

// NewFlat builds an index over vectors. Every row must share one
// dimensionality; an empty input yields an empty index.
func NewFlat(vectors [][]float32) (*Flat, error) {
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: row %d has %d dimensions, expected %d", core.ErrVectorDimension, i, len(v), dims)
		}
	}
	return &Flat{vectors: vectors, dims: dims}, nil
}

// Len returns the number of rows.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Dims returns the row dimensionality. An empty index reports zero.
func (f *Flat) Dims() int {
	return f.dims
}

// Search returns up to topN rows ranked by inner product against query,
// descending. Ties keep row order. Scores are cosine values in [-1, 1]
// and negatives are not clamped.
func (f *Flat) Search(query []float32, topN int) ([]core.SimilarityMatch, error) {
	if len(f.vectors) == 0 || topN <= 0 {
		return nil, nil
	}
	if len(query) != f.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", core.ErrVectorDimension, len(query), f.dims)
	}

	matches := make([]core.SimilarityMatch, len(f.vectors))
	for i, v := range f.vectors {
		matches[i] = core.SimilarityMatch{Row: i, Score: core.DotProduct(query, v)}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topN < len(matches) {
		matches = matches[:topN]
	}
	return matches, nil
}
