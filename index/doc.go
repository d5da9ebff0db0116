// Package index provides exact inner-product retrieval over the built
// corpus.
//
// The corpus is small enough that a flat scan beats approximate
// structures: Search computes the inner product against every row and
// keeps the top N, with ties resolved by row order. LoadCorpus
// reconstructs the full snapshot from storage and refuses anything that
// disagrees with its manifest, so a partially written build is never
// served.
package index
