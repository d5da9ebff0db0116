package ingest

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrSourceRequired is returned when a Builder is created without a listing source.
	ErrSourceRequired = errors.New("listing source required")

	// ErrTextEmbedderRequired is returned when a Builder is created without a text embedder.
	ErrTextEmbedderRequired = errors.New("text embedder required")

	// ErrImageEmbedderRequired is returned when a Builder is created without an image embedder.
	ErrImageEmbedderRequired = errors.New("image embedder required")

	// ErrCorpusRequired is returned when a Builder is created without a corpus repository.
	ErrCorpusRequired = errors.New("corpus repository required")

	// ErrEmptySource is returned when the source yields no usable listings.
	ErrEmptySource = errors.New("source produced no usable listings")
)
