package match

import "errors"

var (
	// ErrCorpusRequired is returned when a corpus snapshot is not provided.
	ErrCorpusRequired = errors.New("corpus required")

	// ErrTextEmbedderRequired is returned when a text embedder is not provided.
	ErrTextEmbedderRequired = errors.New("text embedder required")

	// ErrImageEmbedderRequired is returned when an image embedder is not provided.
	ErrImageEmbedderRequired = errors.New("image embedder required")
)
