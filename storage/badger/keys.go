package badger

import (
	"encoding/binary"

	"github.com/casavia/rentmatch/core"
)

// Key prefixes for different data types
const (
	textCachePrefix   = "embtxt"
	imageCachePrefix  = "embimg"
	corpusRowPrefix   = "corlst"
	corpusManifestKey = "cormanifest"
)

// makeCacheKey generates a key for a cache entry within a namespace.
// Format: prefix:fingerprint
func makeCacheKey(prefix string, fp core.Fingerprint) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(fp))
	return buf
}

// makeCorpusRowKey generates a key for a corpus row.
// Format: prefix:row, with the row BigEndian so key order is row order.
func makeCorpusRowKey(row int) []byte {
	prefixBytes := []byte(corpusRowPrefix + ":")
	prefixSize := len(prefixBytes)
	buf := make([]byte, prefixSize+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(row))
	return buf
}

// corpusRowFromKey recovers the row index from a corpus row key.
func corpusRowFromKey(key []byte) int {
	prefixSize := len(corpusRowPrefix) + 1
	return int(binary.BigEndian.Uint64(key[prefixSize:]))
}

// makeManifestKey generates the key for the corpus manifest.
func makeManifestKey() []byte {
	return []byte(corpusManifestKey)
}
