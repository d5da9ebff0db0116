package badger

import (
	"context"

	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
	"github.com/dgraph-io/badger/v4"
)

// CacheRepository implements storage.CacheRepository for BadgerDB.
// One instance serves one namespace; the text and image namespaces
// share a Backend but never share keys.
type CacheRepository struct {
	backend *Backend
	prefix  string
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewTextCacheRepository creates the cache repository for the text namespace.
func NewTextCacheRepository(backend *Backend) *CacheRepository {
	return &CacheRepository{backend: backend, prefix: textCachePrefix}
}

// NewImageCacheRepository creates the cache repository for the image namespace.
func NewImageCacheRepository(backend *Backend) *CacheRepository {
	return &CacheRepository{backend: backend, prefix: imageCachePrefix}
}

// Get retrieves the entry for a fingerprint.
func (r *CacheRepository) Get(ctx context.Context, fp core.Fingerprint) (*core.CacheEntry, error) {
	var result *core.CacheEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCacheKey(r.prefix, fp)
		entry, err := readCacheEntry(tx, key)
		if err != nil {
			return err
		}
		if entry == nil {
			return storage.ErrNotFound
		}
		result = entry
		return nil
	}, false)
	return result, err
}

// Put stores the entry for a fingerprint, overwriting any previous value.
func (r *CacheRepository) Put(ctx context.Context, fp core.Fingerprint, entry *core.CacheEntry) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCacheKey(r.prefix, fp)
		value := storage.MarshalCacheEntry(entry)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Clear removes every entry in the namespace. The corpus and the other
// cache namespace are untouched.
func (r *CacheRepository) Clear(ctx context.Context) error {
	return r.backend.DropPrefix([]byte(r.prefix + ":"))
}

// Count reports the number of entries in the namespace.
func (r *CacheRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(r.prefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readCacheEntry reads a cache entry from the transaction.
func readCacheEntry(tx *badger.Txn, key []byte) (*core.CacheEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.CacheEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalCacheEntry(val)
		return unmarshalErr
	})
	return entry, err
}
