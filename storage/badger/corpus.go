package badger

import (
	"context"
	"fmt"

	"github.com/casavia/rentmatch/core"
	"github.com/casavia/rentmatch/storage"
	"github.com/dgraph-io/badger/v4"
)

// CorpusRepository implements storage.CorpusRepository for BadgerDB.
// Listings are stored one per row key; the BigEndian row encoding makes
// Badger's key order equal to row order, so a prefix scan reads the
// corpus back exactly as it was built.
type CorpusRepository struct {
	backend *Backend
}

var _ storage.CorpusRepository = (*CorpusRepository)(nil)

// NewCorpusRepository creates a new CorpusRepository.
func NewCorpusRepository(backend *Backend) *CorpusRepository {
	return &CorpusRepository{backend: backend}
}

// PutListings writes listings at consecutive row indices starting at startRow.
func (r *CorpusRepository) PutListings(ctx context.Context, startRow int, listings []*core.Listing) error {
	if startRow < 0 {
		return fmt.Errorf("negative start row %d", startRow)
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for i, listing := range listings {
			key := makeCorpusRowKey(startRow + i)
			value := storage.MarshalListing(listing)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// PutManifest stores the build manifest.
func (r *CorpusRepository) PutManifest(ctx context.Context, m *core.Manifest) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeManifestKey(), storage.MarshalManifest(m)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetManifest retrieves the manifest.
func (r *CorpusRepository) GetManifest(ctx context.Context) (*core.Manifest, error) {
	var result *core.Manifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeManifestKey())
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalManifest(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// LoadListings reads back all rows in row order.
func (r *CorpusRepository) LoadListings(ctx context.Context) ([]*core.Listing, error) {
	var results []*core.Listing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(corpusRowPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			// Key order is row order; any gap or duplicate breaks the
			// index alignment contract.
			if row := corpusRowFromKey(item.Key()); row != len(results) {
				return fmt.Errorf("%w: row %d stored at position %d", storage.ErrCorpusMisaligned, row, len(results))
			}

			var listing *core.Listing
			err := item.Value(func(val []byte) error {
				var unmarshalErr error
				listing, unmarshalErr = storage.UnmarshalListing(val)
				return unmarshalErr
			})
			if err != nil {
				return err
			}
			results = append(results, listing)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return results, nil
}
