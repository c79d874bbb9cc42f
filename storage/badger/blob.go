package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/embedq/storage"
)

// BlobRepository implements storage.BlobRepository for BadgerDB.
// Blobs are content-addressed: the checksum is the key, so identical content
// is stored once regardless of how many jobs reference it.
type BlobRepository struct {
	backend *Backend
}

var _ storage.BlobRepository = (*BlobRepository)(nil)

// NewBlobRepository creates a new BlobRepository.
func NewBlobRepository(backend *Backend) *BlobRepository {
	return &BlobRepository{backend: backend}
}

// Close releases repository resources.
func (r *BlobRepository) Close() error {
	return nil
}

// PutInput stores a submitted document under its checksum.
func (r *BlobRepository) PutInput(ctx context.Context, checksum string, data []byte) error {
	return r.put(makeInputBlobKey(checksum), data)
}

// GetInput retrieves a stored document.
func (r *BlobRepository) GetInput(ctx context.Context, checksum string) ([]byte, error) {
	return r.get(makeInputBlobKey(checksum))
}

// PutArtifact stores a serialized embedding artifact under its checksum.
func (r *BlobRepository) PutArtifact(ctx context.Context, checksum string, data []byte) error {
	return r.put(makeOutputBlobKey(checksum), data)
}

// GetArtifact retrieves a stored artifact.
func (r *BlobRepository) GetArtifact(ctx context.Context, checksum string) ([]byte, error) {
	return r.get(makeOutputBlobKey(checksum))
}

// put writes a blob unless the key already holds content. Content-addressed
// keys make the skip safe: same key implies same bytes.
func (r *BlobRepository) put(key, data []byte) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := tx.Get(key); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := tx.Set(key, data); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (r *BlobRepository) get(key []byte) ([]byte, error) {
	var data []byte
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return data, nil
}
