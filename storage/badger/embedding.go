package badger

import (
	"context"
	"encoding/binary"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/storage"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
//
// Stored embeddings are immutable: PutEmbedding never overwrites an
// existing vector. Reference counts track how many chunks share an
// embedding so deletion of one document never strands another's vectors.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) *EmbeddingRepository {
	return &EmbeddingRepository{backend: backend}
}

// Close is a no-op; the repository holds no resources of its own.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *EmbeddingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetEmbedding retrieves an embedding by content hash and model.
func (r *EmbeddingRepository) GetEmbedding(ctx context.Context, hash core.ContentHash, model string) (*core.Embedding, error) {
	var embedding *core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeEmbeddingKey(model, hash))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		embedding, err = storage.UnmarshalEmbedding(data)
		return err
	}, false)
	return embedding, err
}

// PutEmbedding stores an embedding. Existing vectors are never
// overwritten, so concurrent writers racing on the same (hash, model)
// key converge on one stored value.
func (r *EmbeddingRepository) PutEmbedding(ctx context.Context, embedding *core.Embedding) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEmbeddingKey(embedding.Model, embedding.ContentHash)
		existing, err := readValue(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		if err := tx.Set(key, storage.MarshalEmbedding(embedding)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddEmbeddingRef increments the reference count for an embedding.
func (r *EmbeddingRepository) AddEmbeddingRef(ctx context.Context, hash core.ContentHash, model string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeEmbeddingRefKey(hash, model)
		count, err := readRefCount(tx, key)
		if err != nil {
			return err
		}
		if err := tx.Set(key, encodeRefCount(count+1)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ReleaseEmbeddingRef decrements the reference count and removes the
// embedding when no references remain. Releasing a reference that was
// never held is a no-op.
func (r *EmbeddingRepository) ReleaseEmbeddingRef(ctx context.Context, hash core.ContentHash, model string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := releaseRef(tx, hash, model); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListEmbeddings retrieves all embeddings stored under a model.
func (r *EmbeddingRepository) ListEmbeddings(ctx context.Context, model string) ([]*core.Embedding, error) {
	var embeddings []*core.Embedding
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEmbeddingModelPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				embedding, err := storage.UnmarshalEmbedding(val)
				if err != nil {
					return err
				}
				embeddings = append(embeddings, embedding)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return embeddings, err
}

// releaseRef decrements one (hash, model) reference inside tx.
func releaseRef(tx *badger.Txn, hash core.ContentHash, model string) error {
	key := makeEmbeddingRefKey(hash, model)
	count, err := readRefCount(tx, key)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	if count > 1 {
		return tx.Set(key, encodeRefCount(count-1))
	}
	if err := tx.Delete(key); err != nil {
		return err
	}
	return tx.Delete(makeEmbeddingKey(model, hash))
}

// releaseRefsForHash releases one reference under every model that holds
// an embedding for hash. Used when a document's chunks are deleted.
func releaseRefsForHash(tx *badger.Txn, hash core.ContentHash) error {
	prefix := makeEmbeddingRefHashPrefix(hash)

	// Collect models first; mutating while iterating the same prefix is
	// not safe.
	var models []string
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().KeyCopy(nil)
		models = append(models, string(key[len(prefix):]))
	}
	iter.Close()

	for _, model := range models {
		if err := releaseRef(tx, hash, model); err != nil {
			return err
		}
	}
	return nil
}

func readRefCount(tx *badger.Txn, key []byte) (uint64, error) {
	data, err := readValue(tx, key)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, nil
	}
	return binary.BigEndian.Uint64(data), nil
}

func encodeRefCount(count uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, count)
	return buf
}
