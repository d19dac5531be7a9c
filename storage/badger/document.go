package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	docSeq  *badger.Sequence
	jobSeq  *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	docSeq, err := backend.GetSequence(sourceDocIDSeq)
	if err != nil {
		return nil, err
	}
	jobSeq, err := backend.GetSequence(jobDescIDSeq)
	if err != nil {
		docSeq.Release()
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		docSeq:  docSeq,
		jobSeq:  jobSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *DocumentRepository) Close() error {
	err := r.docSeq.Release()
	if jobErr := r.jobSeq.Release(); err == nil {
		err = jobErr
	}
	return err
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocument persists a source document, its job description, and the
// derived artifacts in one transaction.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.SourceDocument, job *core.JobDescription,
	sections []core.Section, chunks []core.ContentChunk, metadata []core.MetadataValue) error {

	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Content hash is the idempotency key.
		existing, err := readValue(tx, makeDocumentHashKey(doc.ContentHash))
		if err != nil {
			return err
		}
		if existing != nil {
			return storage.ErrDuplicateKey
		}

		if doc.Id == 0 {
			id, err := nextID(r.docSeq)
			if err != nil {
				return err
			}
			doc.Id = id
		}
		if doc.InsertedAt.IsZero() {
			doc.InsertedAt = time.Now().UTC()
		}

		if job.Id == 0 {
			id, err := nextID(r.jobSeq)
			if err != nil {
				return err
			}
			job.Id = id
		}
		job.SourceId = doc.Id
		if job.ProcessedAt.IsZero() {
			job.ProcessedAt = time.Now().UTC()
		}

		for i := range sections {
			sections[i].DocumentId = doc.Id
		}
		for i := range chunks {
			chunks[i].DocumentId = doc.Id
		}
		for i := range metadata {
			metadata[i].DocumentId = doc.Id
		}

		if err := tx.Set(makeDocumentKey(doc.Id), storage.MarshalSourceDocument(doc)); err != nil {
			return err
		}
		if err := tx.Set(makeDocumentHashKey(doc.ContentHash), storage.MarshalID(doc.Id)); err != nil {
			return err
		}
		if err := tx.Set(makeJobKey(job.Id), storage.MarshalJobDescription(job)); err != nil {
			return err
		}
		if err := tx.Set(makeDocJobKey(doc.Id), storage.MarshalID(job.Id)); err != nil {
			return err
		}
		if len(sections) > 0 {
			if err := tx.Set(makeSectionsKey(doc.Id), storage.MarshalSections(sections)); err != nil {
				return err
			}
		}
		if len(chunks) > 0 {
			if err := tx.Set(makeChunksKey(doc.Id), storage.MarshalChunks(chunks)); err != nil {
				return err
			}
		}
		if len(metadata) > 0 {
			if err := tx.Set(makeMetadataKey(doc.Id), storage.MarshalMetadata(metadata)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// GetDocument retrieves a source document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.SourceDocument, error) {
	var doc *core.SourceDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		doc, err = storage.UnmarshalSourceDocument(data)
		return err
	}, false)
	return doc, err
}

// GetDocumentByHash retrieves a source document by content hash.
func (r *DocumentRepository) GetDocumentByHash(ctx context.Context, hash core.ContentHash) (*core.SourceDocument, error) {
	var doc *core.SourceDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeDocumentHashKey(hash))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		id, err := storage.UnmarshalID(data)
		if err != nil {
			return err
		}
		docData, err := readValue(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if docData == nil {
			return storage.ErrNotFound
		}
		doc, err = storage.UnmarshalSourceDocument(docData)
		return err
	}, false)
	return doc, err
}

// GetJobDescription retrieves a job description by ID.
func (r *DocumentRepository) GetJobDescription(ctx context.Context, id core.ID) (*core.JobDescription, error) {
	var job *core.JobDescription
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		job, err = storage.UnmarshalJobDescription(data)
		return err
	}, false)
	return job, err
}

// GetJobDescriptionByDocument retrieves the job description derived from
// a source document.
func (r *DocumentRepository) GetJobDescriptionByDocument(ctx context.Context, docId core.ID) (*core.JobDescription, error) {
	var job *core.JobDescription
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeDocJobKey(docId))
		if err != nil {
			return err
		}
		if data == nil {
			return storage.ErrNotFound
		}
		jobId, err := storage.UnmarshalID(data)
		if err != nil {
			return err
		}
		jobData, err := readValue(tx, makeJobKey(jobId))
		if err != nil {
			return err
		}
		if jobData == nil {
			return storage.ErrNotFound
		}
		job, err = storage.UnmarshalJobDescription(jobData)
		return err
	}, false)
	return job, err
}

// ListJobDescriptions retrieves all job descriptions.
func (r *DocumentRepository) ListJobDescriptions(ctx context.Context) ([]*core.JobDescription, error) {
	var jobs []*core.JobDescription
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(jobDescPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				job, err := storage.UnmarshalJobDescription(val)
				if err != nil {
					return err
				}
				jobs = append(jobs, job)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return jobs, err
}

// UpdateJobDescription updates an existing job description.
func (r *DocumentRepository) UpdateJobDescription(ctx context.Context, job *core.JobDescription) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeJobKey(job.Id)
		existing, err := readValue(tx, key)
		if err != nil {
			return err
		}
		if existing == nil {
			return storage.ErrNotFound
		}
		if err := tx.Set(key, storage.MarshalJobDescription(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSections retrieves the parsed sections of a document.
func (r *DocumentRepository) GetSections(ctx context.Context, docId core.ID) ([]core.Section, error) {
	var sections []core.Section
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeSectionsKey(docId))
		if err != nil || data == nil {
			return err
		}
		sections, err = storage.UnmarshalSections(data)
		return err
	}, false)
	return sections, err
}

// GetChunks retrieves the content chunks of a document.
func (r *DocumentRepository) GetChunks(ctx context.Context, docId core.ID) ([]core.ContentChunk, error) {
	var chunks []core.ContentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeChunksKey(docId))
		if err != nil || data == nil {
			return err
		}
		chunks, err = storage.UnmarshalChunks(data)
		return err
	}, false)
	return chunks, err
}

// GetMetadata retrieves the extracted metadata values of a document.
func (r *DocumentRepository) GetMetadata(ctx context.Context, docId core.ID) ([]core.MetadataValue, error) {
	var values []core.MetadataValue
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		data, err := readValue(tx, makeMetadataKey(docId))
		if err != nil || data == nil {
			return err
		}
		values, err = storage.UnmarshalMetadata(data)
		return err
	}, false)
	return values, err
}

// DeleteDocument removes a document, all derived artifacts, and the
// embedding references its chunks held.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		docData, err := readValue(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if docData == nil {
			return storage.ErrNotFound
		}
		doc, err := storage.UnmarshalSourceDocument(docData)
		if err != nil {
			return err
		}

		chunksData, err := readValue(tx, makeChunksKey(id))
		if err != nil {
			return err
		}
		if chunksData != nil {
			chunks, err := storage.UnmarshalChunks(chunksData)
			if err != nil {
				return err
			}
			for _, chunk := range chunks {
				if err := releaseRefsForHash(tx, chunk.ContentHash); err != nil {
					return err
				}
			}
		}

		jobLink, err := readValue(tx, makeDocJobKey(id))
		if err != nil {
			return err
		}
		if jobLink != nil {
			jobId, err := storage.UnmarshalID(jobLink)
			if err != nil {
				return err
			}
			if err := tx.Delete(makeJobKey(jobId)); err != nil {
				return err
			}
		}

		for _, key := range [][]byte{
			makeDocumentKey(id),
			makeDocumentHashKey(doc.ContentHash),
			makeDocJobKey(id),
			makeSectionsKey(id),
			makeChunksKey(id),
			makeMetadataKey(id),
		} {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// readValue reads a key's value, returning nil (not an error) when the
// key is absent.
func readValue(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// nextID draws the next non-zero ID from a sequence.
func nextID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}
