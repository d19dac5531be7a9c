package storage

import (
	"context"

	"github.com/poiesic/jobdex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for source documents, their job
// descriptions, and the derived artifacts (sections, chunks, metadata).
type DocumentRepository interface {
	Repository

	// AddDocument persists a source document, its job description, and the
	// derived artifacts in one transaction. Generates IDs from sequences
	// for document and job when unset, sets InsertedAt/ProcessedAt
	// timestamps, and links the job to its document.
	// Returns ErrDuplicateKey if a document with the same content hash
	// already exists.
	AddDocument(ctx context.Context, doc *core.SourceDocument, job *core.JobDescription,
		sections []core.Section, chunks []core.ContentChunk, metadata []core.MetadataValue) error

	// GetDocument retrieves a source document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.SourceDocument, error)

	// GetDocumentByHash retrieves a source document by content hash.
	// Returns ErrNotFound if no document with that hash exists.
	GetDocumentByHash(ctx context.Context, hash core.ContentHash) (*core.SourceDocument, error)

	// GetJobDescription retrieves a job description by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetJobDescription(ctx context.Context, id core.ID) (*core.JobDescription, error)

	// GetJobDescriptionByDocument retrieves the job description derived
	// from a source document. Returns ErrNotFound if none exists.
	GetJobDescriptionByDocument(ctx context.Context, docId core.ID) (*core.JobDescription, error)

	// ListJobDescriptions retrieves all job descriptions.
	ListJobDescriptions(ctx context.Context) ([]*core.JobDescription, error)

	// UpdateJobDescription updates an existing job description.
	// Returns ErrNotFound if it doesn't exist.
	UpdateJobDescription(ctx context.Context, job *core.JobDescription) error

	// GetSections retrieves the parsed sections of a document, ordered by
	// ordinal. Returns an empty slice if the document has no sections.
	GetSections(ctx context.Context, docId core.ID) ([]core.Section, error)

	// GetChunks retrieves the content chunks of a document, ordered by
	// index. Returns an empty slice if the document has no chunks.
	GetChunks(ctx context.Context, docId core.ID) ([]core.ContentChunk, error)

	// GetMetadata retrieves the extracted metadata values of a document.
	GetMetadata(ctx context.Context, docId core.ID) ([]core.MetadataValue, error)

	// DeleteDocument removes a document and all derived artifacts, and
	// releases the embedding references its chunks held.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error
}

// EmbeddingRepository provides operations for the embedding cache.
// Embeddings are immutable once stored and keyed by (content hash, model).
type EmbeddingRepository interface {
	Repository

	// GetEmbedding retrieves an embedding by content hash and model.
	// Returns ErrNotFound if it doesn't exist.
	GetEmbedding(ctx context.Context, hash core.ContentHash, model string) (*core.Embedding, error)

	// PutEmbedding stores an embedding. Storing an embedding that already
	// exists is a no-op; stored vectors are never overwritten.
	PutEmbedding(ctx context.Context, embedding *core.Embedding) error

	// AddEmbeddingRef increments the reference count for an embedding.
	AddEmbeddingRef(ctx context.Context, hash core.ContentHash, model string) error

	// ReleaseEmbeddingRef decrements the reference count and removes the
	// embedding when no references remain.
	ReleaseEmbeddingRef(ctx context.Context, hash core.ContentHash, model string) error

	// ListEmbeddings retrieves all embeddings stored under a model.
	ListEmbeddings(ctx context.Context, model string) ([]*core.Embedding, error)
}
