package search

import "errors"

var (
	// ErrDocumentRepositoryRequired indicates construction without a
	// document repository.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrEmbeddingRepositoryRequired indicates construction without an
	// embedding repository.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository is required")

	// ErrIndexRequired indicates a searcher constructed without an index.
	ErrIndexRequired = errors.New("index is required")

	// ErrEmptyQuery indicates a search with no usable query terms.
	ErrEmptyQuery = errors.New("query is empty")
)
