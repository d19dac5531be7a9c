package badger

import (
	"fmt"

	"github.com/poiesic/jobdex/core"
)

// Key prefixes for different data types
const (
	sourceDocPrefix     = "srcdoc"
	sourceDocHashPrefix = "srcdoch"
	sourceDocIDSeq      = "srcdocseq"
	jobDescPrefix       = "jobrec"
	jobDescIDSeq        = "jobrecseq"
	docJobPrefix        = "docjob"
	sectionsPrefix      = "docsec"
	chunksPrefix        = "docchk"
	metadataPrefix      = "docmeta"
	embeddingPrefix     = "embrec"
	embeddingRefPrefix  = "embref"
)

// makeDocumentKey generates a key for a source document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sourceDocPrefix, id))
}

// makeDocumentHashKey generates the content-hash lookup key for a document.
func makeDocumentHashKey(hash core.ContentHash) []byte {
	return []byte(fmt.Sprintf("%s:%s", sourceDocHashPrefix, hash))
}

// makeJobKey generates a key for a job description by ID.
func makeJobKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", jobDescPrefix, id))
}

// makeDocJobKey generates the document-to-job link key.
func makeDocJobKey(docId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docJobPrefix, docId))
}

// makeSectionsKey generates the key holding a document's section list.
func makeSectionsKey(docId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", sectionsPrefix, docId))
}

// makeChunksKey generates the key holding a document's chunk list.
func makeChunksKey(docId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunksPrefix, docId))
}

// makeMetadataKey generates the key holding a document's metadata values.
func makeMetadataKey(docId core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", metadataPrefix, docId))
}

// makeEmbeddingKey generates a key for an embedding by model and content
// hash. Model comes first so all embeddings under one model share a
// prefix for iteration.
func makeEmbeddingKey(model string, hash core.ContentHash) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", embeddingPrefix, model, hash))
}

// makeEmbeddingModelPrefix generates the iteration prefix for all
// embeddings under a model.
func makeEmbeddingModelPrefix(model string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", embeddingPrefix, model))
}

// makeEmbeddingRefKey generates the reference-count key for an
// embedding. Hash comes first so all references held by one chunk's
// content share a prefix regardless of model.
func makeEmbeddingRefKey(hash core.ContentHash, model string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", embeddingRefPrefix, hash, model))
}

// makeEmbeddingRefHashPrefix generates the iteration prefix for all
// reference counts held under a content hash.
func makeEmbeddingRefHashPrefix(hash core.ContentHash) []byte {
	return []byte(fmt.Sprintf("%s:%s:", embeddingRefPrefix, hash))
}
