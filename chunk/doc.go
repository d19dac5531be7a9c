// Package chunk splits document text into overlapping content chunks
// sized for embedding. Cuts prefer paragraph and sentence boundaries
// within a tolerance window, chunks are stamped with a content hash for
// embedding reuse, and the emitted spans always cover the full document.
package chunk
