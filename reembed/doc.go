// Package reembed recomputes chunk embeddings under a new model.
//
// A run walks every stored job description, collects the distinct chunk
// content hashes missing a vector under the embedder's model, embeds
// them in concurrent batches with retry, and stores normalized vectors.
// Stored embeddings are immutable, so switching models never rewrites
// the old model's vectors; it adds a parallel set under the new key.
package reembed
