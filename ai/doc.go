// Package ai defines the embedding provider abstraction: the Embedder
// interface, provider configuration, and the error sentinels callers use
// to classify failures as retryable or permanent.
//
// Concrete implementations live in subpackages: openai for
// OpenAI-compatible HTTP services and mock for deterministic test
// doubles.
package ai
