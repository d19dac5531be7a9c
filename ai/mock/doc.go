// Package mock provides deterministic ai.Embedder test doubles with
// call recording and behavior injection.
package mock
