// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ai

import "context"

// Usage reports the token consumption of a single embedding call as
// counted by the provider.
type Usage struct {
	PromptTokens int
	TotalTokens  int
}

// BatchResult carries the vectors for one embedding batch, in input
// order, along with the provider's usage accounting.
type BatchResult struct {
	Vectors [][]float32
	Usage   Usage
}

// Embedder produces embedding vectors for batches of text.
//
// Implementations must return exactly one vector per input text, in the
// same order, or an error. Errors are classified with the package
// sentinels so callers can distinguish retryable failures from
// permanent ones.
type Embedder interface {
	// Model returns the identifier of the embedding model in use.
	Model() string

	// EmbedBatch embeds texts in a single provider call.
	EmbedBatch(ctx context.Context, texts []string) (*BatchResult, error)
}
