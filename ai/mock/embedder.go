package mock

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/poiesic/jobdex/ai"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedBatchFunc is called by EmbedBatch if set.
	// If nil, deterministic vectors are generated from each text.
	EmbedBatchFunc func(ctx context.Context, texts []string) (*ai.BatchResult, error)

	// ModelName is returned by Model. Defaults to "mock-embedder".
	ModelName string

	mu        sync.Mutex
	callCount int
	seen      []string
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{ModelName: "mock-embedder"}
}

// Model returns the configured model name.
func (m *MockEmbedder) Model() string {
	if m.ModelName == "" {
		return "mock-embedder"
	}
	return m.ModelName
}

// EmbedBatch generates deterministic embeddings for texts, or delegates
// to EmbedBatchFunc when injected. Every call is counted and every input
// text recorded for assertions.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) (*ai.BatchResult, error) {
	m.mu.Lock()
	m.callCount++
	m.seen = append(m.seen, texts...)
	fn := m.EmbedBatchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	tokens := 0
	for i, text := range texts {
		vectors[i] = generateDeterministicVector(text, 384)
		tokens += len(text) / 4
	}
	return &ai.BatchResult{
		Vectors: vectors,
		Usage:   ai.Usage{PromptTokens: tokens, TotalTokens: tokens},
	}, nil
}

// CallCount returns the number of EmbedBatch calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// EmbeddedTexts returns every text passed to EmbedBatch, in call order.
func (m *MockEmbedder) EmbeddedTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.seen))
	copy(out, m.seen)
	return out
}

// Reset clears recorded calls and any injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.seen = nil
	m.EmbedBatchFunc = nil
}

// generateDeterministicVector creates a unit-length embedding vector
// from text. The same text always produces the same vector.
func generateDeterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	var sumSquares float64
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000)/1000.0 - 0.5
		sumSquares += float64(vector[i]) * float64(vector[i])
	}

	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
