package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/poiesic/jobdex/ai"
)

// Embedder implements ai.Embedder against OpenAI-compatible embedding
// APIs. The plain HTTP client is used directly so the provider's token
// usage accounting reaches the caller.
type Embedder struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an embedder from the provided configuration.
func NewEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	clientConfig.BaseURL = config.Host
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	return &Embedder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  config.Model,
		logger: slog.Default().With("component", "openai-embedder"),
	}, nil
}

// Model returns the configured embedding model identifier.
func (e *Embedder) Model() string {
	return e.model
}

// EmbedBatch embeds texts in a single API call. Vectors are returned in
// input order regardless of the order the provider reports them in.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) (*ai.BatchResult, error) {
	e.logger.Debug("generating embeddings", "count", len(texts))

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		classified := classifyError(err)
		e.logger.Error("embedding call failed", "count", len(texts), "err", classified)
		return nil, classified
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs",
			ai.ErrEmptyResponse, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("%w: vector index %d out of range",
				ai.ErrEmptyResponse, item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: no vector for input %d", ai.ErrEmptyResponse, i)
		}
	}

	return &ai.BatchResult{
		Vectors: vectors,
		Usage: ai.Usage{
			PromptTokens: resp.Usage.PromptTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// classifyError maps provider errors onto the ai package sentinels.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}

	// Transport-level failure: connection refused, timeout, DNS.
	return fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
}

func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ai.ErrRateLimited, err)
	case status >= 500:
		return fmt.Errorf("%w: %v", ai.ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", ai.ErrInvalidRequest, err)
	}
}
