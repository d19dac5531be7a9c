package ai

import "errors"

var (
	// ErrInvalidRequest indicates the provider rejected the request
	// itself. Retrying the same input will not succeed.
	ErrInvalidRequest = errors.New("embedding request rejected")

	// ErrRateLimited indicates the provider throttled the call. The
	// request is safe to retry after a backoff.
	ErrRateLimited = errors.New("embedding provider rate limited")

	// ErrUnavailable indicates a transport failure or a provider-side
	// error. The request is safe to retry.
	ErrUnavailable = errors.New("embedding provider unavailable")

	// ErrEmptyResponse indicates the provider returned fewer vectors
	// than inputs.
	ErrEmptyResponse = errors.New("embedding response missing vectors")

	// ErrMissingHost indicates configuration without a provider host.
	ErrMissingHost = errors.New("embedding host not configured")

	// ErrMissingModel indicates configuration without a model name.
	ErrMissingModel = errors.New("embedding model not configured")
)
