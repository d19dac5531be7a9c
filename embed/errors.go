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

package embed

import "errors"

var (
	// ErrCircuitOpen indicates the provider circuit breaker rejected the
	// call without attempting it.
	ErrCircuitOpen = errors.New("embedding circuit open")

	// ErrInvalidMaxAttempts indicates a retry policy with a non-positive
	// attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNilEmbedder indicates an orchestrator constructed without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")

	// ErrNilRepository indicates an orchestrator constructed without an
	// embedding repository.
	ErrNilRepository = errors.New("embedding repository is required")
)
