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

package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired indicates construction without a
	// document repository.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrEmbeddingRepositoryRequired indicates construction without an
	// embedding repository.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository is required")

	// ErrOrchestratorRequired indicates construction without an
	// embedding orchestrator.
	ErrOrchestratorRequired = errors.New("embedding orchestrator is required")

	// ErrEmptyDocument indicates an ingest call with no text.
	ErrEmptyDocument = errors.New("document text is empty")
)
