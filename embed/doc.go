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

// Package embed orchestrates embedding generation for content chunks.
//
// The orchestrator sits between the ingestion pipeline and the
// embedding provider and owns the operational concerns of that boundary:
//
//   - cache-first lookup: content already embedded under the current
//     model is never sent to the provider again
//   - in-flight deduplication: concurrent requests for identical
//     content share a single provider call
//   - batching over a bounded worker pool
//   - retries with exponential backoff for transient failures
//   - a circuit breaker that sheds load during provider outages
//   - token usage accounting per call
//
// Provider failures degrade a run rather than fail it: the Report
// returned by EmbedChunks carries a per-chunk terminal state and callers
// decide how to surface the degradation.
package embed
