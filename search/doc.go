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

// Package search provides hybrid full-text and vector search over
// indexed job descriptions.
//
// The Index projects the document store into an immutable in-memory
// Snapshot: per-job token frequencies (whole document and per section
// type), facet attributes, and the chunk vectors stored under the
// active embedding model. Rebuild swaps snapshots atomically, so
// queries never observe a partially built index.
//
// The Searcher ranks with a weighted sum of a term-coverage text score
// and the best cosine similarity across a job's chunks. Facets filter
// before scoring. When the query embedding cannot be obtained the
// search degrades to text-only ranking and flags affected results
// instead of failing.
package search
