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

// Package storage provides the storage abstraction layer for jobdex.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, allowing different backends
// (BadgerDB, in-memory) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined
// here rather than concrete types:
//
//	docs, embeds, err := badger.NewRepositories(path)
//
// This keeps consumers decoupled from backend specifics and lets tests
// substitute the in-memory backend without modification.
//
// # Repositories
//
//   - DocumentRepository: source documents, job descriptions, sections,
//     chunks, and extracted metadata
//   - EmbeddingRepository: the immutable, reference-counted embedding
//     cache keyed by (content hash, model)
//
// Serialization uses the mus-go binary format via the serializers in
// the core package.
package storage
