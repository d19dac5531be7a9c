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

// Package ingestion drives documents through the processing pipeline:
// filename classification, section parsing, metadata extraction,
// chunking, transactional persistence, embedding, and quality scoring.
//
// Ingestion is idempotent on document content: identical text maps to
// the same content hash and re-ingestion returns the existing job
// without writing. Embedding failures degrade a document to text-only
// search rather than failing the ingest; the document can be indexed
// semantically later once the provider recovers.
package ingestion
