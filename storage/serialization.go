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

package storage

import (
	"github.com/poiesic/jobdex/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalSourceDocument serializes a SourceDocument to bytes.
func MarshalSourceDocument(doc *core.SourceDocument) []byte {
	buf := make([]byte, core.SourceDocumentMUS.Size(*doc))
	core.SourceDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalSourceDocument deserializes a SourceDocument from bytes.
func UnmarshalSourceDocument(data []byte) (*core.SourceDocument, error) {
	doc, _, err := core.SourceDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalJobDescription serializes a JobDescription to bytes.
func MarshalJobDescription(job *core.JobDescription) []byte {
	buf := make([]byte, core.JobDescriptionMUS.Size(*job))
	core.JobDescriptionMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalJobDescription deserializes a JobDescription from bytes.
func UnmarshalJobDescription(data []byte) (*core.JobDescription, error) {
	job, _, err := core.JobDescriptionMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalSections serializes a Section slice to bytes.
func MarshalSections(sections []core.Section) []byte {
	buf := make([]byte, core.SectionSliceMUS.Size(sections))
	core.SectionSliceMUS.Marshal(sections, buf)
	return buf
}

// UnmarshalSections deserializes a Section slice from bytes.
func UnmarshalSections(data []byte) ([]core.Section, error) {
	sections, _, err := core.SectionSliceMUS.Unmarshal(data)
	return sections, err
}

// MarshalChunks serializes a ContentChunk slice to bytes.
func MarshalChunks(chunks []core.ContentChunk) []byte {
	buf := make([]byte, core.ChunkSliceMUS.Size(chunks))
	core.ChunkSliceMUS.Marshal(chunks, buf)
	return buf
}

// UnmarshalChunks deserializes a ContentChunk slice from bytes.
func UnmarshalChunks(data []byte) ([]core.ContentChunk, error) {
	chunks, _, err := core.ChunkSliceMUS.Unmarshal(data)
	return chunks, err
}

// MarshalMetadata serializes a MetadataValue slice to bytes.
func MarshalMetadata(values []core.MetadataValue) []byte {
	buf := make([]byte, core.MetadataSliceMUS.Size(values))
	core.MetadataSliceMUS.Marshal(values, buf)
	return buf
}

// UnmarshalMetadata deserializes a MetadataValue slice from bytes.
func UnmarshalMetadata(data []byte) ([]core.MetadataValue, error) {
	values, _, err := core.MetadataSliceMUS.Unmarshal(data)
	return values, err
}

// MarshalEmbedding serializes an Embedding to bytes.
func MarshalEmbedding(embedding *core.Embedding) []byte {
	buf := make([]byte, core.EmbeddingMUS.Size(*embedding))
	core.EmbeddingMUS.Marshal(*embedding, buf)
	return buf
}

// UnmarshalEmbedding deserializes an Embedding from bytes.
func UnmarshalEmbedding(data []byte) (*core.Embedding, error) {
	embedding, _, err := core.EmbeddingMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &embedding, nil
}
