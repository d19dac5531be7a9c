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

package search

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/storage"
)

// chunkRef ties a chunk's content hash to the section types its span
// overlaps.
type chunkRef struct {
	hash     core.ContentHash
	sections []core.SectionType
}

// indexEntry is one job description's searchable projection.
type indexEntry struct {
	JobId           core.ID
	DocumentId      core.ID
	JobNumber       string
	Title           string
	Classification  string
	Department      string
	Language        core.Language
	ProcessedAt     time.Time
	SemanticIndexed bool

	docTokens     map[string]int
	sectionTokens map[core.SectionType]map[string]int
	tokenCount    int
	chunks        []chunkRef
}

// Snapshot is an immutable view of the search index. Queries run
// entirely against one snapshot, so a concurrent rebuild never affects
// an in-flight search.
type Snapshot struct {
	model     string
	entries   []*indexEntry
	vectors   map[core.ContentHash][]float32
	termFreqs map[string]int
	terms     []string
	builtAt   time.Time
}

// Jobs returns the number of indexed job descriptions.
func (s *Snapshot) Jobs() int {
	return len(s.entries)
}

// BuiltAt returns when the snapshot was built.
func (s *Snapshot) BuiltAt() time.Time {
	return s.builtAt
}

// Index maintains the searchable projection of the document store.
// Rebuild constructs a fresh snapshot and swaps it in atomically.
type Index struct {
	docs   storage.DocumentRepository
	embeds storage.EmbeddingRepository
	model  string
	logger *slog.Logger

	snapshot atomic.Pointer[Snapshot]
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithIndexLogger sets a custom logger.
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex creates an index over the given repositories. Vectors are
// loaded for the given embedding model.
func NewIndex(docs storage.DocumentRepository, embeds storage.EmbeddingRepository, model string, opts ...IndexOption) (*Index, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embeds == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}

	ix := &Index{
		docs:   docs,
		embeds: embeds,
		model:  model,
		logger: slog.Default().With("component", "search-index"),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Snapshot returns the current snapshot, or nil if the index has never
// been rebuilt.
func (ix *Index) Snapshot() *Snapshot {
	return ix.snapshot.Load()
}

// Rebuild constructs a fresh snapshot from storage and swaps it in.
func (ix *Index) Rebuild(ctx context.Context) error {
	started := time.Now()

	jobs, err := ix.docs.ListJobDescriptions(ctx)
	if err != nil {
		return err
	}

	snap := &Snapshot{
		model:     ix.model,
		vectors:   make(map[core.ContentHash][]float32),
		termFreqs: make(map[string]int),
		builtAt:   started.UTC(),
	}

	embeddings, err := ix.embeds.ListEmbeddings(ctx, ix.model)
	if err != nil {
		return err
	}
	for _, embedding := range embeddings {
		snap.vectors[embedding.ContentHash] = embedding.Vector
	}

	for _, job := range jobs {
		entry, err := ix.buildEntry(ctx, job)
		if err != nil {
			ix.logger.Warn("skipping job during index rebuild", "jobId", job.Id, "err", err)
			continue
		}
		snap.entries = append(snap.entries, entry)
		for term, count := range entry.docTokens {
			snap.termFreqs[term] += count
		}
	}

	snap.terms = make([]string, 0, len(snap.termFreqs))
	for term := range snap.termFreqs {
		snap.terms = append(snap.terms, term)
	}
	sort.Strings(snap.terms)

	ix.snapshot.Store(snap)
	ix.logger.Info("search index rebuilt",
		"jobs", len(snap.entries), "terms", len(snap.terms),
		"vectors", len(snap.vectors), "took", time.Since(started))
	return nil
}

// buildEntry projects one job description into its searchable form.
func (ix *Index) buildEntry(ctx context.Context, job *core.JobDescription) (*indexEntry, error) {
	doc, err := ix.docs.GetDocument(ctx, job.SourceId)
	if err != nil {
		return nil, err
	}
	sections, err := ix.docs.GetSections(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	chunks, err := ix.docs.GetChunks(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	metadata, err := ix.docs.GetMetadata(ctx, doc.Id)
	if err != nil {
		return nil, err
	}

	entry := &indexEntry{
		JobId:           job.Id,
		DocumentId:      doc.Id,
		JobNumber:       job.JobNumber,
		Title:           job.Title,
		Classification:  job.Classification,
		Language:        job.Language,
		ProcessedAt:     job.ProcessedAt,
		SemanticIndexed: job.SemanticIndexed,
		docTokens:       termFrequencies(doc.Text),
		sectionTokens:   make(map[core.SectionType]map[string]int),
	}
	for _, count := range entry.docTokens {
		entry.tokenCount += count
	}

	for _, value := range metadata {
		if value.Field == core.FieldDepartment {
			entry.Department = value.Value
			break
		}
	}

	for _, section := range sections {
		tokens := termFrequencies(section.Span(doc.Text))
		if existing, ok := entry.sectionTokens[section.Type]; ok {
			for term, count := range tokens {
				existing[term] += count
			}
		} else {
			entry.sectionTokens[section.Type] = tokens
		}
	}

	for _, chunk := range chunks {
		ref := chunkRef{hash: chunk.ContentHash}
		for _, section := range sections {
			if chunk.Start < section.End && chunk.End > section.Start {
				ref.sections = append(ref.sections, section.Type)
			}
		}
		entry.chunks = append(entry.chunks, ref)
	}

	return entry, nil
}
