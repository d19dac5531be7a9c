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

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/jobdex/chunk"
	"github.com/poiesic/jobdex/classify"
	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/embed"
	"github.com/poiesic/jobdex/extract"
	"github.com/poiesic/jobdex/parse"
	"github.com/poiesic/jobdex/score"
	"github.com/poiesic/jobdex/search"
	"github.com/poiesic/jobdex/storage"
)

// Result reports the outcome of ingesting one document.
type Result struct {
	DocumentId core.ID
	JobId      core.ID

	// Duplicate is true when a document with identical content was
	// already ingested; no new records are written in that case.
	Duplicate bool

	Sections     []core.Section
	Metadata     []core.MetadataValue
	QualityScore float64

	// SemanticIndexed is true when every chunk has a stored embedding.
	SemanticIndexed bool

	Warnings []core.Warning
}

// Pipeline drives a document through classification, parsing,
// extraction, chunking, persistence, and embedding.
type Pipeline struct {
	docs         storage.DocumentRepository
	embeds       storage.EmbeddingRepository
	orchestrator *embed.Orchestrator

	classifier *classify.Classifier
	parser     *parse.Parser
	extractor  *extract.Extractor
	chunker    *chunk.Chunker
	quality    score.QualityConfig

	index *search.Index
	pool  *ants.Pool

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for batch ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithClassifier replaces the default filename classifier.
func WithClassifier(classifier *classify.Classifier) Option {
	return func(p *Pipeline) error {
		p.classifier = classifier
		return nil
	}
}

// WithParser replaces the default section parser.
func WithParser(parser *parse.Parser) Option {
	return func(p *Pipeline) error {
		p.parser = parser
		return nil
	}
}

// WithExtractor replaces the default metadata extractor.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(p *Pipeline) error {
		p.extractor = extractor
		return nil
	}
}

// WithChunker replaces the default content chunker.
func WithChunker(chunker *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		p.chunker = chunker
		return nil
	}
}

// WithQualityConfig replaces the default quality scoring weights.
func WithQualityConfig(cfg score.QualityConfig) Option {
	return func(p *Pipeline) error {
		p.quality = cfg
		return nil
	}
}

// WithIndex attaches a search index that is rebuilt after each
// successful ingest.
func WithIndex(index *search.Index) Option {
	return func(p *Pipeline) error {
		p.index = index
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	docs storage.DocumentRepository,
	embeds storage.EmbeddingRepository,
	orchestrator *embed.Orchestrator,
	opts ...Option,
) (*Pipeline, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embeds == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	parser, err := parse.NewParser(parse.DefaultConfig())
	if err != nil {
		pool.Release()
		return nil, err
	}
	chunker, err := chunk.New(chunk.DefaultConfig())
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		docs:         docs,
		embeds:       embeds,
		orchestrator: orchestrator,
		classifier:   classify.New(classify.DefaultPatterns()...),
		parser:       parser,
		extractor:    extract.NewExtractor(extract.DefaultConfig()),
		chunker:      chunker,
		quality:      score.DefaultQualityConfig(),
		pool:         pool,
		logger:       slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release frees the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Ingest processes one document. Re-ingesting identical content returns
// the existing job with Duplicate set and writes nothing.
func (p *Pipeline) Ingest(ctx context.Context, text, filename string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	hash := core.HashContent(text)
	if existing, err := p.docs.GetDocumentByHash(ctx, hash); err == nil {
		return p.duplicateResult(ctx, existing)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	var warnings []core.Warning

	cls := p.classifier.Classify(filepath.Base(filename))
	if cls.Kind == classify.PatternUnrecognized {
		warnings = append(warnings, core.Warning{
			Kind:    core.WarnUnclassifiedFilename,
			Message: "no filename pattern matched " + filepath.Base(filename),
		})
	}

	// Parsing and chunking are independent reads of the same text.
	var (
		sections      []core.Section
		language      core.Language
		parseWarnings []core.Warning
		chunks        []core.ContentChunk
		wg            sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sections, language, parseWarnings = p.parser.Parse(text, cls.Language)
	}()
	go func() {
		defer wg.Done()
		chunks = p.chunker.Chunk(0, text)
	}()
	wg.Wait()
	warnings = append(warnings, parseWarnings...)

	metadata := p.extractor.Extract(text, sections)

	title := cls.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	doc := &core.SourceDocument{
		Path:        filename,
		ContentHash: hash,
		Text:        text,
	}
	job := &core.JobDescription{
		JobNumber:      cls.JobNumber,
		Title:          title,
		Classification: cls.Classification,
		Language:       language,
	}

	if err := p.docs.AddDocument(ctx, doc, job, sections, chunks, metadata); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a race with a concurrent ingest of the same content.
			if existing, lookupErr := p.docs.GetDocumentByHash(ctx, hash); lookupErr == nil {
				return p.duplicateResult(ctx, existing)
			}
		}
		return nil, err
	}

	semanticIndexed, embedWarnings := p.embedChunks(ctx, chunks)
	warnings = append(warnings, embedWarnings...)

	job.QualityScore = score.QualityScore(p.quality, len(text), sections, metadata)
	job.SemanticIndexed = semanticIndexed
	if err := p.docs.UpdateJobDescription(ctx, job); err != nil {
		return nil, err
	}

	if p.index != nil {
		if err := p.index.Rebuild(ctx); err != nil {
			p.logger.Error("index rebuild failed after ingest", "jobId", job.Id, "err", err)
		}
	}

	p.logger.Info("document ingested",
		"jobId", job.Id, "documentId", doc.Id,
		"sections", len(sections), "chunks", len(chunks),
		"quality", job.QualityScore, "semanticIndexed", semanticIndexed)

	return &Result{
		DocumentId:      doc.Id,
		JobId:           job.Id,
		Sections:        sections,
		Metadata:        metadata,
		QualityScore:    job.QualityScore,
		SemanticIndexed: semanticIndexed,
		Warnings:        warnings,
	}, nil
}

// embedChunks runs the orchestrator and takes embedding references for
// every chunk that ended up with a stored vector.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []core.ContentChunk) (bool, []core.Warning) {
	report, err := p.orchestrator.EmbedChunks(ctx, chunks)
	if err != nil {
		p.logger.Error("embedding run failed", "err", err)
		return false, []core.Warning{{
			Kind:    core.WarnEmbeddingDegraded,
			Message: "embedding run failed: " + err.Error(),
		}}
	}

	model := p.orchestrator.Model()
	for _, status := range report.Statuses {
		if status.State != embed.StateEmbedded && status.State != embed.StateReused {
			continue
		}
		if err := p.embeds.AddEmbeddingRef(ctx, status.Hash, model); err != nil {
			p.logger.Warn("failed to add embedding reference", "hash", status.Hash, "err", err)
		}
	}

	if report.Degraded {
		return false, []core.Warning{{
			Kind: core.WarnEmbeddingDegraded,
			Message: "embeddings incomplete: " +
				"the document is stored but not semantically indexed",
		}}
	}
	return len(chunks) > 0, nil
}

// duplicateResult assembles a Result for an already-ingested document.
func (p *Pipeline) duplicateResult(ctx context.Context, doc *core.SourceDocument) (*Result, error) {
	job, err := p.docs.GetJobDescriptionByDocument(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	sections, err := p.docs.GetSections(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	metadata, err := p.docs.GetMetadata(ctx, doc.Id)
	if err != nil {
		return nil, err
	}
	return &Result{
		DocumentId:      doc.Id,
		JobId:           job.Id,
		Duplicate:       true,
		Sections:        sections,
		Metadata:        metadata,
		QualityScore:    job.QualityScore,
		SemanticIndexed: job.SemanticIndexed,
	}, nil
}

// BatchItem pairs one input document with its outcome.
type BatchItem struct {
	Filename string
	Result   *Result
	Err      error
}

// IngestBatch processes documents concurrently with per-document
// isolation: one failure never affects the others.
func (p *Pipeline) IngestBatch(ctx context.Context, docs map[string]string) []BatchItem {
	items := make([]BatchItem, 0, len(docs))
	for filename := range docs {
		items = append(items, BatchItem{Filename: filename})
	}

	var wg sync.WaitGroup
	for i := range items {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			items[i].Result, items[i].Err = p.Ingest(ctx, docs[items[i].Filename], items[i].Filename)
		}
		if err := p.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
	return items
}
