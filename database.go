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

package jobdex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/poiesic/jobdex/ai"
	"github.com/poiesic/jobdex/ai/openai"
	"github.com/poiesic/jobdex/chunk"
	"github.com/poiesic/jobdex/config"
	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/embed"
	"github.com/poiesic/jobdex/ingestion"
	"github.com/poiesic/jobdex/reembed"
	"github.com/poiesic/jobdex/score"
	"github.com/poiesic/jobdex/search"
	"github.com/poiesic/jobdex/storage"
	"github.com/poiesic/jobdex/storage/badger"
)

// Database wires storage, embedding, ingestion and search into a single
// handle. It is the entry point for embedding jobdex in a program.
type Database struct {
	backend      *badger.Backend
	docs         storage.DocumentRepository
	embeds       storage.EmbeddingRepository
	embedder     ai.Embedder
	orchestrator *embed.Orchestrator
	index        *search.Index
	searcher     *search.Searcher
	pipeline     *ingestion.Pipeline
	cfg          *config.Config
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	cfg      *config.Config
	embedder ai.Embedder
	logger   *slog.Logger
	registry prometheus.Registerer
}

// WithConfig supplies a loaded configuration. Defaults are used when
// absent.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.cfg = cfg
	}
}

// WithEmbedder overrides the embedding provider. Used by tests to
// substitute a mock.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithMetricsRegisterer registers the embedding orchestration metrics
// with the given Prometheus registerer. Metrics are off when absent.
func WithMetricsRegisterer(reg prometheus.Registerer) DatabaseOption {
	return func(o *databaseOptions) {
		o.registry = reg
	}
}

// NewDatabase opens or creates a database at filePath and wires every
// component from the configuration. The search index is rebuilt from
// whatever the store already holds, so searches work immediately.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	cfg := options.cfg
	if cfg == nil {
		cfg = config.Default()
	}

	backend, err := badger.OpenBackend(filePath, cfg.Storage.InMemory)
	if err != nil {
		return nil, err
	}

	docs, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	embeds := badger.NewEmbeddingRepository(backend)

	embedder := options.embedder
	if embedder == nil {
		aiCfg := ai.NewConfig(
			ai.WithHost(cfg.Embedding.Host),
			ai.WithAPIKey(cfg.Embedding.APIKey),
			ai.WithModel(cfg.Embedding.Model),
			ai.WithTimeout(time.Duration(cfg.Embedding.TimeoutSec)*time.Second),
		)
		embedder, err = openai.NewEmbedder(aiCfg)
		if err != nil {
			docs.Close()
			backend.Close()
			return nil, err
		}
	}

	orchestratorOpts := []embed.Option{
		embed.WithLogger(options.logger),
		embed.WithBatchSize(cfg.Embed.BatchSize),
		embed.WithPoolSize(cfg.Embed.PoolSize),
		embed.WithRetryPolicy(embed.RetryPolicy{
			MaxAttempts: cfg.Embed.RetryMaxAttempts,
			BaseDelay:   time.Duration(cfg.Embed.RetryBaseDelayMs) * time.Millisecond,
			MaxDelay:    30 * time.Second,
		}),
		embed.WithBreaker(embed.NewBreaker(cfg.Embed.BreakerThreshold,
			time.Duration(cfg.Embed.BreakerCooldownSec)*time.Second)),
	}
	if options.registry != nil {
		orchestratorOpts = append(orchestratorOpts, embed.WithMetrics(embed.NewMetrics(options.registry)))
	}
	orchestrator, err := embed.NewOrchestrator(embeds, embedder, orchestratorOpts...)
	if err != nil {
		docs.Close()
		backend.Close()
		return nil, err
	}

	index, err := search.NewIndex(docs, embeds, embedder.Model(),
		search.WithIndexLogger(options.logger))
	if err != nil {
		orchestrator.Close()
		docs.Close()
		backend.Close()
		return nil, err
	}
	if err := index.Rebuild(context.Background()); err != nil {
		orchestrator.Close()
		docs.Close()
		backend.Close()
		return nil, err
	}

	searcher, err := search.NewSearcher(index, embedder,
		search.WithLogger(options.logger),
		search.WithWeights(float32(cfg.Search.TextWeight), float32(cfg.Search.VectorWeight)))
	if err != nil {
		orchestrator.Close()
		docs.Close()
		backend.Close()
		return nil, err
	}

	chunker, err := chunk.New(chunk.Config{
		Size:      cfg.Chunking.Size,
		Overlap:   cfg.Chunking.Overlap,
		Tolerance: cfg.Chunking.Tolerance,
	})
	if err != nil {
		orchestrator.Close()
		docs.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(docs, embeds, orchestrator,
		ingestion.WithLogger(options.logger),
		ingestion.WithChunker(chunker),
		ingestion.WithIndex(index),
	)
	if err != nil {
		orchestrator.Close()
		docs.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		docs:         docs,
		embeds:       embeds,
		embedder:     embedder,
		orchestrator: orchestrator,
		index:        index,
		searcher:     searcher,
		pipeline:     pipeline,
		cfg:          cfg,
		logger:       options.logger,
	}, nil
}

// Close releases every component. The database must not be used after
// Close returns.
func (db *Database) Close() error {
	db.pipeline.Release()
	db.orchestrator.Close()
	if err := db.docs.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// DocumentRepository exposes the underlying document store.
func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docs
}

// EmbeddingRepository exposes the underlying embedding store.
func (db *Database) EmbeddingRepository() storage.EmbeddingRepository {
	return db.embeds
}

// Ingest processes one document through the full pipeline.
func (db *Database) Ingest(ctx context.Context, text, filename string) (*ingestion.Result, error) {
	return db.pipeline.Ingest(ctx, text, filename)
}

// IngestBatch processes documents concurrently with per-document error
// isolation. Keys are filenames, values are document text.
func (db *Database) IngestBatch(ctx context.Context, docs map[string]string) []ingestion.BatchItem {
	return db.pipeline.IngestBatch(ctx, docs)
}

// Search runs a hybrid query over the indexed corpus.
func (db *Database) Search(ctx context.Context, query string, facets search.Facets, semantic bool, maxHits int) ([]*search.RankedResult, error) {
	return db.searcher.Search(ctx, query, facets, semantic, maxHits)
}

// Suggest returns indexed terms starting with prefix, most frequent
// first.
func (db *Database) Suggest(prefix string, limit int) []string {
	return db.searcher.Suggest(prefix, limit)
}

// RebuildIndex refreshes the search snapshot from storage.
func (db *Database) RebuildIndex(ctx context.Context) error {
	return db.index.Rebuild(ctx)
}

// SimilarJob is one entry in a similarity ranking.
type SimilarJob struct {
	JobId          core.ID
	JobNumber      string
	Title          string
	Classification string
	Result         *score.SimilarityResult
}

// Similar ranks every other job description by similarity to the given
// job, using stored metadata and section vectors. Results are ordered
// by overall score, best first, truncated to limit.
func (db *Database) Similar(ctx context.Context, jobId core.ID, limit int) ([]*SimilarJob, error) {
	target, err := db.docs.GetJobDescription(ctx, jobId)
	if err != nil {
		return nil, err
	}

	vectors, err := db.loadVectors(ctx)
	if err != nil {
		return nil, err
	}

	targetProfile, err := db.buildProfile(ctx, target, vectors)
	if err != nil {
		return nil, err
	}

	jobs, err := db.docs.ListJobDescriptions(ctx)
	if err != nil {
		return nil, err
	}

	cfg := score.DefaultSimilarityConfig()
	results := make([]*SimilarJob, 0, len(jobs))
	for _, job := range jobs {
		if job.Id == jobId {
			continue
		}
		profile, err := db.buildProfile(ctx, job, vectors)
		if err != nil {
			db.logger.Warn("skipping job in similarity ranking", "job_id", job.Id, "err", err)
			continue
		}
		results = append(results, &SimilarJob{
			JobId:          job.Id,
			JobNumber:      job.JobNumber,
			Title:          job.Title,
			Classification: job.Classification,
			Result:         score.Similarity(cfg, targetProfile, profile),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Result.Overall > results[j].Result.Overall
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Reembed computes embeddings for every stored chunk under the current
// model and refreshes the search index. Progress is written to
// progress, which may be nil.
func (db *Database) Reembed(ctx context.Context, progress io.Writer) (*reembed.Report, error) {
	reembedder, err := reembed.NewReembedder(db.docs, db.embeds, db.embedder, &reembed.Config{
		BatchSize:      db.cfg.Embed.BatchSize,
		Concurrency:    db.cfg.Embed.PoolSize,
		ReportInterval: 100,
		MaxRetries:     db.cfg.Embed.RetryMaxAttempts,
		RetryDelay:     time.Duration(db.cfg.Embed.RetryBaseDelayMs) * time.Millisecond,
	}, progress)
	if err != nil {
		return nil, err
	}

	report, err := reembedder.Run(ctx)
	if err != nil {
		return nil, err
	}

	if err := db.index.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("reembedding stored but index rebuild failed: %w", err)
	}
	return report, nil
}

// loadVectors maps every stored content hash to its vector under the
// current model.
func (db *Database) loadVectors(ctx context.Context) (map[core.ContentHash][]float32, error) {
	embeddings, err := db.embeds.ListEmbeddings(ctx, db.embedder.Model())
	if err != nil {
		return nil, err
	}
	vectors := make(map[core.ContentHash][]float32, len(embeddings))
	for _, embedding := range embeddings {
		vectors[embedding.ContentHash] = embedding.Vector
	}
	return vectors, nil
}

// buildProfile assembles a similarity profile from a job's stored
// artifacts.
func (db *Database) buildProfile(ctx context.Context, job *core.JobDescription, vectors map[core.ContentHash][]float32) (*score.Profile, error) {
	metadata, err := db.docs.GetMetadata(ctx, job.SourceId)
	if err != nil {
		return nil, err
	}
	sections, err := db.docs.GetSections(ctx, job.SourceId)
	if err != nil {
		return nil, err
	}
	chunks, err := db.docs.GetChunks(ctx, job.SourceId)
	if err != nil {
		return nil, err
	}
	return score.BuildProfile(job.Id, metadata, sections, chunks, vectors), nil
}
