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

package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/jobdex/ai"
	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/embed"
	"github.com/poiesic/jobdex/storage"
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of chunk texts sent per provider call.
	BatchSize int

	// Concurrency is the number of provider calls in flight at once.
	Concurrency int

	// ReportInterval is how often to report progress (number of chunks).
	ReportInterval int

	// MaxRetries is the maximum number of attempts per provider call.
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      64,
		Concurrency:    2,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Report summarizes what a reembedding run did.
type Report struct {
	Model    string
	Jobs     int
	Chunks   int
	Embedded int // vectors computed this run
	Reused   int // distinct hashes already stored under the model
	Tokens   int // total tokens billed by the provider
}

// Reembedder computes embeddings for every stored chunk under the
// configured embedder's model. Chunks whose content hash already has a
// vector under that model are left untouched, so interrupted runs can
// be resumed by running again.
type Reembedder struct {
	docs     storage.DocumentRepository
	embeds   storage.EmbeddingRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	retry    embed.RetryPolicy
}

// NewReembedder creates a reembedder. Progress output is written to
// progress (typically os.Stderr).
func NewReembedder(docs storage.DocumentRepository, embeds storage.EmbeddingRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if docs == nil || embeds == nil {
		return nil, ErrNilRepository
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		docs:     docs,
		embeds:   embeds,
		embedder: embedder,
		config:   config,
		progress: progress,
		retry: embed.RetryPolicy{
			MaxAttempts: config.MaxRetries,
			BaseDelay:   config.RetryDelay,
			MaxDelay:    30 * time.Second,
		},
	}, nil
}

// pendingHash is a chunk text awaiting a vector, with the number of
// chunks that reference it.
type pendingHash struct {
	hash core.ContentHash
	text string
	refs int
}

// Run reembeds every stored chunk under the embedder's model and marks
// each job description semantically indexed once all of its chunks have
// vectors.
func (r *Reembedder) Run(ctx context.Context) (*Report, error) {
	model := r.embedder.Model()

	jobs, err := r.docs.ListJobDescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}
	if len(jobs) == 0 {
		fmt.Fprintf(r.progress, "No documents found (0 jobs)\n")
		return &Report{Model: model}, nil
	}

	// Collect every chunk, deduplicated by content hash. Hashes that
	// already have a vector under the model count as reused and get no
	// new refs: refs were taken the run that stored them.
	chunksByJob := make(map[core.ID][]core.ContentChunk, len(jobs))
	seen := make(map[core.ContentHash]*pendingHash)
	var pending []*pendingHash
	totalChunks := 0
	reused := 0

	for _, job := range jobs {
		chunks, err := r.docs.GetChunks(ctx, job.SourceId)
		if err != nil {
			return nil, fmt.Errorf("failed to load chunks for job %d: %w", job.Id, err)
		}
		chunksByJob[job.Id] = chunks
		totalChunks += len(chunks)

		for _, chunk := range chunks {
			if p, ok := seen[chunk.ContentHash]; ok {
				if p != nil {
					p.refs++
				}
				continue
			}
			_, err := r.embeds.GetEmbedding(ctx, chunk.ContentHash, model)
			switch {
			case err == nil:
				seen[chunk.ContentHash] = nil
				reused++
			case errors.Is(err, storage.ErrNotFound):
				p := &pendingHash{hash: chunk.ContentHash, text: chunk.Text, refs: 1}
				seen[chunk.ContentHash] = p
				pending = append(pending, p)
			default:
				return nil, fmt.Errorf("failed to check embedding: %w", err)
			}
		}
	}

	fmt.Fprintf(r.progress, "Reembedding %d chunks under %s (%d already stored, batch size %d)\n",
		len(pending), model, reused, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(pending), r.config.ReportInterval)
	tracker.Start()

	var mu sync.Mutex
	tokens := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.config.Concurrency)
	for start := 0; start < len(pending); start += r.config.BatchSize {
		end := min(start+r.config.BatchSize, len(pending))
		batch := pending[start:end]
		group.Go(func() error {
			used, err := r.processBatch(groupCtx, model, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			tokens += used
			mu.Unlock()
			tracker.Increment(len(batch))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	tracker.Finish()

	if err := r.markIndexed(ctx, jobs, chunksByJob, model); err != nil {
		return nil, err
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. %d vectors computed in %v\n",
		len(pending), elapsed.Round(time.Second))

	return &Report{
		Model:    model,
		Jobs:     len(jobs),
		Chunks:   totalChunks,
		Embedded: len(pending),
		Reused:   reused,
		Tokens:   tokens,
	}, nil
}

// processBatch embeds one batch of texts and stores the normalized
// vectors. Returns the tokens billed for the call.
func (r *Reembedder) processBatch(ctx context.Context, model string, batch []*pendingHash) (int, error) {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.text
	}

	var result *ai.BatchResult
	err := r.retry.Do(ctx, func() error {
		var err error
		result, err = r.embedder.EmbedBatch(ctx, texts)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to embed batch after %d attempts: %w", r.config.MaxRetries, err)
	}
	if len(result.Vectors) != len(batch) {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, len(batch), len(result.Vectors))
	}

	perText := result.Usage.TotalTokens / max(len(batch), 1)
	for i, p := range batch {
		embedding := &core.Embedding{
			ContentHash: p.hash,
			Model:       model,
			Vector:      embed.NormalizeVector(result.Vectors[i]),
			Tokens:      perText,
			InsertedAt:  time.Now().UTC(),
		}
		if err := r.embeds.PutEmbedding(ctx, embedding); err != nil {
			return 0, fmt.Errorf("failed to store embedding: %w", err)
		}
		// Refs are taken here, with the store, so vectors persisted
		// before an interrupted run still hold their counts.
		for ref := 0; ref < p.refs; ref++ {
			if err := r.embeds.AddEmbeddingRef(ctx, p.hash, model); err != nil {
				return 0, fmt.Errorf("failed to add embedding ref: %w", err)
			}
		}
	}
	return result.Usage.TotalTokens, nil
}

// markIndexed flips SemanticIndexed on every job whose chunks all have
// vectors under the model.
func (r *Reembedder) markIndexed(ctx context.Context, jobs []*core.JobDescription, chunksByJob map[core.ID][]core.ContentChunk, model string) error {
	for _, job := range jobs {
		indexed := true
		for _, chunk := range chunksByJob[job.Id] {
			if _, err := r.embeds.GetEmbedding(ctx, chunk.ContentHash, model); err != nil {
				indexed = false
				break
			}
		}
		if job.SemanticIndexed == indexed {
			continue
		}
		job.SemanticIndexed = indexed
		if err := r.docs.UpdateJobDescription(ctx, job); err != nil {
			return fmt.Errorf("failed to update job %d: %w", job.Id, err)
		}
	}
	return nil
}
