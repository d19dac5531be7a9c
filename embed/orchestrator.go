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

package embed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/jobdex/ai"
	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/storage"
)

const (
	defaultPoolSize  = 4
	defaultBatchSize = 16
)

// ChunkStatus is the terminal state of one input chunk.
type ChunkStatus struct {
	// Index is the chunk's position in the input slice.
	Index int
	Hash  core.ContentHash
	State ChunkState
	Err   error
}

// Report summarizes one EmbedChunks run.
type Report struct {
	// Statuses has one entry per input chunk, in input order.
	Statuses []ChunkStatus

	Embedded int
	Reused   int
	Skipped  int
	Failed   int

	// Degraded is true when at least one chunk did not end up with a
	// stored embedding.
	Degraded bool

	// Usage aggregates provider token accounting across all calls made
	// during the run.
	Usage ai.Usage
}

// flight tracks one in-flight embedding request for a content hash.
// Concurrent requests for the same hash wait on done instead of calling
// the provider again.
type flight struct {
	done chan struct{}
	emb  *core.Embedding
	err  error
}

// Orchestrator drives embedding generation for content chunks: cache
// lookup, in-flight deduplication, batching, retries, circuit breaking,
// and cost accounting.
type Orchestrator struct {
	repo     storage.EmbeddingRepository
	embedder ai.Embedder
	pool     *ants.Pool
	ownsPool bool
	breaker  *Breaker
	retry    RetryPolicy
	costs    CostRecorder
	metrics  *Metrics
	logger   *slog.Logger

	batchSize int
	timeout   time.Duration

	flights sync.Map // core.ContentHash -> *flight
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		o.logger = logger
		return nil
	}
}

// WithPoolSize sets the size of the internal worker pool.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		o.ownsPool = true
		return nil
	}
}

// WithBreaker sets the circuit breaker.
func WithBreaker(breaker *Breaker) Option {
	return func(o *Orchestrator) error {
		o.breaker = breaker
		return nil
	}
}

// WithRetryPolicy sets the retry policy for provider calls.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *Orchestrator) error {
		o.retry = policy
		return nil
	}
}

// WithCostRecorder sets the usage recorder.
func WithCostRecorder(recorder CostRecorder) Option {
	return func(o *Orchestrator) error {
		o.costs = recorder
		return nil
	}
}

// WithMetrics sets the Prometheus instruments.
func WithMetrics(metrics *Metrics) Option {
	return func(o *Orchestrator) error {
		o.metrics = metrics
		return nil
	}
}

// WithBatchSize sets how many texts are sent per provider call.
func WithBatchSize(size int) Option {
	return func(o *Orchestrator) error {
		if size > 0 {
			o.batchSize = size
		}
		return nil
	}
}

// WithCallTimeout bounds each provider call.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) error {
		o.timeout = d
		return nil
	}
}

// NewOrchestrator creates an orchestrator over the given repository and
// embedder.
func NewOrchestrator(repo storage.EmbeddingRepository, embedder ai.Embedder, opts ...Option) (*Orchestrator, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}

	o := &Orchestrator{
		repo:      repo,
		embedder:  embedder,
		breaker:   NewBreaker(5, 30*time.Second),
		retry:     DefaultRetryPolicy(),
		costs:     NewMemoryCostRecorder(),
		logger:    slog.Default().With("component", "embed-orchestrator"),
		batchSize: defaultBatchSize,
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.pool == nil {
		pool, err := ants.NewPool(defaultPoolSize)
		if err != nil {
			return nil, err
		}
		o.pool = pool
		o.ownsPool = true
	}

	return o, nil
}

// Close releases the worker pool.
func (o *Orchestrator) Close() {
	if o.ownsPool {
		o.pool.Release()
	}
}

// Model returns the embedder's model identifier.
func (o *Orchestrator) Model() string {
	return o.embedder.Model()
}

// EmbedChunks ensures every chunk has a stored embedding under the
// current model. Chunks whose content is already embedded reuse the
// stored vector; identical content appearing multiple times, in this
// call or concurrently in others, results in a single provider request.
//
// A partial outcome is not an error: failed chunks are reported in the
// returned Report and the run is marked degraded.
func (o *Orchestrator) EmbedChunks(ctx context.Context, chunks []core.ContentChunk) (*Report, error) {
	report := &Report{Statuses: make([]ChunkStatus, len(chunks))}
	if len(chunks) == 0 {
		return report, nil
	}

	model := o.embedder.Model()

	// Deduplicate by content hash within the request.
	indexesByHash := make(map[core.ContentHash][]int)
	textByHash := make(map[core.ContentHash]string)
	var order []core.ContentHash
	for i, chunk := range chunks {
		report.Statuses[i] = ChunkStatus{Index: i, Hash: chunk.ContentHash}
		if _, seen := indexesByHash[chunk.ContentHash]; !seen {
			order = append(order, chunk.ContentHash)
			textByHash[chunk.ContentHash] = chunk.Text
		}
		indexesByHash[chunk.ContentHash] = append(indexesByHash[chunk.ContentHash], i)
	}

	var mu sync.Mutex
	resolve := func(hash core.ContentHash, state ChunkState, err error) {
		mu.Lock()
		defer mu.Unlock()
		for _, i := range indexesByHash[hash] {
			report.Statuses[i].State = state
			report.Statuses[i].Err = err
		}
		o.metrics.observeChunk(state)
	}

	var owned []core.ContentHash
	var waits []core.ContentHash

	for _, hash := range order {
		// Storage first: embeddings are immutable, so a hit is final.
		if _, err := o.repo.GetEmbedding(ctx, hash, model); err == nil {
			resolve(hash, StateReused, nil)
			continue
		}

		if _, loaded := o.flights.LoadOrStore(hash, &flight{done: make(chan struct{})}); loaded {
			waits = append(waits, hash)
			continue
		}
		owned = append(owned, hash)
	}

	var wg sync.WaitGroup

	// Batch the hashes this call owns and embed each batch on the pool.
	for start := 0; start < len(owned); start += o.batchSize {
		end := start + o.batchSize
		if end > len(owned) {
			end = len(owned)
		}
		batch := owned[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			o.embedBatch(ctx, model, batch, textByHash, resolve, report, &mu)
		}
		if err := o.pool.Submit(task); err != nil {
			// Pool saturated or released; run inline rather than drop.
			task()
		}
	}

	// Wait on flights owned by concurrent calls.
	for _, hash := range waits {
		wg.Add(1)
		hash := hash
		go func() {
			defer wg.Done()
			value, ok := o.flights.Load(hash)
			if !ok {
				// Owner already finished; the result is in storage.
				if _, err := o.repo.GetEmbedding(ctx, hash, model); err == nil {
					resolve(hash, StateReused, nil)
				} else {
					resolve(hash, StateFailed, err)
				}
				return
			}
			f := value.(*flight)
			select {
			case <-f.done:
				if f.err != nil {
					resolve(hash, StateFailed, f.err)
				} else {
					resolve(hash, StateReused, nil)
				}
			case <-ctx.Done():
				resolve(hash, StateFailed, ctx.Err())
			}
		}()
	}

	wg.Wait()

	for _, status := range report.Statuses {
		switch status.State {
		case StateEmbedded:
			report.Embedded++
		case StateReused:
			report.Reused++
		case StateSkipped:
			report.Skipped++
		case StateFailed:
			report.Failed++
		}
	}
	report.Degraded = report.Skipped > 0 || report.Failed > 0

	if report.Degraded {
		o.logger.Warn("embedding run degraded",
			"embedded", report.Embedded, "reused", report.Reused,
			"skipped", report.Skipped, "failed", report.Failed)
	}

	return report, nil
}

// embedBatch embeds one batch of owned hashes and completes their flights.
func (o *Orchestrator) embedBatch(ctx context.Context, model string, batch []core.ContentHash,
	textByHash map[core.ContentHash]string, resolve func(core.ContentHash, ChunkState, error),
	report *Report, mu *sync.Mutex) {

	if !o.breaker.Allow() {
		o.metrics.observeBreakerOpen()
		for _, hash := range batch {
			o.completeFlight(hash, nil, ErrCircuitOpen)
			resolve(hash, StateSkipped, ErrCircuitOpen)
		}
		return
	}

	texts := make([]string, len(batch))
	for i, hash := range batch {
		texts[i] = textByHash[hash]
	}

	var result *ai.BatchResult
	err := o.retry.Do(ctx, func() error {
		// Once a call is in flight, other requests may be waiting on its
		// result, so cancellation of this request must not abort it.
		callCtx := context.WithoutCancel(ctx)
		if o.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, o.timeout)
			defer cancel()
		}

		started := time.Now()
		var callErr error
		result, callErr = o.embedder.EmbedBatch(callCtx, texts)
		if callErr != nil {
			o.metrics.observeCall("error", time.Since(started).Seconds())
			return callErr
		}
		o.metrics.observeCall("ok", time.Since(started).Seconds())
		return nil
	})

	if err != nil {
		o.breaker.Failure()
		o.logger.Error("embedding batch failed", "size", len(batch), "err", err)
		for _, hash := range batch {
			o.completeFlight(hash, nil, err)
			resolve(hash, StateFailed, err)
		}
		return
	}

	o.breaker.Success()
	o.recordUsage(model, len(texts), result.Usage)

	mu.Lock()
	report.Usage.PromptTokens += result.Usage.PromptTokens
	report.Usage.TotalTokens += result.Usage.TotalTokens
	mu.Unlock()

	for i, hash := range batch {
		embedding := &core.Embedding{
			ContentHash: hash,
			Model:       model,
			Vector:      NormalizeVector(result.Vectors[i]),
			Tokens:      result.Usage.TotalTokens / max(len(texts), 1),
			InsertedAt:  time.Now().UTC(),
		}
		if putErr := o.repo.PutEmbedding(context.WithoutCancel(ctx), embedding); putErr != nil {
			o.completeFlight(hash, nil, putErr)
			resolve(hash, StateFailed, putErr)
			continue
		}
		o.completeFlight(hash, embedding, nil)
		resolve(hash, StateEmbedded, nil)
	}
}

// completeFlight publishes a flight's result and removes it from the
// in-flight map.
func (o *Orchestrator) completeFlight(hash core.ContentHash, emb *core.Embedding, err error) {
	value, ok := o.flights.Load(hash)
	if !ok {
		return
	}
	f := value.(*flight)
	f.emb = emb
	f.err = err
	o.flights.Delete(hash)
	close(f.done)
}

func (o *Orchestrator) recordUsage(model string, texts int, usage ai.Usage) {
	o.metrics.observeTokens(model, usage.TotalTokens)
	if o.costs == nil {
		return
	}
	o.costs.RecordUsage(UsageEvent{
		Model:        model,
		Texts:        texts,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
		At:           time.Now().UTC(),
	})
}
