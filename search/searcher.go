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
	"math"
	"sort"
	"time"

	"github.com/poiesic/jobdex/ai"
	"github.com/poiesic/jobdex/core"
)

const defaultMaxHits = 10

// Facets restrict a search to exact attribute matches. Zero values
// leave a facet unconstrained.
type Facets struct {
	Classification string
	Department     string
	Language       core.Language
}

// RankedResult is one search hit.
type RankedResult struct {
	JobId          core.ID
	JobNumber      string
	Title          string
	Classification string
	Language       core.Language

	// Score is the combined ranking score.
	Score float32
	// TextScore and VectorScore are the components before weighting.
	TextScore   float32
	VectorScore float32

	// MatchedSections lists the section types that contributed to the hit.
	MatchedSections []core.SectionType

	// SemanticUnavailable is true when semantic ranking was requested
	// but could not be applied to this result.
	SemanticUnavailable bool

	processedAt time.Time
}

// Searcher runs hybrid full-text and vector queries against an index
// snapshot.
type Searcher struct {
	index        *Index
	embedder     ai.Embedder
	textWeight   float32
	vectorWeight float32
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithWeights sets the text and vector score weights. Both default to 0.5.
func WithWeights(text, vector float32) Option {
	return func(s *Searcher) error {
		s.textWeight = text
		s.vectorWeight = vector
		return nil
	}
}

// NewSearcher creates a searcher. The embedder may be nil, in which
// case all searches are text-only.
func NewSearcher(index *Index, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	s := &Searcher{
		index:        index,
		embedder:     embedder,
		textWeight:   0.5,
		vectorWeight: 0.5,
		logger:       slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search ranks indexed job descriptions against the query. Facets are
// hard filters applied before scoring. When semantic is true the query
// is embedded and vector similarity contributes to ranking; if the
// embedding cannot be obtained the search degrades to text-only and
// results are flagged rather than failing.
func (s *Searcher) Search(ctx context.Context, query string, facets Facets, semantic bool, maxHits int) ([]*RankedResult, error) {
	snap := s.index.Snapshot()
	if snap == nil || len(snap.entries) == 0 {
		return []*RankedResult{}, nil
	}

	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return nil, ErrEmptyQuery
	}

	if maxHits <= 0 {
		maxHits = defaultMaxHits
	}

	var queryVector []float32
	semanticDegraded := false
	if semantic {
		queryVector = s.embedQuery(ctx, query)
		semanticDegraded = queryVector == nil
	}

	var results []*RankedResult
	for _, entry := range snap.entries {
		if !matchesFacets(entry, facets) {
			continue
		}

		textScore, matchedSections := scoreText(entry, queryWords)

		var vectorScore float32
		vectorDegraded := semanticDegraded
		if semantic && queryVector != nil {
			if !entry.SemanticIndexed {
				vectorDegraded = true
			} else {
				var best []core.SectionType
				vectorScore, best = scoreVector(snap, entry, queryVector)
				matchedSections = mergeSections(matchedSections, best)
			}
		}

		var score float32
		if semantic && !vectorDegraded {
			score = s.textWeight*textScore + s.vectorWeight*vectorScore
		} else {
			score = textScore
		}
		if score <= 0 {
			continue
		}

		results = append(results, &RankedResult{
			JobId:               entry.JobId,
			JobNumber:           entry.JobNumber,
			Title:               entry.Title,
			Classification:      entry.Classification,
			Language:            entry.Language,
			Score:               score,
			TextScore:           textScore,
			VectorScore:         vectorScore,
			MatchedSections:     matchedSections,
			SemanticUnavailable: semantic && vectorDegraded,
			processedAt:         entry.ProcessedAt,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		// Equal scores: most recently processed first.
		return results[i].processedAt.After(results[j].processedAt)
	})

	if len(results) > maxHits {
		results = results[:maxHits]
	}
	return results, nil
}

// embedQuery embeds the query text, returning nil on any failure.
func (s *Searcher) embedQuery(ctx context.Context, query string) []float32 {
	if s.embedder == nil {
		return nil
	}
	result, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		s.logger.Warn("query embedding failed, degrading to text-only search", "err", err)
		return nil
	}
	if len(result.Vectors) == 0 {
		return nil
	}
	return normalize(result.Vectors[0])
}

func matchesFacets(entry *indexEntry, facets Facets) bool {
	if facets.Classification != "" && entry.Classification != facets.Classification {
		return false
	}
	if facets.Department != "" && entry.Department != facets.Department {
		return false
	}
	if facets.Language != core.LanguageUnknown && entry.Language != facets.Language {
		return false
	}
	return true
}

// scoreText computes the full-text component: term coverage weighted
// with damped term frequency, plus the section types the query hit.
func scoreText(entry *indexEntry, queryWords []string) (float32, []core.SectionType) {
	matched := 0
	raw := 0
	for _, word := range queryWords {
		if freq := entry.docTokens[word]; freq > 0 {
			matched++
			raw += freq
		}
	}
	if matched == 0 {
		return 0, nil
	}

	coverage := float32(matched) / float32(len(queryWords))
	tf := float32(raw) / float32(raw+10)
	score := 0.6*coverage + 0.4*tf

	var sections []core.SectionType
	for _, sectionType := range append([]core.SectionType{core.SectionUnclassified}, core.CanonicalSectionTypes...) {
		tokens, ok := entry.sectionTokens[sectionType]
		if !ok {
			continue
		}
		for _, word := range queryWords {
			if tokens[word] > 0 {
				sections = append(sections, sectionType)
				break
			}
		}
	}

	return score, sections
}

// scoreVector returns the best cosine similarity between the query and
// the entry's chunk vectors, with the sections of the best chunk.
func scoreVector(snap *Snapshot, entry *indexEntry, queryVector []float32) (float32, []core.SectionType) {
	var best float32
	var bestSections []core.SectionType
	for _, ref := range entry.chunks {
		vector, ok := snap.vectors[ref.hash]
		if !ok {
			continue
		}
		// Vectors are stored normalized, so the dot product is the
		// cosine similarity.
		sim := dotProduct(queryVector, vector)
		if sim > best {
			best = sim
			bestSections = ref.sections
		}
	}
	return best, bestSections
}

func mergeSections(a, b []core.SectionType) []core.SectionType {
	seen := make(map[core.SectionType]bool, len(a))
	out := append([]core.SectionType{}, a...)
	for _, t := range a {
		seen[t] = true
	}
	for _, t := range b {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func normalize(v []float32) []float32 {
	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val / magnitude
	}
	return out
}

func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
