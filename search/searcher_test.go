package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/jobdex/ai"
	"github.com/poiesic/jobdex/ai/mock"
	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/storage"
	"github.com/poiesic/jobdex/storage/badger"
)

type seedJob struct {
	title          string
	classification string
	language       core.Language
	department     string
	text           string
	indexed        bool
}

func seedCorpus(t *testing.T, embedder ai.Embedder, jobs []seedJob) (storage.DocumentRepository, storage.EmbeddingRepository) {
	t.Helper()
	docs, embeds, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	t.Cleanup(func() { docs.Close() })

	ctx := context.Background()
	for i, j := range jobs {
		doc := &core.SourceDocument{
			Path:        fmt.Sprintf("%s %s 10000%d - JD.txt", j.classification, j.title, i),
			ContentHash: core.HashContent(j.text),
			Text:        j.text,
		}
		job := &core.JobDescription{
			JobNumber:       fmt.Sprintf("10000%d", i),
			Title:           j.title,
			Classification:  j.classification,
			Language:        j.language,
			SemanticIndexed: j.indexed,
		}
		sections := []core.Section{
			{Type: core.SectionGeneralAccountability, Ordinal: 0, Start: 0, End: len(j.text), Confidence: 0.95},
		}
		chunks := []core.ContentChunk{
			{Index: 0, Start: 0, End: len(j.text), Text: j.text, ContentHash: core.HashContent(j.text)},
		}
		var metadata []core.MetadataValue
		if j.department != "" {
			metadata = append(metadata, core.MetadataValue{
				Field: core.FieldDepartment, Value: j.department, Confidence: 0.8,
			})
		}
		require.NoError(t, docs.AddDocument(ctx, doc, job, sections, chunks, metadata))

		if j.indexed && embedder != nil {
			result, err := embedder.EmbedBatch(ctx, []string{j.text})
			require.NoError(t, err)
			require.NoError(t, embeds.PutEmbedding(ctx, &core.Embedding{
				ContentHash: core.HashContent(j.text),
				Model:       embedder.Model(),
				Vector:      result.Vectors[0],
				InsertedAt:  time.Now().UTC(),
			}))
		}
	}
	return docs, embeds
}

func newTestSearcher(t *testing.T, embedder ai.Embedder, jobs []seedJob) *Searcher {
	t.Helper()
	docs, embeds := seedCorpus(t, embedder, jobs)

	model := "mock-embedder"
	if embedder != nil {
		model = embedder.Model()
	}
	index, err := NewIndex(docs, embeds, model)
	require.NoError(t, err)
	require.NoError(t, index.Rebuild(context.Background()))

	searcher, err := NewSearcher(index, embedder)
	require.NoError(t, err)
	return searcher
}

func TestSearch_TextRanking(t *testing.T) {
	searcher := newTestSearcher(t, nil, []seedJob{
		{
			title: "Dir, Business Analysis", classification: "EX-01", language: core.LanguageEnglish,
			text: "Leads the business analysis function. Business analysis drives planning.",
		},
		{
			title: "Manager, Finance", classification: "AS-07", language: core.LanguageEnglish,
			text: "Manages financial reporting and budget planning cycles.",
		},
	})

	results, err := searcher.Search(context.Background(), "business analysis", Facets{}, false, 10)
	require.NoError(t, err)
	require.Len(t, results, 1, "query terms appear in only one document")
	assert.Equal(t, "Dir, Business Analysis", results[0].Title)
	assert.Contains(t, results[0].MatchedSections, core.SectionGeneralAccountability)
}

func TestSearch_PartialMatchRanksLower(t *testing.T) {
	searcher := newTestSearcher(t, nil, []seedJob{
		{
			title: "Full Match", classification: "EX-01", language: core.LanguageEnglish,
			text: "Oversees procurement strategy and vendor management across regions.",
		},
		{
			title: "Partial Match", classification: "EX-02", language: core.LanguageEnglish,
			text: "Oversees communications strategy only.",
		},
	})

	results, err := searcher.Search(context.Background(), "procurement strategy", Facets{}, false, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Full Match", results[0].Title)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearch_Facets(t *testing.T) {
	jobs := []seedJob{
		{
			title: "Dir, Policy", classification: "EX-01", language: core.LanguageEnglish,
			department: "Policy Branch",
			text:       "Develops policy frameworks and regulatory analysis.",
		},
		{
			title: "Directeur, Politique", classification: "EX-01", language: core.LanguageFrench,
			department: "Direction des politiques",
			text:       "Responsable des cadres de politique et analyse.",
		},
		{
			title: "Analyst, Policy", classification: "EC-05", language: core.LanguageEnglish,
			department: "Policy Branch",
			text:       "Performs policy research and analysis work.",
		},
	}
	searcher := newTestSearcher(t, nil, jobs)
	ctx := context.Background()

	results, err := searcher.Search(ctx, "policy analysis", Facets{Classification: "EX-01"}, false, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dir, Policy", results[0].Title)

	results, err = searcher.Search(ctx, "analyse politique", Facets{Language: core.LanguageFrench}, false, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Directeur, Politique", results[0].Title)

	results, err = searcher.Search(ctx, "policy", Facets{Department: "Policy Branch"}, false, 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_SemanticRanking(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	target := "Leads enterprise data governance and stewardship programs."
	searcher := newTestSearcher(t, embedder, []seedJob{
		{
			title: "Dir, Data Governance", classification: "EX-01", language: core.LanguageEnglish,
			text: target, indexed: true,
		},
		{
			title: "Dir, Facilities", classification: "EX-01", language: core.LanguageEnglish,
			text: "Manages building operations and governance of leases.", indexed: true,
		},
	})

	// The mock embedder is deterministic, so querying with the exact
	// chunk text yields cosine similarity 1.0 for that chunk.
	results, err := searcher.Search(context.Background(), target, Facets{}, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Dir, Data Governance", results[0].Title)
	assert.InDelta(t, 1.0, float64(results[0].VectorScore), 0.01)
	assert.False(t, results[0].SemanticUnavailable)
}

func TestSearch_DegradesWhenEmbeddingFails(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	jobs := []seedJob{
		{
			title: "Dir, Operations", classification: "EX-01", language: core.LanguageEnglish,
			text: "Directs national operations and service delivery.", indexed: true,
		},
	}
	searcher := newTestSearcher(t, embedder, jobs)

	embedder.EmbedBatchFunc = func(ctx context.Context, texts []string) (*ai.BatchResult, error) {
		return nil, ai.ErrUnavailable
	}

	results, err := searcher.Search(context.Background(), "operations delivery", Facets{}, true, 10)
	require.NoError(t, err, "provider outage must not fail the search")
	require.Len(t, results, 1)
	assert.True(t, results[0].SemanticUnavailable)
	assert.Positive(t, results[0].TextScore)
	assert.Zero(t, results[0].VectorScore)
}

func TestSearch_EmptyQuery(t *testing.T) {
	searcher := newTestSearcher(t, nil, []seedJob{
		{
			title: "Any", classification: "EX-01", language: core.LanguageEnglish,
			text: "Some content here.",
		},
	})

	_, err := searcher.Search(context.Background(), "the of and", Facets{}, false, 10)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_EmptyIndex(t *testing.T) {
	docs, embeds, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()
	defer docs.Close()

	index, err := NewIndex(docs, embeds, "mock-embedder")
	require.NoError(t, err)

	searcher, err := NewSearcher(index, nil)
	require.NoError(t, err)

	// Never rebuilt: no snapshot at all.
	results, err := searcher.Search(context.Background(), "anything", Facets{}, false, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSuggest(t *testing.T) {
	searcher := newTestSearcher(t, nil, []seedJob{
		{
			title: "Dir, Procurement", classification: "EX-01", language: core.LanguageEnglish,
			text: "Procurement procurement procurement. Processes and procedures.",
		},
	})

	suggestions := searcher.Suggest("proc", 10)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "procurement", suggestions[0], "most frequent term first")
	assert.Contains(t, suggestions, "processes")

	assert.Empty(t, searcher.Suggest("", 10))
	assert.Empty(t, searcher.Suggest("zzz", 10))
}
