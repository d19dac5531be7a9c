package jobdex

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/jobdex/ai"
	"github.com/poiesic/jobdex/ai/mock"
	"github.com/poiesic/jobdex/search"
)

const directorJD = `General Accountability

Leads the business analysis function for the branch and directs
planning activities across all regional operations.

Organization Structure

Reports to: Director General, Corporate Services
Branch: Business Analysis and Planning
Staff: 12

Dimensions

Salary budget: $1,250,000
`

const analystJD = `General Accountability

Performs business analysis for branch planning initiatives and
supports regional reporting.

Organization Structure

Reports to: Director, Business Analysis
Staff: 2
`

const financeJD = `General Accountability

Directs the corporate accounting function and oversees financial
statement preparation for the department.

Organization Structure

Reports to: Chief Financial Officer
Staff: 30
`

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "jobdex_db"),
		WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	db := newTestDatabase(t)
	assert.NotNil(t, db.DocumentRepository())
	assert.NotNil(t, db.EmbeddingRepository())
	assert.NotNil(t, db.backend)
}

func TestDatabase_IngestAndSearch(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	result, err := db.Ingest(ctx, directorJD, "EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.NoError(t, err)
	require.True(t, result.SemanticIndexed)

	_, err = db.Ingest(ctx, financeJD, "EX-02 Dir, Corporate Accounting 103260 - JD.txt")
	require.NoError(t, err)

	hits, err := db.Search(ctx, "business analysis planning", search.Facets{}, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "103249", hits[0].JobNumber)

	hits, err = db.Search(ctx, "accounting financial", search.Facets{}, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "103260", hits[0].JobNumber)
}

func TestDatabase_SearchSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobdex_db")

	db, err := NewDatabase(path, WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	_, err = db.Ingest(context.Background(), directorJD, "EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := NewDatabase(path, WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.Search(context.Background(), "business analysis", search.Facets{}, true, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "103249", hits[0].JobNumber)
}

func TestDatabase_Suggest(t *testing.T) {
	db := newTestDatabase(t)
	_, err := db.Ingest(context.Background(), directorJD, "EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.NoError(t, err)

	terms := db.Suggest("busi", 5)
	assert.Contains(t, terms, "business")
}

func TestDatabase_Similar(t *testing.T) {
	// Embed by topic keyword counts so documents about the same work
	// produce nearby vectors.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedBatchFunc = func(ctx context.Context, texts []string) (*ai.BatchResult, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			lower := strings.ToLower(text)
			vectors[i] = []float32{
				float32(strings.Count(lower, "analysis")) + 0.01,
				float32(strings.Count(lower, "planning")) + 0.01,
				float32(strings.Count(lower, "accounting")) + 0.01,
			}
		}
		return &ai.BatchResult{Vectors: vectors, Usage: ai.Usage{TotalTokens: len(texts)}}, nil
	}
	db, err := NewDatabase(filepath.Join(t.TempDir(), "jobdex_db"), WithEmbedder(embedder))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	director, err := db.Ingest(ctx, directorJD, "EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.NoError(t, err)
	_, err = db.Ingest(ctx, analystJD, "AS-05 Business Analyst 103251 - JD.txt")
	require.NoError(t, err)
	_, err = db.Ingest(ctx, financeJD, "EX-02 Dir, Corporate Accounting 103260 - JD.txt")
	require.NoError(t, err)

	similar, err := db.Similar(ctx, director.JobId, 10)
	require.NoError(t, err)
	require.Len(t, similar, 2)

	// The analyst role shares vocabulary and structure with the
	// director role; the accounting role does not.
	assert.Equal(t, "103251", similar[0].JobNumber)
	assert.Greater(t, similar[0].Result.Overall, similar[1].Result.Overall)
}

func TestDatabase_MetricsRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "jobdex_db"),
		WithEmbedder(mock.NewMockEmbedder()),
		WithMetricsRegisterer(registry))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Ingest(context.Background(), directorJD, "EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.NoError(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["jobdex_embed_chunks_total"])
	assert.True(t, names["jobdex_embed_provider_calls_total"])
	assert.True(t, names["jobdex_embed_tokens_total"])
}

func TestDatabase_Reembed(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	_, err := db.Ingest(ctx, directorJD, "EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.NoError(t, err)

	report, err := db.Reembed(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Jobs)
	assert.Zero(t, report.Embedded, "ingest already stored every vector")
	assert.Positive(t, report.Reused)
}
