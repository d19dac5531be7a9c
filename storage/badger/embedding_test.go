package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/jobdex/core"
	"github.com/poiesic/jobdex/storage"
)

func TestEmbedding_PutGet(t *testing.T) {
	_, embeds, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	hash := core.HashContent("chunk text")
	emb := &core.Embedding{
		ContentHash: hash,
		Model:       "embeddinggemma",
		Vector:      []float32{0.1, 0.2, 0.3},
		Tokens:      42,
	}
	require.NoError(t, embeds.PutEmbedding(ctx, emb))

	got, err := embeds.GetEmbedding(ctx, hash, "embeddinggemma")
	require.NoError(t, err)
	assert.Equal(t, emb.Vector, got.Vector)
	assert.Equal(t, 42, got.Tokens)

	_, err = embeds.GetEmbedding(ctx, hash, "other-model")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmbedding_PutIsImmutable(t *testing.T) {
	_, embeds, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	hash := core.HashContent("stable chunk")
	require.NoError(t, embeds.PutEmbedding(ctx, &core.Embedding{
		ContentHash: hash,
		Model:       "m",
		Vector:      []float32{1, 0},
	}))
	require.NoError(t, embeds.PutEmbedding(ctx, &core.Embedding{
		ContentHash: hash,
		Model:       "m",
		Vector:      []float32{0, 1},
	}))

	got, err := embeds.GetEmbedding(ctx, hash, "m")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, got.Vector, "first stored vector must win")
}

func TestEmbedding_RefCounting(t *testing.T) {
	_, embeds, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	hash := core.HashContent("shared chunk")
	require.NoError(t, embeds.PutEmbedding(ctx, &core.Embedding{
		ContentHash: hash,
		Model:       "m",
		Vector:      []float32{0.7},
	}))

	// Two documents share the chunk.
	require.NoError(t, embeds.AddEmbeddingRef(ctx, hash, "m"))
	require.NoError(t, embeds.AddEmbeddingRef(ctx, hash, "m"))

	require.NoError(t, embeds.ReleaseEmbeddingRef(ctx, hash, "m"))
	_, err = embeds.GetEmbedding(ctx, hash, "m")
	require.NoError(t, err, "embedding must survive while a reference remains")

	require.NoError(t, embeds.ReleaseEmbeddingRef(ctx, hash, "m"))
	_, err = embeds.GetEmbedding(ctx, hash, "m")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Releasing with no references held is a no-op.
	require.NoError(t, embeds.ReleaseEmbeddingRef(ctx, hash, "m"))
}

func TestEmbedding_ListByModel(t *testing.T) {
	_, embeds, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, embeds.PutEmbedding(ctx, &core.Embedding{
			ContentHash: core.HashContent(text),
			Model:       "model-a",
			Vector:      []float32{0.5},
		}))
	}
	require.NoError(t, embeds.PutEmbedding(ctx, &core.Embedding{
		ContentHash: core.HashContent("four"),
		Model:       "model-b",
		Vector:      []float32{0.5},
	}))

	listed, err := embeds.ListEmbeddings(ctx, "model-a")
	require.NoError(t, err)
	assert.Len(t, listed, 3)

	listed, err = embeds.ListEmbeddings(ctx, "model-b")
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
