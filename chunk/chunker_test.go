package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/jobdex/core"
)

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(Config{Size: 0})
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = New(Config{Size: 100, Overlap: 100})
	assert.ErrorIs(t, err, ErrInvalidOverlap)

	_, err = New(Config{Size: 100, Overlap: 10, Tolerance: -1})
	assert.ErrorIs(t, err, ErrInvalidTolerance)
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	text := "A short job description."
	chunks := c.Chunk(core.IDFromContent(text), text)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(text), chunks[0].End)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Overlap)
	assert.Equal(t, core.HashContent(text), chunks[0].ContentHash)
}

func TestChunk_EmptyText(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, c.Chunk(core.ID(1), ""))
}

func TestChunk_PrefersParagraphBreak(t *testing.T) {
	c, err := New(Config{Size: 100, Overlap: 20, Tolerance: 30})
	require.NoError(t, err)

	text := strings.Repeat("a", 80) + "\n\n" + strings.Repeat("b", 200)
	chunks := c.Chunk(core.ID(1), text)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 82, chunks[0].End, "cut should land just after the paragraph break")
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"))
}

func TestChunk_FallsBackToSentenceBreak(t *testing.T) {
	c, err := New(Config{Size: 100, Overlap: 20, Tolerance: 30})
	require.NoError(t, err)

	text := strings.Repeat("a", 90) + ". " + strings.Repeat("b", 200)
	chunks := c.Chunk(core.ID(1), text)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 92, chunks[0].End)
	assert.True(t, strings.HasSuffix(chunks[0].Text, ". "))
}

func TestChunk_HardCutWithoutBoundary(t *testing.T) {
	c, err := New(Config{Size: 100, Overlap: 20, Tolerance: 30})
	require.NoError(t, err)

	text := strings.Repeat("x", 500)
	chunks := c.Chunk(core.ID(1), text)

	require.NotEmpty(t, chunks)
	assert.Equal(t, 100, chunks[0].End)
}

func TestChunk_OverlapCarriesText(t *testing.T) {
	c, err := New(Config{Size: 100, Overlap: 20, Tolerance: 0})
	require.NoError(t, err)

	text := strings.Repeat("x", 350)
	chunks := c.Chunk(core.ID(1), text)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].End-chunks[i].Start, chunks[i].Overlap)
		assert.Equal(t, 20, chunks[i].Overlap)
	}
}

func TestChunk_FullCoverageAcrossConfigs(t *testing.T) {
	texts := []string{
		strings.Repeat("The incumbent leads the analysis function. ", 120),
		strings.Repeat("Paragraphe en français.\n\n", 90),
		strings.Repeat("no boundaries here", 400),
	}
	configs := []Config{
		DefaultConfig(),
		{Size: 300, Overlap: 50, Tolerance: 60},
		{Size: 64, Overlap: 0, Tolerance: 10},
		{Size: 97, Overlap: 31, Tolerance: 0},
	}

	for _, cfg := range configs {
		c, err := New(cfg)
		require.NoError(t, err)
		for _, text := range texts {
			chunks := c.Chunk(core.ID(7), text)
			require.NoError(t, core.ValidateChunks(chunks, len(text)))
			for _, ch := range chunks {
				assert.Equal(t, text[ch.Start:ch.End], ch.Text)
				assert.LessOrEqual(t, ch.End-ch.Start, cfg.Size+cfg.Tolerance)
			}
		}
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	text := strings.Repeat("Stable input text produces stable chunks. ", 200)
	first := c.Chunk(core.ID(1), text)
	second := c.Chunk(core.ID(1), text)
	assert.Equal(t, first, second)
}

func TestChunk_LargeOverlapAdvancesPastMultibyteRunes(t *testing.T) {
	// Overlap nearly equal to size forces the scan to restart one byte
	// after the previous start, which can land inside an accented
	// character. The scan must still make forward progress.
	c, err := New(Config{Size: 10, Overlap: 9, Tolerance: 9})
	require.NoError(t, err)

	text := "é. " + strings.Repeat("x", 40) + " ministère de l'emploi"
	chunks := c.Chunk(core.ID(1), text)

	require.NotEmpty(t, chunks)
	require.NoError(t, core.ValidateChunks(chunks, len(text)))
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].Start, chunks[i-1].Start, "chunk %d did not advance", i)
	}
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Text))
	}
}

func TestChunk_TargetInsideWideRune(t *testing.T) {
	// A one-byte target inside a multi-byte rune keeps the rune whole
	// rather than emitting an empty span.
	c, err := New(Config{Size: 1, Overlap: 0, Tolerance: 0})
	require.NoError(t, err)

	text := "été"
	chunks := c.Chunk(core.ID(1), text)

	require.NoError(t, core.ValidateChunks(chunks, len(text)))
	for _, ch := range chunks {
		assert.NotEmpty(t, ch.Text)
		assert.True(t, utf8.ValidString(ch.Text))
	}
}

func TestChunk_NeverSplitsRunes(t *testing.T) {
	c, err := New(Config{Size: 50, Overlap: 10, Tolerance: 0})
	require.NoError(t, err)

	text := strings.Repeat("élève véhicule ministère ", 60)
	chunks := c.Chunk(core.ID(1), text)

	require.NotEmpty(t, chunks)
	for _, ch := range chunks {
		assert.True(t, utf8.ValidString(ch.Text))
	}
	require.NoError(t, core.ValidateChunks(chunks, len(text)))
}
