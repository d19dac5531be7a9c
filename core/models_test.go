package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("Director, Business Analysis")
		id2 := IDFromContent("Director, Business Analysis")
		assert.Equal(t, id1, id2)
	})

	t.Run("distinct content distinct ids", func(t *testing.T) {
		id1 := IDFromContent("General Accountability")
		id2 := IDFromContent("Dimensions")
		assert.NotEqual(t, id1, id2)
	})
}

func TestHashContent(t *testing.T) {
	h1 := HashContent("Staff: 12")
	h2 := HashContent("Staff: 12")
	h3 := HashContent("Staff: 13")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, string(h1), 64) // hex-encoded SHA-256
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, "en", LanguageEnglish.String())
	assert.Equal(t, "fr", LanguageFrench.String())
	assert.Equal(t, "und", LanguageUnknown.String())

	assert.Equal(t, LanguageEnglish, ParseLanguage("en"))
	assert.Equal(t, LanguageFrench, ParseLanguage("fr"))
	assert.Equal(t, LanguageUnknown, ParseLanguage("de"))
}

func TestCanonicalSectionTypes(t *testing.T) {
	require.Len(t, CanonicalSectionTypes, 6)
	for _, st := range CanonicalSectionTypes {
		assert.NotEqual(t, SectionUnclassified, st)
		assert.NotEqual(t, "unclassified", st.String())
	}
}

func TestSectionSpan(t *testing.T) {
	text := "General Accountability\nManages the analysis function."
	s := Section{Type: SectionGeneralAccountability, Start: 23, End: len(text)}
	assert.Equal(t, "Manages the analysis function.", s.Span(text))

	t.Run("out of bounds returns empty", func(t *testing.T) {
		bad := Section{Start: 10, End: len(text) + 5}
		assert.Equal(t, "", bad.Span(text))
	})
}

func TestSerializationRoundTrip(t *testing.T) {
	doc := SourceDocument{
		Id:          42,
		Path:        "EX-01 Dir, Business Analysis 103249 - JD.txt",
		ContentHash: HashContent("body"),
		Text:        "body",
	}

	buf := make([]byte, SourceDocumentMUS.Size(doc))
	n := SourceDocumentMUS.Marshal(doc, buf)
	require.Equal(t, len(buf), n)

	got, m, err := SourceDocumentMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, m)
	assert.Equal(t, doc.Path, got.Path)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.Text, got.Text)

	t.Run("embedding vector survives", func(t *testing.T) {
		emb := Embedding{
			ContentHash: HashContent("chunk"),
			Model:       "text-embedding-3-small",
			Vector:      []float32{0.25, -0.5, 0.125},
			Tokens:      7,
		}
		buf := make([]byte, EmbeddingMUS.Size(emb))
		EmbeddingMUS.Marshal(emb, buf)
		got, _, err := EmbeddingMUS.Unmarshal(buf)
		require.NoError(t, err)
		assert.Equal(t, emb.Vector, got.Vector)
		assert.Equal(t, emb.Tokens, got.Tokens)
	})
}
