package classify

import (
	"testing"

	"github.com/poiesic/jobdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Primary(t *testing.T) {
	c := New()

	result := c.Classify("EX-01 Dir, Business Analysis 103249 - JD.txt")
	assert.Equal(t, PatternPrimary, result.Kind)
	assert.Equal(t, "EX-01", result.Classification)
	assert.Equal(t, "103249", result.JobNumber)
	assert.Equal(t, "Dir, Business Analysis", result.Title)
	assert.Equal(t, core.LanguageEnglish, result.Language)
	assert.GreaterOrEqual(t, result.Confidence, 0.9)
}

func TestClassify_PrimaryFrench(t *testing.T) {
	c := New()

	result := c.Classify("EX-02 Directeur, Analyse 104511 - DE.docx")
	assert.Equal(t, PatternPrimary, result.Kind)
	assert.Equal(t, "EX-02", result.Classification)
	assert.Equal(t, "104511", result.JobNumber)
	assert.Equal(t, "Directeur, Analyse", result.Title)
	assert.Equal(t, core.LanguageFrench, result.Language)
}

func TestClassify_Legacy(t *testing.T) {
	c := New()

	t.Run("number first", func(t *testing.T) {
		result := c.Classify("103249 EX-01 Dir Business Analysis.doc")
		assert.Equal(t, PatternLegacy, result.Kind)
		assert.Equal(t, "legacy-number-first", result.Pattern)
		assert.Equal(t, "103249", result.JobNumber)
		assert.Equal(t, "EX-01", result.Classification)
		assert.Equal(t, "Dir Business Analysis", result.Title)
		assert.Equal(t, core.LanguageUnknown, result.Language)
	})

	t.Run("underscore", func(t *testing.T) {
		result := c.Classify("JD_EX-01_103249_Dir_Business_Analysis.txt")
		assert.Equal(t, PatternLegacy, result.Kind)
		assert.Equal(t, "legacy-underscore", result.Pattern)
		assert.Equal(t, "EX-01", result.Classification)
		assert.Equal(t, "103249", result.JobNumber)
		assert.Equal(t, "Dir Business Analysis", result.Title)
		assert.Equal(t, core.LanguageEnglish, result.Language)
	})

	t.Run("underscore without title", func(t *testing.T) {
		result := c.Classify("DE_PM-06_99120.txt")
		assert.Equal(t, PatternLegacy, result.Kind)
		assert.Equal(t, "PM-06", result.Classification)
		assert.Empty(t, result.Title)
		assert.Equal(t, core.LanguageFrench, result.Language)
	})
}

func TestClassify_Unrecognized(t *testing.T) {
	c := New()

	for _, name := range []string{
		"notes.txt",
		"final FINAL v2 (copy).docx",
		"",
	} {
		result := c.Classify(name)
		assert.Equal(t, PatternUnrecognized, result.Kind, "name %q", name)
		assert.Empty(t, result.Classification)
		assert.Empty(t, result.JobNumber)
		assert.Empty(t, result.Title)
		assert.Equal(t, core.LanguageUnknown, result.Language)
		assert.Less(t, result.Confidence, 0.5)
	}
}

func TestClassify_StripsDirectoryAndExtension(t *testing.T) {
	c := New()

	result := c.Classify("/data/inbox/EX-01 Dir, Business Analysis 103249 - JD.txt")
	require.Equal(t, PatternPrimary, result.Kind)
	assert.Equal(t, "103249", result.JobNumber)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// A name matching only the legacy convention must not be forced
	// through the primary pattern.
	c := New()
	result := c.Classify("99120 AS-05 Program Officer.txt")
	assert.Equal(t, "legacy-number-first", result.Pattern)
}

func TestNewPattern_InvalidExpression(t *testing.T) {
	_, err := NewPattern("bad", PatternLegacy, 0.5, "([")
	require.Error(t, err)
}
