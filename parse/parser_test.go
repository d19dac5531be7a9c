package parse

import (
	"strings"
	"testing"

	"github.com/poiesic/jobdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultConfig())
	require.NoError(t, err)
	return p
}

func TestParse_TwoSections(t *testing.T) {
	p := newParser(t)

	text := "General Accountability\n" +
		"Leads the business analysis function for the branch.\n" +
		"Dimensions\n" +
		"Staff: 12\n"

	sections, language, warnings := p.Parse(text, core.LanguageUnknown)
	require.Len(t, sections, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, core.LanguageEnglish, language)

	assert.Equal(t, core.SectionGeneralAccountability, sections[0].Type)
	assert.Equal(t, core.SectionDimensions, sections[1].Type)
	assert.Equal(t, 0, sections[0].Ordinal)
	assert.Equal(t, 1, sections[1].Ordinal)

	// Spans include their heading lines and cover the whole document.
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, sections[0].End, sections[1].Start)
	assert.Equal(t, len(text), sections[1].End)
	require.NoError(t, core.ValidateSections(sections, len(text)))

	assert.Contains(t, sections[1].Span(text), "Staff: 12")
}

func TestParse_NoHeadings(t *testing.T) {
	p := newParser(t)

	text := "This document has no recognizable structure at all.\nJust prose.\n"
	sections, language, warnings := p.Parse(text, core.LanguageUnknown)

	require.Len(t, sections, 1)
	assert.Empty(t, warnings)
	assert.Equal(t, core.SectionUnclassified, sections[0].Type)
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, len(text), sections[0].End)
	assert.Equal(t, core.LanguageEnglish, language)
	assert.Less(t, sections[0].Confidence, 0.5)
}

func TestParse_LeadingTextBecomesUnclassified(t *testing.T) {
	p := newParser(t)

	text := "POSITION 103249\nsome preamble\n\nGeneral Accountability\nDoes things.\n"
	sections, _, _ := p.Parse(text, core.LanguageEnglish)

	require.Len(t, sections, 2)
	assert.Equal(t, core.SectionUnclassified, sections[0].Type)
	assert.Equal(t, core.SectionGeneralAccountability, sections[1].Type)
	require.NoError(t, core.ValidateSections(sections, len(text)))
}

func TestParse_AdjacentHeadingsMerged(t *testing.T) {
	p := newParser(t)

	// "Nature and Scope" has no body before "Dimensions": false positive,
	// absorbed into the Dimensions section.
	text := "General Accountability\nReal body text.\n" +
		"Nature and Scope\n" +
		"Dimensions\nStaff: 4\n"

	sections, _, warnings := p.Parse(text, core.LanguageEnglish)
	require.Len(t, sections, 2)
	assert.Equal(t, core.SectionGeneralAccountability, sections[0].Type)
	assert.Equal(t, core.SectionDimensions, sections[1].Type)

	require.Len(t, warnings, 1)
	assert.Equal(t, core.WarnStructural, warnings[0].Kind)

	// The false-positive heading's text must not be dropped.
	assert.Contains(t, sections[1].Span(text), "Nature and Scope")
	require.NoError(t, core.ValidateSections(sections, len(text)))
}

func TestParse_FrenchHeadings(t *testing.T) {
	p := newParser(t)

	text := "Responsabilité générale\nDirige la fonction d'analyse.\n" +
		"Structure organisationnelle\nRelève du directeur général.\n"

	sections, language, _ := p.Parse(text, core.LanguageUnknown)
	require.Len(t, sections, 2)
	assert.Equal(t, core.SectionGeneralAccountability, sections[0].Type)
	assert.Equal(t, core.SectionOrganizationStructure, sections[1].Type)
	assert.Equal(t, core.LanguageFrench, language)
}

func TestParse_OCRNoise(t *testing.T) {
	p := newParser(t)

	t.Run("accents dropped", func(t *testing.T) {
		text := "Responsabilite generale\nTexte.\n"
		sections, _, _ := p.Parse(text, core.LanguageFrench)
		require.Len(t, sections, 1)
		assert.Equal(t, core.SectionGeneralAccountability, sections[0].Type)
	})

	t.Run("trailing colon and casing", func(t *testing.T) {
		text := "GENERAL ACCOUNTABILITY:\nBody.\n"
		sections, _, _ := p.Parse(text, core.LanguageEnglish)
		require.Len(t, sections, 1)
		assert.Equal(t, core.SectionGeneralAccountability, sections[0].Type)
	})

	t.Run("numbered heading matches with lower confidence", func(t *testing.T) {
		text := "1. Nature and Scope\nBody text here.\n"
		sections, _, _ := p.Parse(text, core.LanguageEnglish)
		require.Len(t, sections, 1)
		assert.Equal(t, core.SectionNatureAndScope, sections[0].Type)
		assert.InDelta(t, DefaultConfig().TolerantConfidence, sections[0].Confidence, 0.001)
	})
}

func TestParse_LanguageHintWins(t *testing.T) {
	p := newParser(t)

	text := "General Accountability\nBody.\n"
	_, language, _ := p.Parse(text, core.LanguageFrench)
	assert.Equal(t, core.LanguageFrench, language)
}

func TestParse_ReorderedSections(t *testing.T) {
	p := newParser(t)

	// Sections out of conventional order still parse positionally.
	text := "Dimensions\nStaff: 2\nGeneral Accountability\nBody.\n"
	sections, _, _ := p.Parse(text, core.LanguageEnglish)
	require.Len(t, sections, 2)
	assert.Equal(t, core.SectionDimensions, sections[0].Type)
	assert.Equal(t, core.SectionGeneralAccountability, sections[1].Type)
	require.NoError(t, core.ValidateSections(sections, len(text)))
}

func TestParse_ChainOfAdjacentHeadings(t *testing.T) {
	p := newParser(t)

	text := "General Accountability\nNature and Scope\nDimensions\nStaff: 9\n"
	sections, _, warnings := p.Parse(text, core.LanguageEnglish)

	require.Len(t, sections, 1)
	assert.Equal(t, core.SectionDimensions, sections[0].Type)
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, len(text), sections[0].End)
	assert.Len(t, warnings, 2)
}

func TestParse_EmptyText(t *testing.T) {
	p := newParser(t)
	sections, language, warnings := p.Parse("", core.LanguageUnknown)
	assert.Empty(t, sections)
	assert.Empty(t, warnings)
	assert.Equal(t, core.LanguageEnglish, language)
}

func TestNewParser_RejectsConflictingLexicon(t *testing.T) {
	lexicon := Lexicon{
		core.SectionDimensions:    {{Text: "Dimensions"}},
		core.SectionNatureAndScope: {{Text: "dimensions"}},
	}
	_, err := NewParser(Config{Lexicon: lexicon})
	require.ErrorIs(t, err, ErrInvalidLexicon)
}

func TestNormalizeHeading(t *testing.T) {
	cases := map[string]string{
		"General Accountability:":      "general accountability",
		"  NATURE AND SCOPE  ":         "nature and scope",
		"Structure de l'organisation":  "structure de l organisation",
		"Responsabilités générales":    "responsabilites generales",
		"Knowledge, Skills and Abilities": "knowledge skills and abilities",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeHeading(in), "input %q", in)
	}
}

func TestParse_LongDocumentCoverage(t *testing.T) {
	p := newParser(t)

	var b strings.Builder
	b.WriteString("Preamble line.\n\n")
	b.WriteString("General Accountability\n")
	b.WriteString(strings.Repeat("Accountable for branch outcomes. ", 40))
	b.WriteString("\nOrganization Structure\nReports to the Director General.\n")
	b.WriteString("Specific Accountabilities\n- item one\n- item two\n")
	b.WriteString("Knowledge and Skills\nAnalysis, planning.\n")
	text := b.String()

	sections, _, _ := p.Parse(text, core.LanguageUnknown)
	require.Len(t, sections, 5)
	require.NoError(t, core.ValidateSections(sections, len(text)))
	assert.Equal(t, 0, sections[0].Start)
	assert.Equal(t, len(text), sections[len(sections)-1].End)
}
