package parse

import (
	"strings"

	"github.com/poiesic/jobdex/core"
)

// HeadingVariant is one canonical heading spelling in one language.
type HeadingVariant struct {
	Text     string
	Language core.Language
}

// Lexicon maps each canonical section type to its known heading variants.
// Matching is case-insensitive and punctuation-tolerant, so variants are
// listed in display form.
type Lexicon map[core.SectionType][]HeadingVariant

// DefaultLexicon returns the built-in bilingual heading lexicon. The spec
// for source documents is loose; variants here cover the spellings seen in
// the corpus, and callers can extend or replace the lexicon via Config.
func DefaultLexicon() Lexicon {
	return Lexicon{
		core.SectionGeneralAccountability: {
			{Text: "General Accountability", Language: core.LanguageEnglish},
			{Text: "General Accountabilities", Language: core.LanguageEnglish},
			{Text: "Responsabilité générale", Language: core.LanguageFrench},
			{Text: "Responsabilités générales", Language: core.LanguageFrench},
		},
		core.SectionOrganizationStructure: {
			{Text: "Organization Structure", Language: core.LanguageEnglish},
			{Text: "Organizational Structure", Language: core.LanguageEnglish},
			{Text: "Organisation Structure", Language: core.LanguageEnglish},
			{Text: "Structure organisationnelle", Language: core.LanguageFrench},
			{Text: "Structure de l'organisation", Language: core.LanguageFrench},
		},
		core.SectionNatureAndScope: {
			{Text: "Nature and Scope", Language: core.LanguageEnglish},
			{Text: "Nature & Scope", Language: core.LanguageEnglish},
			{Text: "Nature et portée", Language: core.LanguageFrench},
			{Text: "Nature et étendue", Language: core.LanguageFrench},
		},
		core.SectionSpecificAccountabilities: {
			{Text: "Specific Accountabilities", Language: core.LanguageEnglish},
			{Text: "Specific Accountability", Language: core.LanguageEnglish},
			{Text: "Responsabilités spécifiques", Language: core.LanguageFrench},
			{Text: "Responsabilités particulières", Language: core.LanguageFrench},
		},
		core.SectionDimensions: {
			// Identical in both languages; contributes nothing to the
			// language vote.
			{Text: "Dimensions", Language: core.LanguageUnknown},
		},
		core.SectionKnowledgeAndSkills: {
			{Text: "Knowledge and Skills", Language: core.LanguageEnglish},
			{Text: "Knowledge, Skills and Abilities", Language: core.LanguageEnglish},
			{Text: "Connaissances et compétences", Language: core.LanguageFrench},
		},
	}
}

// Diacritics are folded before comparison so OCR output that dropped
// accents still matches the French variants.
var diacriticFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c",
	"œ", "oe",
)

// normalizeHeading canonicalizes a line for heading comparison: lowercase,
// diacritics folded, punctuation stripped, whitespace collapsed.
func normalizeHeading(s string) string {
	s = strings.ToLower(s)
	s = diacriticFolder.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		case r == '\'':
			// "de l'organisation": treat the apostrophe as a separator
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// stripLeadingNumbering removes list numbering such as "1.", "2)", "III."
// from the front of a normalized heading candidate.
func stripLeadingNumbering(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	first := fields[0]
	if len(first) <= 3 && (isDigits(first) || isRomanNumeral(first)) {
		return strings.Join(fields[1:], " ")
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isRomanNumeral(s string) bool {
	for _, r := range s {
		switch r {
		case 'i', 'v', 'x':
		default:
			return false
		}
	}
	return len(s) > 0
}
