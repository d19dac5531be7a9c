package parse

import (
	"fmt"
	"strings"

	"github.com/poiesic/jobdex/core"
)

// Config tunes the section parser. Thresholds were calibrated against a
// labeled fixture corpus; treat them as conservative defaults.
type Config struct {
	// Lexicon is the bilingual heading lexicon. Nil means DefaultLexicon.
	Lexicon Lexicon

	// ExactConfidence is assigned to sections whose heading matched a
	// lexicon variant verbatim after normalization.
	ExactConfidence float64

	// TolerantConfidence is assigned when the heading only matched after
	// stripping list numbering.
	TolerantConfidence float64

	// UnclassifiedConfidence is assigned to fallback sections holding
	// text that matched no heading.
	UnclassifiedConfidence float64
}

// DefaultConfig returns the parser defaults.
func DefaultConfig() Config {
	return Config{
		Lexicon:                DefaultLexicon(),
		ExactConfidence:        0.95,
		TolerantConfidence:     0.8,
		UnclassifiedConfidence: 0.3,
	}
}

// Parser splits raw document text into named, ordered sections.
//
// By construction the parser cannot fail: every byte of input is assigned
// to exactly one section, with unmatched leading or trailing text collected
// into Unclassified sections. It only ever returns results of varying
// confidence.
type Parser struct {
	cfg      Config
	headings map[string]headingEntry
}

type headingEntry struct {
	sectionType core.SectionType
	language    core.Language
}

// NewParser creates a parser from the given configuration.
func NewParser(cfg Config) (*Parser, error) {
	if cfg.Lexicon == nil {
		cfg.Lexicon = DefaultLexicon()
	}
	if cfg.ExactConfidence <= 0 {
		cfg.ExactConfidence = 0.95
	}
	if cfg.TolerantConfidence <= 0 {
		cfg.TolerantConfidence = 0.8
	}
	if cfg.UnclassifiedConfidence <= 0 {
		cfg.UnclassifiedConfidence = 0.3
	}

	headings := make(map[string]headingEntry)
	for sectionType, variants := range cfg.Lexicon {
		for _, v := range variants {
			key := normalizeHeading(v.Text)
			if key == "" {
				return nil, fmt.Errorf("%w: empty heading variant for %s", ErrInvalidLexicon, sectionType)
			}
			if existing, ok := headings[key]; ok && existing.sectionType != sectionType {
				return nil, fmt.Errorf("%w: %q maps to both %s and %s",
					ErrInvalidLexicon, v.Text, existing.sectionType, sectionType)
			}
			headings[key] = headingEntry{sectionType: sectionType, language: v.Language}
		}
	}

	return &Parser{cfg: cfg, headings: headings}, nil
}

// headingMatch is a detected heading line.
type headingMatch struct {
	lineStart  int // byte offset of the heading line
	lineEnd    int // byte offset just past the line's trailing newline
	entry      headingEntry
	confidence float64
}

// Parse scans text for section headings and returns ordered sections
// covering the whole input, the document language (the hint when known,
// otherwise inferred by heading-language majority vote with ties going to
// English), and any structural warnings.
func (p *Parser) Parse(text string, hint core.Language) ([]core.Section, core.Language, []core.Warning) {
	if text == "" {
		return nil, resolveLanguage(hint, nil), nil
	}

	matches := p.scanHeadings(text)
	matches, warnings := mergeAdjacent(text, matches)

	language := resolveLanguage(hint, matches)

	sections := make([]core.Section, 0, len(matches)+1)
	ordinal := 0

	if len(matches) == 0 || matches[0].lineStart > 0 {
		end := len(text)
		if len(matches) > 0 {
			end = matches[0].lineStart
		}
		sections = append(sections, core.Section{
			Type:       core.SectionUnclassified,
			Ordinal:    ordinal,
			Start:      0,
			End:        end,
			Confidence: p.cfg.UnclassifiedConfidence,
		})
		ordinal++
	}

	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].lineStart
		}
		sections = append(sections, core.Section{
			Type:       m.entry.sectionType,
			Ordinal:    ordinal,
			Start:      m.lineStart,
			End:        end,
			Confidence: m.confidence,
		})
		ordinal++
	}

	return sections, language, warnings
}

// scanHeadings finds lexicon headings anchored to line starts.
func (p *Parser) scanHeadings(text string) []headingMatch {
	var matches []headingMatch

	lineStart := 0
	for lineStart < len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		nextStart := len(text)
		if lineEnd >= 0 {
			nextStart = lineStart + lineEnd + 1
		}
		line := strings.TrimRight(text[lineStart : nextStart-boundaryAdjust(lineEnd)], "\r")

		if m, ok := p.matchHeading(line); ok {
			m.lineStart = lineStart
			m.lineEnd = nextStart
			matches = append(matches, m)
		}

		lineStart = nextStart
	}

	return matches
}

func boundaryAdjust(lineEnd int) int {
	if lineEnd >= 0 {
		return 1
	}
	return 0
}

func (p *Parser) matchHeading(line string) (headingMatch, bool) {
	normalized := normalizeHeading(line)
	if normalized == "" {
		return headingMatch{}, false
	}

	if entry, ok := p.headings[normalized]; ok {
		return headingMatch{entry: entry, confidence: p.cfg.ExactConfidence}, true
	}

	stripped := stripLeadingNumbering(normalized)
	if stripped != normalized {
		if entry, ok := p.headings[stripped]; ok {
			return headingMatch{entry: entry, confidence: p.cfg.TolerantConfidence}, true
		}
	}

	return headingMatch{}, false
}

// mergeAdjacent applies the ambiguity policy: when two heading candidates
// are adjacent with no body text between them, the first is a false
// positive and its line is absorbed into the following section.
func mergeAdjacent(text string, matches []headingMatch) ([]headingMatch, []core.Warning) {
	if len(matches) < 2 {
		return matches, nil
	}

	var warnings []core.Warning
	kept := matches[:0]
	carryStart := -1

	for i := 0; i < len(matches); i++ {
		m := matches[i]
		if carryStart >= 0 {
			m.lineStart = carryStart
			carryStart = -1
		}

		if i+1 < len(matches) && strings.TrimSpace(text[m.lineEnd:matches[i+1].lineStart]) == "" {
			// No body before the next heading: treat this one as a false
			// positive and fold its line into the next section's span.
			warnings = append(warnings, core.Warning{
				Kind: core.WarnStructural,
				Message: fmt.Sprintf("heading %q at offset %d has no body; merged into following section",
					m.entry.sectionType, m.lineStart),
			})
			carryStart = m.lineStart
			continue
		}

		kept = append(kept, m)
	}

	return kept, warnings
}

// resolveLanguage picks the document language: the hint when known,
// otherwise a majority vote over matched heading languages. Ties,
// including the no-votes case, default to English.
func resolveLanguage(hint core.Language, matches []headingMatch) core.Language {
	if hint != core.LanguageUnknown {
		return hint
	}

	votes := make(map[core.Language]int)
	for _, m := range matches {
		if m.entry.language != core.LanguageUnknown {
			votes[m.entry.language]++
		}
	}

	if votes[core.LanguageFrench] > votes[core.LanguageEnglish] {
		return core.LanguageFrench
	}
	return core.LanguageEnglish
}
