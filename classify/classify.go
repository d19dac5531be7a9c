package classify

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/poiesic/jobdex/core"
)

// PatternKind tags a filename pattern variant.
type PatternKind int

const (
	// PatternUnrecognized is the fallback when no pattern matched.
	PatternUnrecognized PatternKind = iota
	// PatternPrimary is the current naming convention.
	PatternPrimary
	// PatternLegacy covers older conventions still present in the corpus.
	PatternLegacy
)

// String returns the kind name.
func (k PatternKind) String() string {
	switch k {
	case PatternPrimary:
		return "primary"
	case PatternLegacy:
		return "legacy"
	default:
		return "unrecognized"
	}
}

// Pattern is one named capture template. Group names bind captures to
// result fields: classification, number, title, lang.
type Pattern struct {
	Name       string
	Kind       PatternKind
	Confidence float64
	re         *regexp.Regexp
}

// NewPattern compiles a capture template. The expression is matched against
// the file name with its extension already stripped.
func NewPattern(name string, kind PatternKind, confidence float64, expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	return Pattern{Name: name, Kind: kind, Confidence: confidence, re: re}, nil
}

// Result is the outcome of classifying a filename. Classification never
// fails: an unmatched name yields a low-confidence result with empty
// structured fields.
type Result struct {
	Pattern        string
	Kind           PatternKind
	Classification string
	JobNumber      string
	Title          string
	Language       core.Language
	Confidence     float64
}

// Classifier applies an ordered list of patterns to filenames.
// First match wins; patterns are ordered most specific first.
type Classifier struct {
	patterns []Pattern
}

// New creates a classifier with the given patterns, tried in order.
// With no arguments the default pattern set is used.
func New(patterns ...Pattern) *Classifier {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Classifier{patterns: patterns}
}

// DefaultPatterns returns the built-in conventions, most specific first.
//
// Primary: "EX-01 Dir, Business Analysis 103249 - JD.txt"
// Legacy number-first: "103249 EX-01 Dir Business Analysis.doc"
// Legacy underscore: "JD_EX-01_103249_Dir_Business_Analysis.txt"
func DefaultPatterns() []Pattern {
	primary, err := NewPattern("primary", PatternPrimary, 0.95,
		`^(?P<classification>[A-Z]{2,3}-\d{2})\s+(?P<title>.+?)\s+(?P<number>\d{4,6})\s*-\s*(?P<lang>JD|DE)$`)
	if err != nil {
		panic(err)
	}
	numberFirst, err := NewPattern("legacy-number-first", PatternLegacy, 0.8,
		`^(?P<number>\d{4,6})\s+(?P<classification>[A-Z]{2,3}-\d{2})\s+(?P<title>.+)$`)
	if err != nil {
		panic(err)
	}
	underscore, err := NewPattern("legacy-underscore", PatternLegacy, 0.75,
		`^(?P<lang>JD|DE)_(?P<classification>[A-Z]{2,3}-\d{2})_(?P<number>\d{4,6})(?:_(?P<title>.+))?$`)
	if err != nil {
		panic(err)
	}
	return []Pattern{primary, numberFirst, underscore}
}

// Classify identifies document metadata from a filename. It is a pure
// function of the string and never fails; downstream stages must tolerate
// a fully unclassified result.
func (c *Classifier) Classify(filename string) Result {
	name := strings.TrimSpace(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))

	for _, p := range c.patterns {
		m := p.re.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		result := Result{
			Pattern:    p.Name,
			Kind:       p.Kind,
			Confidence: p.Confidence,
		}
		for i, groupName := range p.re.SubexpNames() {
			if i == 0 || i >= len(m) {
				continue
			}
			value := strings.TrimSpace(m[i])
			switch groupName {
			case "classification":
				result.Classification = value
			case "number":
				result.JobNumber = value
			case "title":
				result.Title = cleanTitle(value)
			case "lang":
				result.Language = languageFromTag(value)
			}
		}
		return result
	}

	return Result{Pattern: "unrecognized", Kind: PatternUnrecognized, Confidence: 0.1}
}

// languageFromTag maps the filename language tag to a Language.
// "JD" marks English job descriptions, "DE" French ("description d'emploi").
func languageFromTag(tag string) core.Language {
	switch strings.ToUpper(tag) {
	case "JD":
		return core.LanguageEnglish
	case "DE":
		return core.LanguageFrench
	default:
		return core.LanguageUnknown
	}
}

func cleanTitle(title string) string {
	title = strings.ReplaceAll(title, "_", " ")
	return strings.Join(strings.Fields(title), " ")
}
