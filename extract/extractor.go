package extract

import (
	"log/slog"

	"github.com/poiesic/jobdex/core"
)

// Config tunes the metadata extractor.
type Config struct {
	// ConfidenceFloor is the minimum confidence for a field to be
	// reported. Fields below the floor are omitted entirely rather than
	// returned with low confidence: every returned field is "probably
	// correct".
	ConfidenceFloor float64

	// BudgetWindow is how many bytes after a budget keyword to scan for a
	// currency amount.
	BudgetWindow int
}

// DefaultConfig returns conservative extractor defaults.
func DefaultConfig() Config {
	return Config{
		ConfidenceFloor: 0.5,
		BudgetWindow:    80,
	}
}

// Extractor pulls structured fields out of parsed section text.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExtractor creates an extractor from the given configuration.
func NewExtractor(cfg Config, opts ...Option) *Extractor {
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = DefaultConfig().ConfidenceFloor
	}
	if cfg.BudgetWindow <= 0 {
		cfg.BudgetWindow = DefaultConfig().BudgetWindow
	}
	e := &Extractor{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract applies field rules to the parsed sections of a document.
// Reporting relationships are looked for in the Organization Structure
// section, figures in Dimensions; both fall back to the remaining
// sections so documents with merged or missing headings still yield
// fields. Absent fields are simply not returned, never guessed.
func (e *Extractor) Extract(docText string, sections []core.Section) []core.MetadataValue {
	var values []core.MetadataValue

	add := func(field core.MetadataField, value string, number float64, ordinal int, confidence float64) {
		if value == "" || confidence < e.cfg.ConfidenceFloor {
			if confidence > 0 {
				e.logger.Debug("metadata field below confidence floor",
					"field", field, "confidence", confidence)
			}
			return
		}
		values = append(values, core.MetadataValue{
			Field:          field,
			Value:          value,
			Number:         number,
			SectionOrdinal: ordinal,
			Confidence:     confidence,
		})
	}

	// Prefer the sections each field conventionally lives in; scanning
	// them first means the fallback pass cannot shadow a better match.
	order := orderedSections(sections, core.SectionOrganizationStructure, core.SectionDimensions)

	found := make(map[core.MetadataField]bool)
	for _, s := range order {
		text := s.Span(docText)
		if text == "" {
			continue
		}
		// Field confidence is scaled by the source section's own
		// confidence so values from shaky parses rank lower.
		scale := s.Confidence
		if scale <= 0 || scale > 1 {
			scale = 1
		}

		if !found[core.FieldReportsTo] {
			if v, conf := matchReportsTo(text); conf > 0 {
				add(core.FieldReportsTo, v, 0, s.Ordinal, conf*scale)
				found[core.FieldReportsTo] = true
			}
		}
		if !found[core.FieldDepartment] {
			if v, conf := matchDepartment(text); conf > 0 {
				add(core.FieldDepartment, v, 0, s.Ordinal, conf*scale)
				found[core.FieldDepartment] = true
			}
		}
		if !found[core.FieldFTECount] {
			if v, n, conf := matchFTE(text); conf > 0 {
				add(core.FieldFTECount, v, n, s.Ordinal, conf*scale)
				found[core.FieldFTECount] = true
			}
		}
		if !found[core.FieldSalaryBudget] {
			if v, n, conf := matchBudget(text,
				[]string{"salary budget", "salary"},
				[]string{"non-salary ", "non-", "non "},
				e.cfg.BudgetWindow); conf > 0 {
				add(core.FieldSalaryBudget, v, n, s.Ordinal, conf*scale)
				found[core.FieldSalaryBudget] = true
			}
		}
		if !found[core.FieldNonSalaryBudget] {
			if v, n, conf := matchBudget(text,
				[]string{"non-salary budget", "non-salary", "operating budget"},
				nil,
				e.cfg.BudgetWindow); conf > 0 {
				add(core.FieldNonSalaryBudget, v, n, s.Ordinal, conf*scale)
				found[core.FieldNonSalaryBudget] = true
			}
		}
	}

	return values
}

// orderedSections returns sections with the preferred types first (in the
// given priority order), then everything else in document order.
func orderedSections(sections []core.Section, preferred ...core.SectionType) []core.Section {
	ordered := make([]core.Section, 0, len(sections))
	taken := make(map[int]bool)
	for _, p := range preferred {
		for _, s := range sections {
			if s.Type == p && !taken[s.Ordinal] {
				ordered = append(ordered, s)
				taken[s.Ordinal] = true
			}
		}
	}
	for _, s := range sections {
		if !taken[s.Ordinal] {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
