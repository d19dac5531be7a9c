package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/jobdex/core"
)

func sectionsOf(types ...core.SectionType) []core.Section {
	sections := make([]core.Section, len(types))
	for i, t := range types {
		sections[i] = core.Section{Type: t, Ordinal: i}
	}
	return sections
}

func metadataOf(fields ...core.MetadataField) []core.MetadataValue {
	values := make([]core.MetadataValue, len(fields))
	for i, f := range fields {
		values[i] = core.MetadataValue{Field: f, Value: "x", Confidence: 0.8}
	}
	return values
}

func TestQualityScore_Range(t *testing.T) {
	cfg := DefaultQualityConfig()

	assert.Zero(t, QualityScore(cfg, 0, nil, nil))

	full := QualityScore(cfg, 5000,
		sectionsOf(core.CanonicalSectionTypes...),
		metadataOf(core.TrackedMetadataFields...))
	assert.InDelta(t, 100, full, 0.001)
}

func TestQualityScore_MonotoneInSections(t *testing.T) {
	cfg := DefaultQualityConfig()
	var prev float64
	for i := 1; i <= len(core.CanonicalSectionTypes); i++ {
		score := QualityScore(cfg, 5000, sectionsOf(core.CanonicalSectionTypes[:i]...), nil)
		assert.Greater(t, score, prev, "adding a section type must raise the score")
		prev = score
	}
}

func TestQualityScore_MonotoneInMetadata(t *testing.T) {
	cfg := DefaultQualityConfig()
	var prev float64
	for i := 1; i <= len(core.TrackedMetadataFields); i++ {
		score := QualityScore(cfg, 5000, nil, metadataOf(core.TrackedMetadataFields[:i]...))
		assert.Greater(t, score, prev, "extracting a field must raise the score")
		prev = score
	}
}

func TestQualityScore_UnclassifiedSectionsDontCount(t *testing.T) {
	cfg := DefaultQualityConfig()
	withUnclassified := QualityScore(cfg, 5000, sectionsOf(core.SectionUnclassified), nil)
	without := QualityScore(cfg, 5000, nil, nil)
	assert.Equal(t, without, withUnclassified)
}

func TestQualityScore_DuplicateSectionTypeCountsOnce(t *testing.T) {
	cfg := DefaultQualityConfig()
	once := QualityScore(cfg, 5000, sectionsOf(core.SectionSpecificAccountabilities), nil)
	twice := QualityScore(cfg, 5000,
		sectionsOf(core.SectionSpecificAccountabilities, core.SectionSpecificAccountabilities), nil)
	assert.Equal(t, once, twice)
}

func TestQualityScore_LengthRamp(t *testing.T) {
	cfg := DefaultQualityConfig()
	short := QualityScore(cfg, cfg.MinLength/2, nil, nil)
	exact := QualityScore(cfg, cfg.MinLength, nil, nil)
	assert.Less(t, short, exact)

	huge := QualityScore(cfg, cfg.MaxLength*10, nil, nil)
	assert.Less(t, huge, exact, "extreme length tapers off")
	assert.GreaterOrEqual(t, huge, exact/2, "taper is floored at half credit")
}
