package extract

import (
	"testing"

	"github.com/poiesic/jobdex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleSection wraps text in one full-confidence section for rule tests.
func singleSection(text string, sectionType core.SectionType) (string, []core.Section) {
	return text, []core.Section{{
		Type:       sectionType,
		Ordinal:    0,
		Start:      0,
		End:        len(text),
		Confidence: 1.0,
	}}
}

func fieldByName(t *testing.T, values []core.MetadataValue, field core.MetadataField) core.MetadataValue {
	t.Helper()
	for _, v := range values {
		if v.Field == field {
			return v
		}
	}
	t.Fatalf("field %s not extracted", field)
	return core.MetadataValue{}
}

func hasField(values []core.MetadataValue, field core.MetadataField) bool {
	for _, v := range values {
		if v.Field == field {
			return true
		}
	}
	return false
}

func TestExtract_FTECount(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	text, sections := singleSection("Dimensions\nStaff: 12\n", core.SectionDimensions)
	values := e.Extract(text, sections)

	v := fieldByName(t, values, core.FieldFTECount)
	assert.Equal(t, "12", v.Value)
	assert.Equal(t, 12.0, v.Number)
	assert.GreaterOrEqual(t, v.Confidence, 0.9)
	assert.Equal(t, 0, v.SectionOrdinal)
}

func TestExtract_ReportsTo(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	t.Run("english", func(t *testing.T) {
		text, sections := singleSection(
			"Organization Structure\nReports to: Director General, Corporate Services.\n",
			core.SectionOrganizationStructure)
		values := e.Extract(text, sections)
		v := fieldByName(t, values, core.FieldReportsTo)
		assert.Equal(t, "Director General, Corporate Services", v.Value)
	})

	t.Run("french", func(t *testing.T) {
		text, sections := singleSection(
			"Structure organisationnelle\nRelève du directeur général.\n",
			core.SectionOrganizationStructure)
		values := e.Extract(text, sections)
		v := fieldByName(t, values, core.FieldReportsTo)
		assert.Equal(t, "directeur général", v.Value)
	})
}

func TestExtract_Department(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	text, sections := singleSection(
		"Organization Structure\nBranch: Business Analysis and Planning\n",
		core.SectionOrganizationStructure)
	values := e.Extract(text, sections)
	v := fieldByName(t, values, core.FieldDepartment)
	assert.Equal(t, "Business Analysis and Planning", v.Value)
}

func TestExtract_Budgets(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	text, sections := singleSection(
		"Dimensions\nSalary budget: $1,250,000\nNon-salary budget: $450K\n",
		core.SectionDimensions)
	values := e.Extract(text, sections)

	salary := fieldByName(t, values, core.FieldSalaryBudget)
	assert.Equal(t, 1250000.0, salary.Number)

	nonSalary := fieldByName(t, values, core.FieldNonSalaryBudget)
	assert.Equal(t, 450000.0, nonSalary.Number)
}

func TestExtract_BudgetMillions(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	text, sections := singleSection(
		"Dimensions\nSalary budget of $1.2 million across the branch.\n",
		core.SectionDimensions)
	values := e.Extract(text, sections)

	salary := fieldByName(t, values, core.FieldSalaryBudget)
	assert.Equal(t, 1.2e6, salary.Number)
}

func TestExtract_GarbledCurrencyRejected(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	// OCR replaced a digit with the letter O: the value must be absent,
	// not wrong.
	text, sections := singleSection(
		"Dimensions\nSalary budget: $1,2O0,000\n",
		core.SectionDimensions)
	values := e.Extract(text, sections)

	assert.False(t, hasField(values, core.FieldSalaryBudget))
}

func TestExtract_SalaryKeywordNotFooledByNonSalary(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	text, sections := singleSection(
		"Dimensions\nNon-salary budget: $450,000\n",
		core.SectionDimensions)
	values := e.Extract(text, sections)

	assert.False(t, hasField(values, core.FieldSalaryBudget))
	nonSalary := fieldByName(t, values, core.FieldNonSalaryBudget)
	assert.Equal(t, 450000.0, nonSalary.Number)
}

func TestExtract_LowConfidenceSectionOmitted(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	// The only source is an unclassified section with low parse
	// confidence; scaled field confidence falls below the floor.
	text := "somewhere in here Staff: 7 maybe\n"
	sections := []core.Section{{
		Type:       core.SectionUnclassified,
		Ordinal:    0,
		Start:      0,
		End:        len(text),
		Confidence: 0.3,
	}}

	values := e.Extract(text, sections)
	assert.False(t, hasField(values, core.FieldFTECount))
}

func TestExtract_NothingFound(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	text, sections := singleSection(
		"General Accountability\nLeads the function.\n",
		core.SectionGeneralAccountability)
	values := e.Extract(text, sections)
	assert.Empty(t, values)
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,250,000", 1250000, true},
		{"$450K", 450000, true},
		{"$1.2 million", 1.2e6, true},
		{"$3 thousand", 3000, true},
		{"$1,2O0,000", 0, false},
		{"$12,34", 0, false},
		{"$0", 0, false},
		{"1000", 0, false},
	}
	for _, tc := range cases {
		n, ok := parseAmount(tc.in)
		require.Equal(t, tc.ok, ok, "input %q", tc.in)
		if ok {
			assert.Equal(t, tc.want, n, "input %q", tc.in)
		}
	}
}
