// Package extract pulls structured metadata fields out of parsed sections.
//
// Each tracked field (reports_to, department, salary_budget,
// non_salary_budget, fte_count) has its own rule combining regular
// expressions with keyword-proximity heuristics. Every extracted value
// carries a confidence score; values below the configured floor are
// omitted rather than reported. Currency figures with OCR artifacts are
// rejected outright: a garbled number must never silently extract a
// wrong value.
package extract
