// Package parse splits raw job-description text into named, ordered sections.
//
// The parser scans for section headings against a bilingual lexicon of
// canonical heading variants using case-insensitive, diacritic- and
// punctuation-tolerant matching anchored to line starts. Text that matches
// no heading is collected into Unclassified sections, so no input is ever
// silently discarded and total parse failure is impossible by construction.
//
// Heading lexicons and confidence values are explicit configuration passed
// at construction time rather than package-level state.
package parse
