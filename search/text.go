package search

import "strings"

// Stop words filtered out of queries and indexed text. Both working
// languages of the document corpus are covered.
var stopWords = map[string]bool{
	// English
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "will": true,
	// French
	"le": true, "la": true, "les": true, "un": true, "une": true, "des": true,
	"de": true, "du": true, "et": true, "en": true, "est": true, "sont": true,
	"pour": true, "dans": true, "sur": true, "avec": true, "par": true,
	"au": true, "aux": true, "ce": true, "qui": true, "que": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}«»"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// termFrequencies counts filtered token occurrences.
func termFrequencies(text string) map[string]int {
	freqs := make(map[string]int)
	for _, token := range tokenizeAndFilter(text) {
		freqs[token]++
	}
	return freqs
}
