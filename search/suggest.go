package search

import (
	"sort"
	"strings"
)

const defaultSuggestions = 10

// Suggest returns indexed terms starting with prefix, most frequent
// first. An empty prefix, or an index that has never been rebuilt,
// yields no suggestions.
func (s *Searcher) Suggest(prefix string, limit int) []string {
	snap := s.index.Snapshot()
	if snap == nil {
		return nil
	}

	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}
	if limit <= 0 {
		limit = defaultSuggestions
	}

	// terms is sorted, so all matches form one contiguous run.
	start := sort.SearchStrings(snap.terms, prefix)
	var matches []string
	for i := start; i < len(snap.terms) && strings.HasPrefix(snap.terms[i], prefix); i++ {
		matches = append(matches, snap.terms[i])
	}

	sort.SliceStable(matches, func(i, j int) bool {
		fi, fj := snap.termFreqs[matches[i]], snap.termFreqs[matches[j]]
		if fi != fj {
			return fi > fj
		}
		return matches[i] < matches[j]
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
