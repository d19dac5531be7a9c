package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Field rules work on section text. Each rule returns the raw matched
// value, a parsed numeric value where applicable, and a confidence score.
// A zero confidence means "not found".

var (
	reportsToRe = regexp.MustCompile(`(?im)^.*?\b(?:reports?\s+(?:directly\s+)?to|rel[eè]ve\s+(?:directement\s+)?d[eu])\s*:?\s+(.+?)\s*$`)

	departmentRe = regexp.MustCompile(`(?im)^\s*(?:department|branch|directorate|minist[eè]re|direction)\s*:?\s+(.+?)\s*$`)

	fteRe = regexp.MustCompile(`(?i)\b(?:staff|ftes?|full[- ]time equivalents?|employees|effectifs?)\b\s*:?\s*([0-9][0-9,]*)`)

	// currencyToken grabs a rough candidate near a budget keyword; the
	// candidate is then strictly validated so OCR-garbled figures are
	// rejected instead of extracting a wrong value.
	currencyToken = regexp.MustCompile(`\$\s*[^\s]+(?:\s?(?:million|thousand|[MK]\b))?`)

	strictAmount = regexp.MustCompile(`^\$\s*(\d{1,3}(?:,\d{3})*|\d+)(?:\.(\d+))?\s?(million|thousand|[MK])?$`)
)

// matchReportsTo extracts the position a job reports to.
func matchReportsTo(text string) (value string, confidence float64) {
	m := reportsToRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0
	}
	value = trimValue(m[1])
	if value == "" {
		return "", 0
	}
	return value, 0.85
}

// matchDepartment extracts the owning department or branch.
func matchDepartment(text string) (value string, confidence float64) {
	m := departmentRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0
	}
	value = trimValue(m[1])
	if value == "" {
		return "", 0
	}
	return value, 0.8
}

// matchFTE extracts a staff headcount.
func matchFTE(text string) (value string, number float64, confidence float64) {
	m := fteRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, 0
	}
	raw := strings.ReplaceAll(m[1], ",", "")
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || n <= 0 {
		return "", 0, 0
	}
	return m[1], n, 0.95
}

// matchBudget finds a currency amount within window bytes after any of the
// given keywords. Keyword occurrences immediately preceded by one of
// excludePrefixes are skipped, so "salary" does not fire inside
// "non-salary". Candidates that fail strict numeric validation (OCR
// artifacts replacing digits, truncated groups) are rejected entirely.
func matchBudget(text string, keywords, excludePrefixes []string, window int) (value string, number float64, confidence float64) {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		from := 0
		for {
			i := strings.Index(lower[from:], kw)
			if i < 0 {
				break
			}
			if excluded(lower, from+i, excludePrefixes) {
				from = from + i + len(kw)
				continue
			}
			start := from + i + len(kw)
			end := start + window
			if end > len(text) {
				end = len(text)
			}

			if tok := currencyToken.FindString(text[start:end]); tok != "" {
				if n, ok := parseAmount(tok); ok {
					return strings.TrimSpace(tok), n, 0.9
				}
				// Garbled candidate near the keyword: reject rather than
				// guess, and keep scanning for a clean one.
			}
			from = start
		}
	}
	return "", 0, 0
}

// parseAmount strictly parses a currency token like "$1,250,000",
// "$1.2 million" or "$450K". Any unexpected character fails the parse.
func parseAmount(token string) (float64, bool) {
	m := strictAmount.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, false
	}

	digits := strings.ReplaceAll(m[1], ",", "")
	raw := digits
	if m[2] != "" {
		raw += "." + m[2]
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[3]) {
	case "million", "m":
		n *= 1e6
	case "thousand", "k":
		n *= 1e3
	}

	if n <= 0 {
		return 0, false
	}
	return n, true
}

// excluded reports whether the keyword occurrence at offset is directly
// preceded by one of the given prefixes.
func excluded(lower string, offset int, prefixes []string) bool {
	for _, p := range prefixes {
		if offset >= len(p) && strings.HasSuffix(lower[:offset], p) {
			return true
		}
	}
	return false
}

func trimValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ".,;")
	return strings.TrimSpace(s)
}
