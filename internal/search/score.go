package search

import "strings"

// Score returns the fraction of keywords that occur as substrings of the
// lowercased content. Repeated occurrences count once. An empty keyword set
// scores 0.
func Score(content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	var matches int
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return float64(matches) / float64(len(keywords))
}
