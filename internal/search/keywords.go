// Package search implements keyword extraction, containment scoring and
// full-scan ranked retrieval over indexed legal memories.
package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// minKeywordRunes is the shortest token kept as a keyword; shorter ones are
// mostly articles and prepositions.
const minKeywordRunes = 4

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]bool{
	"de": true, "la": true, "el": true, "en": true, "y": true, "a": true,
	"que": true, "del": true, "las": true, "los": true, "con": true,
	"por": true, "para": true,
}

// ExtractKeywords lowercases text, splits it on non-word characters and
// returns the distinct tokens of at least four runes that are not stop
// words. The result is sorted so it is deterministic for a given input.
func ExtractKeywords(text string) []string {
	if text == "" {
		return make([]string, 0)
	}
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(tok) < minKeywordRunes || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
