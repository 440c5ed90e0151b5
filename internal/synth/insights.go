// Package synth turns a ranked match set into the textual response, its
// derived insights, the presence analysis and a confidence estimate.
package synth

import (
	"math"
	"unicode/utf8"

	"github.com/go-ports/lexmemory/internal/models"
)

// DeriveInsights computes the dominant legal area, the success rate and the
// temporal span of matches. Each part is derived only when at least one
// match carries the underlying metadata field.
func DeriveInsights(matches []models.ScoredMatch) models.Insights {
	var ins models.Insights

	if cat, ok := dominantCategory(matches); ok {
		ins.HasDominantCategory = true
		ins.DominantCategory = cat
	}
	if rate, ok := successRate(matches); ok {
		ins.HasSuccessRate = true
		ins.SuccessRate = rate
	}
	if earliest, latest, ok := temporalSpan(matches); ok {
		ins.HasTemporalSpan = true
		ins.EarliestYear = earliest
		ins.LatestYear = latest
	}
	return ins
}

// dominantCategory returns the most frequent legal area; ties go to the one
// encountered first.
func dominantCategory(matches []models.ScoredMatch) (string, bool) {
	counts := make(map[string]int)
	var order []string
	for _, m := range matches {
		area := m.Metadata[models.MetaLegalArea]
		if area == "" {
			continue
		}
		if counts[area] == 0 {
			order = append(order, area)
		}
		counts[area]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := order[0]
	for _, area := range order[1:] {
		if counts[area] > counts[best] {
			best = area
		}
	}
	return best, true
}

// successRate is the percentage, rounded to one decimal, of matches with an
// outcome whose outcome is the success sentinel.
func successRate(matches []models.ScoredMatch) (float64, bool) {
	var total, successes int
	for _, m := range matches {
		outcome := m.Metadata[models.MetaSuccess]
		if outcome == "" {
			continue
		}
		total++
		if outcome == models.SuccessSentinel {
			successes++
		}
	}
	if total == 0 {
		return 0, false
	}
	return math.Round(float64(successes)/float64(total)*1000) / 10, true
}

func temporalSpan(matches []models.ScoredMatch) (earliest, latest string, ok bool) {
	for _, m := range matches {
		date := m.Metadata[models.MetaStartDate]
		if utf8.RuneCountInString(date) < 4 {
			continue
		}
		year := string([]rune(date)[:4])
		if !ok || year < earliest {
			earliest = year
		}
		if !ok || year > latest {
			latest = year
		}
		ok = true
	}
	return earliest, latest, ok
}
