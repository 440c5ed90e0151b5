package search

import (
	"sort"

	"github.com/go-ports/lexmemory/internal/models"
)

// DefaultTopK is used when the caller passes a non-positive limit.
const DefaultTopK = 20

// Source exposes the by-id partitions of an index in insertion order.
type Source interface {
	Entries(t models.RecordType) []models.MemoryEntry
}

// Retrieve scores every entry of the selected partitions against keywords
// and returns the topK entries with a positive score, best first. Ties keep
// scan order: cases before crises, each in insertion order. An empty filter
// scans both partitions.
//
// The keyword index only covers name and notes, so it cannot narrow the
// scan: a record can match on any line of its content.
func Retrieve(src Source, keywords []string, filter models.RecordType, topK int) []models.ScoredMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}
	matches := make([]models.ScoredMatch, 0)
	if src == nil || len(keywords) == 0 {
		return matches
	}

	for _, t := range models.RecordTypes {
		if filter != "" && filter != t {
			continue
		}
		for _, e := range src.Entries(t) {
			score := Score(e.Content, keywords)
			if score <= 0 {
				continue
			}
			matches = append(matches, models.ScoredMatch{
				ID:       e.Key.ID,
				Type:     e.Key.Type,
				Score:    score,
				Content:  e.Content,
				Metadata: e.Metadata,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		return matches[:topK]
	}
	return matches
}
