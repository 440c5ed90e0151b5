package models

import (
	"encoding/json"
	"time"
)

// ScoredMatch is a single retrieval hit.
type ScoredMatch struct {
	ID       string            `json:"id"`
	Type     RecordType        `json:"type"`
	Score    float64           `json:"score"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

// Insights are the statistics derived from a ranked match set. Each part is
// only meaningful when its Has flag is set.
type Insights struct {
	HasDominantCategory bool
	DominantCategory    string

	HasSuccessRate bool
	SuccessRate    float64 // percentage, 0-100

	HasTemporalSpan bool
	EarliestYear    string
	LatestYear      string
}

// MarshalJSON emits only the derived parts, so a 0% success rate is kept
// while an underivable one is omitted.
func (i Insights) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)
	if i.HasDominantCategory {
		out["dominant_category"] = i.DominantCategory
	}
	if i.HasSuccessRate {
		out["success_rate"] = i.SuccessRate
	}
	if i.HasTemporalSpan {
		out["temporal_span"] = i.EarliestYear + "-" + i.LatestYear
	}
	return json.Marshal(out)
}

// Empty reports whether no insight could be derived.
func (i Insights) Empty() bool {
	return !i.HasDominantCategory && !i.HasSuccessRate && !i.HasTemporalSpan
}

// Analysis is the text-presence scan over a synthesized response.
type Analysis struct {
	LegalAreasMentioned []string `json:"legal_areas_mentioned"`
	TemporalPatterns    []string `json:"temporal_patterns"`
	EvolutionMechanisms []string `json:"evolution_mechanisms"`
	SuccessIndicators   []string `json:"success_indicators"`
	CrisisIndicators    []string `json:"crisis_indicators"`
}

// QueryResult is the success variant of a query.
type QueryResult struct {
	ID              string        `json:"id"`
	Query           string        `json:"query"`
	Response        string        `json:"response"`
	Analysis        Analysis      `json:"analysis"`
	Insights        Insights      `json:"insights"`
	Matches         []ScoredMatch `json:"matches"`
	RelevantCaseIDs []string      `json:"relevant_cases"`
	Confidence      float64       `json:"confidence"`
	Sources         []string      `json:"sources"`
	Timestamp       time.Time     `json:"timestamp"`
}
