package synth

import (
	"math"

	"github.com/go-ports/lexmemory/internal/models"
)

const (
	baseConfidence      = 0.6
	perMatchBoost       = 0.05
	maxMatchBoost       = 0.3
	avgScoreWeight      = 0.2
	verifiedSourceBonus = 0.1 // unconditional: no source verification is performed
)

// Confidence estimates answer quality from the ranked matches. It is 0 for
// an empty match set and in [0.6, 1] otherwise. The query keyword count is
// accepted for interface stability and does not affect the estimate.
func Confidence(matches []models.ScoredMatch, _ int) float64 {
	if len(matches) == 0 {
		return 0
	}

	conf := baseConfidence
	conf += math.Min(float64(len(matches))*perMatchBoost, maxMatchBoost)

	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	conf += sum / float64(len(matches)) * avgScoreWeight
	conf += verifiedSourceBonus

	return math.Min(conf, 1.0)
}
