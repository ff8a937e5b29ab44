package retrieval

import (
	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/models"
)

// chunkBonusStep and chunkBonusCap reward answers backed by more chunks.
const (
	chunkBonusStep = 0.1
	chunkBonusCap  = 0.3
)

// Scorer derives a [0,1] confidence from retrieval results. With no weights
// configured it takes the plain arithmetic mean of similarities; with
// weights, a rank-weighted average (results beyond the last weight
// contribute nothing). Boost compensates for raw similarity scales that
// read low to humans; it is a tunable, not a derived quantity.
type Scorer struct {
	weights []float64
	boost   float64
}

func NewScorer(cfg *config.RAGConfig) *Scorer {
	boost := cfg.ConfidenceBoost
	if boost <= 0 {
		boost = 1
	}
	return &Scorer{weights: cfg.ConfidenceWeights, boost: boost}
}

// Score returns exactly 0 for empty results, otherwise a clamped [0,1]
// confidence.
func (s *Scorer) Score(results []models.RetrievalResult) float64 {
	if len(results) == 0 {
		return 0
	}

	var confidence float64
	if len(s.weights) == 0 {
		sum := 0.0
		for _, r := range results {
			sum += r.Similarity
		}
		confidence = sum / float64(len(results))
	} else {
		weighted, totalWeight := 0.0, 0.0
		for i, r := range results {
			if i >= len(s.weights) {
				break
			}
			weighted += r.Similarity * s.weights[i]
			totalWeight += s.weights[i]
		}
		if totalWeight == 0 {
			return 0
		}
		confidence = weighted / totalWeight
	}

	confidence *= s.boost

	bonus := float64(len(results)) * chunkBonusStep
	if bonus > chunkBonusCap {
		bonus = chunkBonusCap
	}
	confidence += bonus

	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
