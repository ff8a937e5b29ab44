package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swaraj404/DeepDoc/internal/config"
	"github.com/swaraj404/DeepDoc/internal/models"
)

func resultsWith(similarities ...float64) []models.RetrievalResult {
	out := make([]models.RetrievalResult, len(similarities))
	for i, s := range similarities {
		out[i] = models.RetrievalResult{Similarity: s, Rank: i + 1}
	}
	return out
}

func TestScoreEmptyIsZero(t *testing.T) {
	s := NewScorer(&config.Default().RAG)
	assert.Equal(t, 0.0, s.Score(nil))
	assert.Equal(t, 0.0, s.Score([]models.RetrievalResult{}))
}

func TestScoreWithinUnitInterval(t *testing.T) {
	s := NewScorer(&config.RAGConfig{
		ConfidenceBoost:   3,
		ConfidenceWeights: []float64{1.0, 0.8, 0.6, 0.4, 0.2},
	})
	cases := [][]models.RetrievalResult{
		resultsWith(0.01),
		resultsWith(0.9, 0.8, 0.7),
		resultsWith(1, 1, 1, 1, 1, 1, 1),
		resultsWith(0.001, 0.001),
	}
	for _, results := range cases {
		score := s.Score(results)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScorePlainMeanWithoutWeights(t *testing.T) {
	s := NewScorer(&config.RAGConfig{ConfidenceBoost: 1})
	// mean(0.2, 0.4) = 0.3, plus two-chunk bonus 0.2.
	assert.InDelta(t, 0.5, s.Score(resultsWith(0.2, 0.4)), 1e-9)
}

func TestScoreWeightedFavorsTopRanks(t *testing.T) {
	s := NewScorer(&config.RAGConfig{
		ConfidenceBoost:   1,
		ConfidenceWeights: []float64{1.0, 0.8, 0.6, 0.4, 0.2},
	})
	topHeavy := s.Score(resultsWith(0.9, 0.1))
	bottomHeavy := s.Score(resultsWith(0.1, 0.9))
	assert.Greater(t, topHeavy, bottomHeavy)
}

func TestScoreIgnoresRanksBeyondWeights(t *testing.T) {
	s := NewScorer(&config.RAGConfig{
		ConfidenceBoost:   1,
		ConfidenceWeights: []float64{1.0},
	})
	// Only the first result carries weight; trailing results affect the
	// chunk bonus, not the weighted average.
	a := s.Score(resultsWith(0.5, 0.0))
	b := s.Score(resultsWith(0.5, 1.0))
	assert.InDelta(t, a, b, 1e-9)
}

func TestScoreBoostMultiplies(t *testing.T) {
	low := NewScorer(&config.RAGConfig{ConfidenceBoost: 1})
	high := NewScorer(&config.RAGConfig{ConfidenceBoost: 3})
	results := resultsWith(0.2)
	assert.Greater(t, high.Score(results), low.Score(results))
}
