package sentiment

import (
	"math"
	"strings"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

// =============================================================================
// Rule-Based Quick Scorer
// =============================================================================

const (
	neutralConfidence = 0.5
	baseConfidence    = 0.6
	ratioConfidence   = 0.35
	maxConfidence     = 0.95
	dominanceRatio    = 1.5
)

// QuickScorer scores tier-weighted keyword occurrences. It is stateless.
type QuickScorer struct{}

// NewQuickScorer creates a new quick scorer.
func NewQuickScorer() *QuickScorer {
	return &QuickScorer{}
}

// Name returns the stage name.
func (s *QuickScorer) Name() string {
	return "quick"
}

// Score returns the rule-based sentiment of text.
func (s *QuickScorer) Score(text string) domain.QuickScore {
	positive := tierScore(text, positiveTiers)
	negative := tierScore(text, negativeTiers)

	if negative > 0 && containsAny(text, amplifiers) {
		negative *= negativeAmplification
	}

	result := domain.QuickScore{
		Sentiment:  domain.SentimentNeutral,
		Confidence: neutralConfidence,
		RawScores:  domain.RawScores{Positive: positive, Negative: negative},
	}

	total := positive + negative
	switch {
	case total == 0:
	case positive > negative*dominanceRatio:
		result.Sentiment = domain.SentimentPositive
		result.Confidence = math.Min(baseConfidence+(positive/total)*ratioConfidence, maxConfidence)
	case negative > positive*dominanceRatio:
		result.Sentiment = domain.SentimentNegative
		result.Confidence = math.Min(baseConfidence+(negative/total)*ratioConfidence, maxConfidence)
	}
	return result
}

// tierScore sums occurrences × weight over every keyword of every tier.
func tierScore(text string, tiers []tier) float64 {
	var score float64
	for _, t := range tiers {
		for _, kw := range t.keywords {
			score += float64(strings.Count(text, kw)) * t.weight
		}
	}
	return score
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
