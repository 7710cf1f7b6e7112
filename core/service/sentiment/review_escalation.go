package sentiment

import (
	"unicode/utf8"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

// =============================================================================
// Escalation Decision
// =============================================================================

// EscalationPolicy decides when a review is worth a model call.
type EscalationPolicy struct {
	MaxQuickLength int     // runes; longer reviews escalate
	MaxTopics      int     // more detected topics escalate
	MinConfidence  float64 // lower quick confidence escalates
}

// DefaultEscalationPolicy returns the production thresholds.
func DefaultEscalationPolicy() EscalationPolicy {
	return EscalationPolicy{
		MaxQuickLength: 100,
		MaxTopics:      2,
		MinConfidence:  0.7,
	}
}

// EscalationReason names the first rule that fired.
type EscalationReason string

const (
	ReasonNone          EscalationReason = ""
	ReasonNegative      EscalationReason = "negative"
	ReasonLength        EscalationReason = "length"
	ReasonTopics        EscalationReason = "topics"
	ReasonLowConfidence EscalationReason = "low_confidence"
)

// NeedsDeepAnalysis reports whether the review must go to the deep analyzer.
func (p EscalationPolicy) NeedsDeepAnalysis(quick domain.QuickScore, topics domain.TopicExtraction, text string) bool {
	return p.Reason(quick, topics, text) != ReasonNone
}

// Reason returns why the review escalates, or ReasonNone.
func (p EscalationPolicy) Reason(quick domain.QuickScore, topics domain.TopicExtraction, text string) EscalationReason {
	switch {
	case quick.Sentiment == domain.SentimentNegative:
		return ReasonNegative
	case utf8.RuneCountInString(text) > p.MaxQuickLength:
		return ReasonLength
	case len(topics.Topics) > p.MaxTopics:
		return ReasonTopics
	case quick.Confidence < p.MinConfidence:
		return ReasonLowConfidence
	}
	return ReasonNone
}
