package sentiment

import (
	"fmt"
	"strings"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

// Compose builds a result from the rule-based outputs alone.
func Compose(quick domain.QuickScore, topics domain.TopicExtraction) *domain.AnalysisResult {
	tmpl, ok := localTemplates[quick.Sentiment]
	if !ok {
		tmpl = localTemplates[domain.SentimentNeutral]
	}

	names := topics.TopicNames()
	top := names
	if len(top) > 2 {
		top = top[:2]
	}

	return &domain.AnalysisResult{
		Success:           true,
		Sentiment:         quick.Sentiment,
		SentimentStrength: quick.Confidence,
		Topics:            names,
		Keywords:          append([]string{}, topics.Keywords...),
		Intent:            tmpl.intent,
		ReplyFocus:        append([]string{}, tmpl.focus...),
		ReplyAvoid:        append([]string{}, tmpl.avoid...),
		Summary:           fmt.Sprintf("%s 리뷰 - %s", quick.Sentiment, strings.Join(top, ", ")),
		AnalysisDepth:     domain.DepthQuick,
		AnalysisSource:    domain.SourceRuleBased,
		ModelUsed:         domain.ModelNone,
		Details:           detailsOf(quick, topics),
	}
}

func detailsOf(quick domain.QuickScore, topics domain.TopicExtraction) *domain.AnalysisDetails {
	return &domain.AnalysisDetails{
		QuickScores:    quick.RawScores,
		DetectedTopics: topics.Topics,
		Issues:         topics.Issues,
	}
}
