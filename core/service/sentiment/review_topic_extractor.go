package sentiment

import (
	"sort"
	"strings"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

// =============================================================================
// Topic / Keyword Extractor
// =============================================================================

// TopicExtractor detects fixed topic categories by keyword presence.
type TopicExtractor struct {
	categories []topicCategory
}

// NewTopicExtractor creates an extractor over the built-in categories.
func NewTopicExtractor() *TopicExtractor {
	return &TopicExtractor{categories: topicCategories}
}

// Name returns the stage name.
func (e *TopicExtractor) Name() string {
	return "topic"
}

// Extract returns at most MaxTopics topics and MaxKeywords keywords.
// Keywords and issues are gathered over every detected topic before the
// topic list is truncated.
func (e *TopicExtractor) Extract(text string) domain.TopicExtraction {
	var (
		detected []domain.TopicMatch
		keywords []string
		issues   []domain.TopicIssue
	)

	for _, cat := range e.categories {
		matched := presentIn(text, cat.keywords)
		if len(matched) == 0 {
			continue
		}

		pos := len(presentIn(text, cat.positive))
		neg := presentIn(text, cat.negative)

		topicSentiment := domain.SentimentNeutral
		if pos > len(neg) {
			topicSentiment = domain.SentimentPositive
		} else if len(neg) > pos {
			topicSentiment = domain.SentimentNegative
		}

		detected = append(detected, domain.TopicMatch{
			Topic:     cat.name,
			Sentiment: topicSentiment,
			Score:     len(matched),
			Keywords:  matched,
		})
		keywords = append(keywords, matched...)

		if topicSentiment == domain.SentimentNegative {
			for _, kw := range neg {
				issues = append(issues, domain.TopicIssue{Topic: cat.name, Keyword: kw, Type: "negative"})
			}
		}
	}

	sort.SliceStable(detected, func(i, j int) bool {
		return detected[i].Score > detected[j].Score
	})
	if len(detected) > MaxTopics {
		detected = detected[:MaxTopics]
	}

	return domain.TopicExtraction{
		Topics:   nonNilTopics(detected),
		Keywords: limitUnique(keywords, MaxKeywords),
		Issues:   nonNilIssues(issues),
	}
}

// presentIn returns the words found in text, in declaration order.
func presentIn(text string, words []string) []string {
	var found []string
	for _, w := range words {
		if strings.Contains(text, w) {
			found = append(found, w)
		}
	}
	return found
}

// limitUnique dedupes preserving first occurrence and keeps at most n.
func limitUnique(in []string, n int) []string {
	out := make([]string, 0, n)
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if len(out) == n {
			break
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func nonNilTopics(t []domain.TopicMatch) []domain.TopicMatch {
	if t == nil {
		return []domain.TopicMatch{}
	}
	return t
}

func nonNilIssues(i []domain.TopicIssue) []domain.TopicIssue {
	if i == nil {
		return []domain.TopicIssue{}
	}
	return i
}
