package domain

import (
	"strings"
	"time"
)

// Sentiment is the overall polarity of a review.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ParseSentiment returns the sentiment and whether s was a known value.
func ParseSentiment(s string) (Sentiment, bool) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNegative:
		return SentimentNegative, true
	case SentimentNeutral:
		return SentimentNeutral, true
	}
	return SentimentNeutral, false
}

// Intent is the reviewer's purpose. Values are the labels shown to store owners.
type Intent string

const (
	IntentPraise     Intent = "칭찬"
	IntentComplaint  Intent = "불만"
	IntentSuggestion Intent = "제안"
	IntentInquiry    Intent = "문의"
	IntentGeneral    Intent = "일반"
)

var intentAliases = map[string]Intent{
	"칭찬":         IntentPraise,
	"praise":     IntentPraise,
	"불만":         IntentComplaint,
	"complaint":  IntentComplaint,
	"제안":         IntentSuggestion,
	"suggestion": IntentSuggestion,
	"문의":         IntentInquiry,
	"inquiry":    IntentInquiry,
	"일반":         IntentGeneral,
	"general":    IntentGeneral,
}

// ParseIntent maps a label or English name to an Intent. Unknown values are general.
func ParseIntent(s string) Intent {
	if intent, ok := intentAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return intent
	}
	return IntentGeneral
}

// AnalysisDepth tells how far the pipeline went.
type AnalysisDepth string

const (
	DepthQuick AnalysisDepth = "quick"
	DepthDeep  AnalysisDepth = "deep"
	DepthCache AnalysisDepth = "cache"
)

// AnalysisSource tells who produced the result.
type AnalysisSource string

const (
	SourceRuleBased AnalysisSource = "rule-based"
	SourceAI        AnalysisSource = "ai"
	SourceCache     AnalysisSource = "cache"
)

// ModelNone marks results produced without a model call.
const ModelNone = "none"

// AnalysisResult is the output of one review analysis.
type AnalysisResult struct {
	Success           bool             `json:"success"`
	Sentiment         Sentiment        `json:"sentiment"`
	SentimentStrength float64          `json:"sentiment_strength"`
	Topics            []string         `json:"topics"`
	Keywords          []string         `json:"keywords"`
	Intent            Intent           `json:"intent"`
	ReplyFocus        []string         `json:"reply_focus"`
	ReplyAvoid        []string         `json:"reply_avoid"`
	Summary           string           `json:"summary"`
	AnalysisDepth     AnalysisDepth    `json:"analysis_depth"`
	AnalysisSource    AnalysisSource   `json:"analysis_source"`
	ModelUsed         string           `json:"model_used"`
	AnalysisTimeMs    *int64           `json:"analysis_time_ms,omitempty"`
	Details           *AnalysisDetails `json:"details,omitempty"`
}

// AnalysisDetails carries the rule-based evidence behind a result. Not cached.
type AnalysisDetails struct {
	QuickScores    RawScores    `json:"quick_scores"`
	DetectedTopics []TopicMatch `json:"detected_topics"`
	Issues         []TopicIssue `json:"issues"`
}

// Clone returns a deep copy so cached values are never shared between callers.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Topics = cloneStrings(r.Topics)
	out.Keywords = cloneStrings(r.Keywords)
	out.ReplyFocus = cloneStrings(r.ReplyFocus)
	out.ReplyAvoid = cloneStrings(r.ReplyAvoid)
	if r.Details != nil {
		d := *r.Details
		d.DetectedTopics = append([]TopicMatch(nil), r.Details.DetectedTopics...)
		d.Issues = append([]TopicIssue(nil), r.Details.Issues...)
		out.Details = &d
	}
	if r.AnalysisTimeMs != nil {
		ms := *r.AnalysisTimeMs
		out.AnalysisTimeMs = &ms
	}
	return &out
}

// ElapsedMs returns the analysis duration, 0 for cache hits.
func (r *AnalysisResult) ElapsedMs() int64 {
	if r == nil || r.AnalysisTimeMs == nil {
		return 0
	}
	return *r.AnalysisTimeMs
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// RawScores are the tier-weighted dictionary totals.
type RawScores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// QuickScore is the output of the rule-based scorer.
type QuickScore struct {
	Sentiment  Sentiment `json:"sentiment"`
	Confidence float64   `json:"confidence"`
	RawScores  RawScores `json:"raw_scores"`
}

// TopicMatch is one detected topic category.
type TopicMatch struct {
	Topic     string    `json:"topic"`
	Sentiment Sentiment `json:"sentiment"`
	Score     int       `json:"score"`
	Keywords  []string  `json:"keywords"`
}

// TopicIssue flags a negative keyword inside a negative topic.
type TopicIssue struct {
	Topic   string `json:"topic"`
	Keyword string `json:"keyword"`
	Type    string `json:"type"`
}

// TopicExtraction is the output of the topic extractor.
type TopicExtraction struct {
	Topics   []TopicMatch `json:"topics"`
	Keywords []string     `json:"keywords"`
	Issues   []TopicIssue `json:"issues"`
}

// TopicNames returns the detected topic names in rank order.
func (t TopicExtraction) TopicNames() []string {
	names := make([]string, 0, len(t.Topics))
	for _, m := range t.Topics {
		names = append(names, m.Topic)
	}
	return names
}

// CacheEntry is one memoized analysis keyed by content fingerprint.
type CacheEntry struct {
	ContentHash    string         `json:"content_hash"`
	ContentPreview string         `json:"content_preview"`
	Result         AnalysisResult `json:"result"`
	HitCount       int64          `json:"hit_count"`
	LastUsedAt     time.Time      `json:"last_used_at"`
	CreatedAt      time.Time      `json:"created_at"`
}
