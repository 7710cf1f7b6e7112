package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/bravo6co-debug/ai-riview/core/agent/llm"
	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

// =============================================================================
// Deep Analyzer (model-backed)
// =============================================================================

// OutcomeKind tags how a deep analysis ended.
type OutcomeKind int

const (
	OutcomeDeep     OutcomeKind = iota // model result, field-level fallbacks applied
	OutcomeFallback                    // model failed, local composition returned
)

func (k OutcomeKind) String() string {
	if k == OutcomeDeep {
		return "deep"
	}
	return "fallback"
}

// DeepOutcome is the result of a deep analysis. Analysis is never nil.
type DeepOutcome struct {
	Kind       OutcomeKind
	Analysis   *domain.AnalysisResult
	Cause      error // set for OutcomeFallback
	Completion *out.Completion
}

const (
	deepSystemPrompt = "당신은 고객 리뷰 분석 전문가입니다. JSON 형식으로만 응답하세요."
	deepTemperature  = 0.3
	deepMaxTokens    = 500
)

// DeepAnalyzer asks the model for a structured analysis.
type DeepAnalyzer struct {
	client  out.ModelClient
	timeout time.Duration
	usage   *usage.Tracker
	log     *logger.Logger
}

// NewDeepAnalyzer creates a deep analyzer. A nil client always falls back.
func NewDeepAnalyzer(client out.ModelClient, timeout time.Duration, tracker *usage.Tracker, log *logger.Logger) *DeepAnalyzer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	return &DeepAnalyzer{client: client, timeout: timeout, usage: tracker, log: log}
}

// Name returns the stage name.
func (d *DeepAnalyzer) Name() string {
	return "deep"
}

// Analyze never fails; errors turn into OutcomeFallback.
func (d *DeepAnalyzer) Analyze(ctx context.Context, text string, quick domain.QuickScore, topics domain.TopicExtraction) DeepOutcome {
	if d.client == nil {
		return d.fallback(ctx, quick, topics, out.ErrModelUnavailable, nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	completion, err := d.client.Complete(callCtx, &out.CompletionRequest{
		System:      deepSystemPrompt,
		User:        buildDeepPrompt(text),
		Temperature: deepTemperature,
		MaxTokens:   deepMaxTokens,
		JSON:        true,
	})
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		err = apperr.Timeout("deep analysis").WithError(err)
	}
	d.usage.Record(ctx, usage.Call{
		APIType:    domain.UsageSentiment,
		Endpoint:   "sentiment/deep",
		Completion: completion,
		Err:        err,
		Elapsed:    time.Since(start),
	})
	if err != nil {
		return d.fallback(ctx, quick, topics, err, nil)
	}

	parsed, err := parseDeepResponse(completion.Content)
	if err != nil {
		return d.fallback(ctx, quick, topics, err, completion)
	}

	model := completion.Model
	if model == "" {
		model = d.client.Model()
	}
	return DeepOutcome{
		Kind:       OutcomeDeep,
		Analysis:   parsed.merge(quick, topics, model),
		Completion: completion,
	}
}

func (d *DeepAnalyzer) fallback(ctx context.Context, quick domain.QuickScore, topics domain.TopicExtraction, cause error, completion *out.Completion) DeepOutcome {
	d.log.WithContext(ctx).WithError(cause).Warn("deep analysis failed, using rule-based result")
	return DeepOutcome{
		Kind:       OutcomeFallback,
		Analysis:   Compose(quick, topics),
		Cause:      cause,
		Completion: completion,
	}
}

func buildDeepPrompt(text string) string {
	return fmt.Sprintf(`다음 고객 리뷰를 정밀 분석해주세요:

리뷰: "%s"

분석 항목:
1. 전체 감정 (positive/negative/neutral)
2. 감정 강도 (0.0 ~ 1.0)
3. 주요 주제 (최대 3개)
4. 핵심 키워드 (최대 5개)
5. 고객 의도 (칭찬/불만/제안/문의)
6. 답글 강조 포인트 (구체적으로)
7. 답글 피해야 할 요소

JSON 형식으로만 응답하세요:
{
  "sentiment": "positive|negative|neutral",
  "sentiment_strength": 0.85,
  "topics": ["주제1", "주제2"],
  "keywords": ["키워드1", "키워드2"],
  "intent": "칭찬|불만|제안|문의",
  "reply_focus": ["포인트1", "포인트2"],
  "reply_avoid": ["피할요소1", "피할요소2"],
  "summary": "한줄 요약"
}`, text)
}

// deepResponse distinguishes absent fields (nil) from empty ones.
type deepResponse struct {
	Sentiment         *string         `json:"sentiment"`
	SentimentStrength *float64        `json:"sentiment_strength"`
	Topics            json.RawMessage `json:"topics"`
	Keywords          *[]string       `json:"keywords"`
	Intent            *string         `json:"intent"`
	ReplyFocus        *[]string       `json:"reply_focus"`
	ReplyAvoid        *[]string       `json:"reply_avoid"`
	Summary           *string         `json:"summary"`

	topics []string
}

func parseDeepResponse(content string) (*deepResponse, error) {
	var resp deepResponse
	if err := json.Unmarshal([]byte(llm.ExtractJSON(content)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse deep analysis: %w", err)
	}

	topics, err := parseTopics(resp.Topics)
	if err != nil {
		return nil, err
	}
	resp.topics = topics
	return &resp, nil
}

// parseTopics accepts ["맛", ...] or [{"topic": "맛"}, ...]. nil means absent.
func parseTopics(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}

	topics := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			var obj struct {
				Topic string `json:"topic"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return nil, fmt.Errorf("failed to parse topic item: %w", err)
			}
			name = obj.Topic
		}
		if name = strings.TrimSpace(name); name != "" {
			topics = append(topics, name)
		}
	}
	return topics, nil
}

// merge applies field-level fallback to the rule-based outputs.
func (r *deepResponse) merge(quick domain.QuickScore, topics domain.TopicExtraction, model string) *domain.AnalysisResult {
	result := &domain.AnalysisResult{
		Success:           true,
		Sentiment:         quick.Sentiment,
		SentimentStrength: quick.Confidence,
		Topics:            topics.TopicNames(),
		Keywords:          append([]string{}, topics.Keywords...),
		Intent:            domain.IntentGeneral,
		ReplyFocus:        []string{},
		ReplyAvoid:        []string{},
		AnalysisDepth:     domain.DepthDeep,
		AnalysisSource:    domain.SourceAI,
		ModelUsed:         model,
		Details:           detailsOf(quick, topics),
	}

	if r.Sentiment != nil {
		if s, ok := domain.ParseSentiment(*r.Sentiment); ok {
			result.Sentiment = s
		}
	}
	if r.SentimentStrength != nil && !math.IsNaN(*r.SentimentStrength) {
		result.SentimentStrength = math.Max(0, math.Min(1, *r.SentimentStrength))
	}
	if r.topics != nil {
		result.Topics = r.topics
	}
	if len(result.Topics) > MaxTopics {
		result.Topics = result.Topics[:MaxTopics]
	}
	if r.Keywords != nil {
		result.Keywords = limitUnique(*r.Keywords, MaxKeywords)
	}
	if r.Intent != nil {
		result.Intent = domain.ParseIntent(*r.Intent)
	}
	if r.ReplyFocus != nil {
		result.ReplyFocus = *r.ReplyFocus
	}
	if r.ReplyAvoid != nil {
		result.ReplyAvoid = *r.ReplyAvoid
	}
	if r.Summary != nil {
		result.Summary = *r.Summary
	}
	return result
}
