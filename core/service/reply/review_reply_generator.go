// Package reply drafts store-owner replies from a review analysis.
package reply

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

// ModelTemplate marks replies produced from a template.
const ModelTemplate = "template"

const (
	replyTemperature      = 0.7
	replyMaxTokens        = 250
	replyPresencePenalty  = 0.4
	replyFrequencyPenalty = 0.3

	minReplyRunes   = 40
	maxReplyRunes   = 150
	hardReplyRunes  = 147
	replyEndpoint   = "/api/v1/reply/generate"
	defaultDeadline = 20 * time.Second
)

var errEmptyReply = errors.New("model returned an empty reply")

// ReplyDraft is a generated reply.
type ReplyDraft struct {
	Reply      string
	ModelUsed  string
	TokensUsed int
	Fallback   bool // template used after a model failure
}

// Generator drafts replies with a model and falls back to templates.
type Generator struct {
	client  out.ModelClient
	usage   *usage.Tracker
	timeout time.Duration
	choose  func(n int) int
	log     *logger.Logger
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithChooser replaces the random template picker.
func WithChooser(choose func(n int) int) GeneratorOption {
	return func(g *Generator) {
		if choose != nil {
			g.choose = choose
		}
	}
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGenerator creates a generator. A nil client always uses templates.
func NewGenerator(client out.ModelClient, tracker *usage.Tracker, log *logger.Logger, opts ...GeneratorOption) *Generator {
	if log == nil {
		log = logger.Default()
	}
	g := &Generator{
		client:  client,
		usage:   tracker,
		timeout: defaultDeadline,
		choose:  rand.IntN,
		log:     log.WithField("component", "reply_generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate never fails. Model errors produce a template reply.
func (g *Generator) Generate(ctx context.Context, content string, analysis *domain.AnalysisResult, brand Brand) ReplyDraft {
	if analysis == nil {
		analysis = &domain.AnalysisResult{Sentiment: domain.SentimentNeutral}
	}
	if g.client == nil {
		return g.templateDraft(analysis)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	completion, err := g.client.Complete(callCtx, &out.CompletionRequest{
		System:           SystemPrompt(analysis.Sentiment),
		User:             BuildUserPrompt(content, analysis, brand),
		Temperature:      replyTemperature,
		MaxTokens:        replyMaxTokens,
		PresencePenalty:  replyPresencePenalty,
		FrequencyPenalty: replyFrequencyPenalty,
	})
	if err == nil && (completion == nil || strings.TrimSpace(completion.Content) == "") {
		err = errEmptyReply
	}

	g.usage.Record(ctx, usage.Call{
		APIType:    domain.UsageReply,
		Endpoint:   replyEndpoint,
		Completion: completion,
		Err:        err,
		Elapsed:    time.Since(start),
	})

	if err != nil {
		g.log.WithContext(ctx).WithError(err).Warn("reply generation failed, using template")
		return g.templateDraft(analysis)
	}

	model := completion.Model
	if model == "" {
		model = g.client.Model()
	}
	return ReplyDraft{
		Reply:      g.adjust(completion.Content, analysis),
		ModelUsed:  model,
		TokensUsed: completion.TotalTokens(),
	}
}

// adjust strips quotes and enforces the reply length window. Hard
// truncation is applied last and always wins.
func (g *Generator) adjust(reply string, analysis *domain.AnalysisResult) string {
	reply = strings.Trim(strings.TrimSpace(reply), `"'`)

	if utf8.RuneCountInString(reply) < minReplyRunes {
		return g.Template(analysis)
	}

	if utf8.RuneCountInString(reply) > maxReplyRunes {
		sentences := strings.Split(reply, ".")
		if len(sentences) > 2 {
			sentences = sentences[:2]
		}
		reply = strings.Join(sentences, ". ") + "."
		if runes := []rune(reply); len(runes) > maxReplyRunes {
			reply = string(runes[:hardReplyRunes]) + "..."
		}
	}
	return reply
}

func (g *Generator) templateDraft(analysis *domain.AnalysisResult) ReplyDraft {
	return ReplyDraft{
		Reply:     g.Template(analysis),
		ModelUsed: ModelTemplate,
		Fallback:  true,
	}
}

// Template picks one of the canned replies for the analysis sentiment.
func (g *Generator) Template(analysis *domain.AnalysisResult) string {
	candidates := templateReplies(analysis.Sentiment, analysis.Topics, analysis.Keywords)
	i := g.choose(len(candidates))
	if i < 0 || i >= len(candidates) {
		i = 0
	}
	return candidates[i]
}

func templateReplies(sentiment domain.Sentiment, topics, keywords []string) []string {
	keyword := func(fallback string) string {
		if len(keywords) > 0 {
			return keywords[0]
		}
		return fallback
	}
	topic := "서비스"
	if len(topics) > 0 {
		topic = topics[0]
	}

	switch sentiment {
	case domain.SentimentPositive:
		return []string{
			"좋게 봐주셔서 감사합니다 😊 " + keyword("방문") + "해 주셔서 정말 기쁩니다. 앞으로도 더 좋은 모습으로 찾아뵙겠습니다!",
			keyword("서비스") + " 만족스러우셨다니 기쁩니다! 항상 최선을 다하는 저희 매장이 되겠습니다. 다음에 또 뵙겠습니다 😊",
		}
	case domain.SentimentNegative:
		return []string{
			"불편을 드려 정말 죄송합니다. " + topic + " 관련하여 즉시 개선하겠습니다. 더 나은 모습으로 다시 찾아뵙고 싶습니다.",
			"소중한 의견 감사합니다. 말씀하신 " + keyword("부분") + "은 빠르게 개선하도록 하겠습니다. 다시 한번 사과드립니다.",
		}
	default:
		return []string{
			"방문해 주셔서 감사합니다 😊 소중한 의견 잘 참고하여 더 나은 서비스로 보답하겠습니다!",
			"피드백 감사드립니다. 고객님의 의견을 바탕으로 지속적으로 개선해 나가겠습니다!",
		}
	}
}
