package reply

import (
	"context"
	"strings"
	"testing"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

func first(int) int { return 0 }
func second(int) int { return 1 }

func TestGenerator_Generate(t *testing.T) {
	good := "커피가 맛있으셨다니 정말 기쁩니다 😊 친절하게 모시려고 늘 노력하고 있어요. 다음 방문 때도 맛있는 커피로 보답하겠습니다!"

	model := &fakeModel{content: "\"" + good + "\""}
	g := NewGenerator(model, nil, logger.Nop(), WithChooser(first))

	draft := g.Generate(context.Background(), "커피가 맛있어요", positiveAnalysis(), Brand{Context: "cafe"})

	if draft.Reply != good {
		t.Errorf("reply = %q", draft.Reply)
	}
	if draft.ModelUsed != "gpt-4o-mini" || draft.TokensUsed != 280 || draft.Fallback {
		t.Errorf("draft = %+v", draft)
	}

	req := model.lastReq
	if req.Temperature != replyTemperature || req.MaxTokens != replyMaxTokens {
		t.Errorf("sampling = %v/%d", req.Temperature, req.MaxTokens)
	}
	if req.PresencePenalty != replyPresencePenalty || req.FrequencyPenalty != replyFrequencyPenalty {
		t.Errorf("penalties = %v/%v", req.PresencePenalty, req.FrequencyPenalty)
	}
	if req.JSON {
		t.Error("reply request must not ask for JSON")
	}
	if req.System != SystemPrompt(domain.SentimentPositive) {
		t.Error("wrong system prompt")
	}
}

func TestGenerator_ModelFailureUsesTemplate(t *testing.T) {
	tests := []struct {
		name     string
		analysis *domain.AnalysisResult
		choose   func(int) int
		want     string
	}{
		{
			name:     "positive with keyword",
			analysis: positiveAnalysis(),
			choose:   first,
			want:     "좋게 봐주셔서 감사합니다 😊 맛있해 주셔서 정말 기쁩니다. 앞으로도 더 좋은 모습으로 찾아뵙겠습니다!",
		},
		{
			name:     "positive without keywords",
			analysis: &domain.AnalysisResult{Sentiment: domain.SentimentPositive},
			choose:   second,
			want:     "서비스 만족스러우셨다니 기쁩니다! 항상 최선을 다하는 저희 매장이 되겠습니다. 다음에 또 뵙겠습니다 😊",
		},
		{
			name:     "negative uses first topic",
			analysis: &domain.AnalysisResult{Sentiment: domain.SentimentNegative, Topics: []string{"대기시간"}},
			choose:   first,
			want:     "불편을 드려 정말 죄송합니다. 대기시간 관련하여 즉시 개선하겠습니다. 더 나은 모습으로 다시 찾아뵙고 싶습니다.",
		},
		{
			name:     "negative without keywords",
			analysis: &domain.AnalysisResult{Sentiment: domain.SentimentNegative},
			choose:   second,
			want:     "소중한 의견 감사합니다. 말씀하신 부분은 빠르게 개선하도록 하겠습니다. 다시 한번 사과드립니다.",
		},
		{
			name:     "unknown sentiment is neutral",
			analysis: &domain.AnalysisResult{Sentiment: "mixed"},
			choose:   second,
			want:     "피드백 감사드립니다. 고객님의 의견을 바탕으로 지속적으로 개선해 나가겠습니다!",
		},
		{
			name:     "out of range choice clamps to first",
			analysis: &domain.AnalysisResult{Sentiment: domain.SentimentNeutral},
			choose:   func(int) int { return 7 },
			want:     "방문해 주셔서 감사합니다 😊 소중한 의견 잘 참고하여 더 나은 서비스로 보답하겠습니다!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&fakeModel{err: errProvider}, nil, logger.Nop(), WithChooser(tt.choose))

			draft := g.Generate(context.Background(), "리뷰", tt.analysis, Brand{})

			if draft.Reply != tt.want {
				t.Errorf("reply = %q, want %q", draft.Reply, tt.want)
			}
			if draft.ModelUsed != ModelTemplate || draft.TokensUsed != 0 || !draft.Fallback {
				t.Errorf("draft = %+v", draft)
			}
		})
	}
}

func TestGenerator_NilClient(t *testing.T) {
	g := NewGenerator(nil, nil, logger.Nop(), WithChooser(first))
	draft := g.Generate(context.Background(), "리뷰", nil, Brand{})
	if draft.ModelUsed != ModelTemplate || !strings.HasPrefix(draft.Reply, "방문해 주셔서") {
		t.Errorf("draft = %+v", draft)
	}
}

func TestGenerator_EmptyCompletionUsesTemplate(t *testing.T) {
	g := NewGenerator(&fakeModel{content: "  "}, nil, logger.Nop(), WithChooser(first))
	draft := g.Generate(context.Background(), "리뷰", positiveAnalysis(), Brand{})
	if !draft.Fallback {
		t.Errorf("expected template fallback, got %+v", draft)
	}
}

func TestGenerator_Adjust(t *testing.T) {
	rep := strings.Repeat
	g := NewGenerator(nil, nil, logger.Nop(), WithChooser(first))
	analysis := &domain.AnalysisResult{Sentiment: domain.SentimentNeutral}
	template := "방문해 주셔서 감사합니다 😊 소중한 의견 잘 참고하여 더 나은 서비스로 보답하겠습니다!"

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"too short becomes template", "감사합니다!", template},
		{"quotes stripped", "'" + rep("가", 50) + "'", rep("가", 50)},
		{"within window kept", rep("가", 150), rep("가", 150)},
		{"long cut to two sentences", rep("가", 100) + "." + rep("나", 30) + "." + rep("다", 30), rep("가", 100) + ". " + rep("나", 30) + "."},
		{"no sentence break hard truncated", rep("가", 200), rep("가", 147) + "..."},
		{"two long sentences hard truncated", rep("가", 120) + "." + rep("나", 60) + ".", rep("가", 120) + ". " + rep("나", 25) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.adjust(tt.input, analysis); got != tt.want {
				t.Errorf("adjust = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerator_RecordsUsage(t *testing.T) {
	repo := &fakeUsageRepo{}
	tracker := usage.NewTracker(repo, logger.Nop())
	g := NewGenerator(&fakeModel{err: errProvider}, tracker, logger.Nop(), WithChooser(first))

	ctx := usage.WithUser(context.Background(), testUser)
	g.Generate(ctx, "리뷰", positiveAnalysis(), Brand{})

	if len(repo.logs) != 1 {
		t.Fatalf("usage logs = %d, want 1", len(repo.logs))
	}
	entry := repo.logs[0]
	if entry.APIType != domain.UsageReply || entry.Success || entry.ErrorMessage == "" {
		t.Errorf("usage log = %+v", entry)
	}
}
