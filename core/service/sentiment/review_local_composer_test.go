package sentiment

import (
	"reflect"
	"testing"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

func TestCompose(t *testing.T) {
	topics := domain.TopicExtraction{
		Topics: []domain.TopicMatch{
			{Topic: TopicQuality, Score: 2},
			{Topic: TopicService, Score: 1},
			{Topic: TopicPrice, Score: 1},
		},
		Keywords: []string{"맛", "직원", "가격"},
	}

	tests := []struct {
		name        string
		quick       domain.QuickScore
		topics      domain.TopicExtraction
		wantIntent  domain.Intent
		wantFocus   []string
		wantAvoid   []string
		wantSummary string
	}{
		{
			name:        "positive",
			quick:       domain.QuickScore{Sentiment: domain.SentimentPositive, Confidence: 0.95},
			topics:      topics,
			wantIntent:  domain.IntentPraise,
			wantFocus:   []string{"구체적인 칭찬 포인트 감사", "지속적인 품질 약속"},
			wantAvoid:   []string{"형식적인 답변", "과도한 마케팅"},
			wantSummary: "positive 리뷰 - 맛/품질, 서비스",
		},
		{
			name:        "negative",
			quick:       domain.QuickScore{Sentiment: domain.SentimentNegative, Confidence: 0.9},
			topics:      topics,
			wantIntent:  domain.IntentComplaint,
			wantFocus:   []string{"진심 어린 사과", "구체적 개선 약속"},
			wantAvoid:   []string{"변명", "책임 회피"},
			wantSummary: "negative 리뷰 - 맛/품질, 서비스",
		},
		{
			name:        "neutral without topics",
			quick:       domain.QuickScore{Sentiment: domain.SentimentNeutral, Confidence: 0.5},
			topics:      domain.TopicExtraction{Topics: []domain.TopicMatch{}, Keywords: []string{}},
			wantIntent:  domain.IntentGeneral,
			wantFocus:   []string{"방문 감사", "개선 의지"},
			wantAvoid:   []string{"무성의한 답변"},
			wantSummary: "neutral 리뷰 - ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.quick, tt.topics)
			if got.Intent != tt.wantIntent {
				t.Errorf("Intent = %s, want %s", got.Intent, tt.wantIntent)
			}
			if !reflect.DeepEqual(got.ReplyFocus, tt.wantFocus) || !reflect.DeepEqual(got.ReplyAvoid, tt.wantAvoid) {
				t.Errorf("focus/avoid = %v / %v", got.ReplyFocus, got.ReplyAvoid)
			}
			if got.Summary != tt.wantSummary {
				t.Errorf("Summary = %q, want %q", got.Summary, tt.wantSummary)
			}
			if got.AnalysisDepth != domain.DepthQuick || got.AnalysisSource != domain.SourceRuleBased || got.ModelUsed != domain.ModelNone {
				t.Errorf("provenance = %s/%s/%s", got.AnalysisDepth, got.AnalysisSource, got.ModelUsed)
			}
			if got.SentimentStrength != tt.quick.Confidence || !got.Success {
				t.Errorf("strength = %f success = %v", got.SentimentStrength, got.Success)
			}
			if !reflect.DeepEqual(got.Topics, tt.topics.TopicNames()) {
				t.Errorf("Topics = %v", got.Topics)
			}
		})
	}
}

func TestCompose_DoesNotAliasTemplates(t *testing.T) {
	quick := domain.QuickScore{Sentiment: domain.SentimentPositive, Confidence: 0.9}
	first := Compose(quick, domain.TopicExtraction{})
	first.ReplyFocus[0] = "mutated"

	second := Compose(quick, domain.TopicExtraction{})
	if second.ReplyFocus[0] != "구체적인 칭찬 포인트 감사" {
		t.Error("Compose shares template slices between results")
	}
}
