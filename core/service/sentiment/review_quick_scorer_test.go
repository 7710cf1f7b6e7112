package sentiment

import (
	"math"
	"testing"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

func TestQuickScorer_Score(t *testing.T) {
	scorer := NewQuickScorer()

	tests := []struct {
		name           string
		text           string
		wantSentiment  domain.Sentiment
		wantConfidence float64
		wantPositive   float64
		wantNegative   float64
	}{
		{
			name:           "strong and medium positive",
			text:           "맛있고 친절해요 최고",
			wantSentiment:  domain.SentimentPositive,
			wantConfidence: 0.95,
			wantPositive:   7,
		},
		{
			name:           "no keywords",
			text:           "오늘 다녀왔습니다",
			wantSentiment:  domain.SentimentNeutral,
			wantConfidence: 0.5,
		},
		{
			name:           "amplified negative",
			text:           "정말 별로였어요",
			wantSentiment:  domain.SentimentNegative,
			wantConfidence: 0.95,
			wantNegative:   3, // 별로 2 x 1.5
		},
		{
			name:           "amplifier without negative keyword",
			text:           "정말 좋아요",
			wantSentiment:  domain.SentimentPositive,
			wantConfidence: 0.95,
			wantPositive:   2,
		},
		{
			name:           "balanced is neutral",
			text:           "좋아요 그런데 별로",
			wantSentiment:  domain.SentimentNeutral,
			wantConfidence: 0.5,
			wantPositive:   2,
			wantNegative:   2,
		},
		{
			name:           "repeated substrings all count",
			text:           "최고최고 별로",
			wantSentiment:  domain.SentimentPositive,
			wantConfidence: 0.6 + 6.0/8.0*0.35,
			wantPositive:   6,
			wantNegative:   2,
		},
		{
			name:           "훌륭 counts in two tiers",
			text:           "훌륭",
			wantSentiment:  domain.SentimentPositive,
			wantConfidence: 0.95,
			wantPositive:   5,
		},
		{
			name:           "괜찮은 matches medium and weak",
			text:           "괜찮은 집",
			wantSentiment:  domain.SentimentPositive,
			wantConfidence: 0.95,
			wantPositive:   3,
		},
		{
			name:           "weak negative with strong positive is positive",
			text:           "조금 늦었지만 최고",
			wantSentiment:  domain.SentimentPositive,
			wantConfidence: 0.6 + 3.0/4.0*0.35,
			wantPositive:   3,
			wantNegative:   1,
		},
		{
			name:           "불친절 also contains 친절",
			text:           "불친절",
			wantSentiment:  domain.SentimentNeutral,
			wantConfidence: 0.5,
			wantPositive:   2,
			wantNegative:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.text)
			if got.Sentiment != tt.wantSentiment {
				t.Errorf("Sentiment = %s, want %s", got.Sentiment, tt.wantSentiment)
			}
			if math.Abs(got.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("Confidence = %f, want %f", got.Confidence, tt.wantConfidence)
			}
			if got.RawScores.Positive != tt.wantPositive || got.RawScores.Negative != tt.wantNegative {
				t.Errorf("RawScores = %+v, want {%v %v}", got.RawScores, tt.wantPositive, tt.wantNegative)
			}
		})
	}
}

func TestQuickScorer_ConfidenceBounds(t *testing.T) {
	scorer := NewQuickScorer()
	inputs := []string{
		"", "최악", "최고", "별로 별로 좋아", "너무 실망 그래도 친절", "약간", "무난", "환불 신고 쓰레기 최고",
		"맛있 맛있 맛있 별로", "정말 진짜 너무 조금",
	}
	for _, text := range inputs {
		got := scorer.Score(text)
		if got.Confidence < 0.5 || got.Confidence > 0.95 {
			t.Errorf("Score(%q).Confidence = %f, out of [0.5, 0.95]", text, got.Confidence)
		}
		if got.Sentiment == domain.SentimentNeutral && got.Confidence != 0.5 {
			t.Errorf("Score(%q): neutral with confidence %f", text, got.Confidence)
		}
		if again := scorer.Score(text); again != got {
			t.Errorf("Score(%q) not deterministic: %+v vs %+v", text, got, again)
		}
	}
}
