package in

import (
	"context"

	"github.com/bravo6co-debug/ai-riview/core/domain"

	"github.com/google/uuid"
)

// SentimentService analyzes reviews.
type SentimentService interface {
	Analyze(ctx context.Context, content string) (*domain.AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, contents []string) []BatchItem
}

// BatchItem one entry of a batch analysis; exactly one of Result and Err is set.
type BatchItem struct {
	Index  int
	Result *domain.AnalysisResult
	Err    error
}

// ReplyService drafts owner replies.
type ReplyService interface {
	GenerateReply(ctx context.Context, content string, opts *ReplyOptions) (*ReplyResult, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReplyHistory, error)
}

// UsageService reports a user's consumption against their quota.
type UsageService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*domain.QuotaDecision, error)
}

// ReplyOptions reply generation options
type ReplyOptions struct {
	UserID       uuid.UUID // uuid.Nil for anonymous callers; skips quota, usage and history
	BrandContext string    // business type, e.g. "카페"
	BrandTone    string    // friendly, professional, casual, warm, energetic, luxury, minimalist
	SaveHistory  bool
}

// ReplyResult reply generation response
type ReplyResult struct {
	Success               bool                  `json:"success"`
	Reply                 string                `json:"reply"`
	Sentiment             domain.Sentiment      `json:"sentiment"`
	SentimentStrength     float64               `json:"sentiment_strength"`
	Topics                []string              `json:"topics"`
	Keywords              []string              `json:"keywords"`
	Intent                domain.Intent         `json:"intent"`
	AnalysisTimeMs        int64                 `json:"analysis_time_ms"`
	AnalysisSource        domain.AnalysisSource `json:"analysis_source"`
	ModelUsed             string                `json:"model_used"`
	TokensUsed            int                   `json:"tokens_used"`
	ReplyGenerationTimeMs int64                 `json:"reply_generation_time_ms"`
}
