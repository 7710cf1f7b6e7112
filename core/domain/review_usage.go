package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReplyHistory is a generated reply kept for the owner's dashboard.
type ReplyHistory struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	ReviewContent     string    `json:"review_content"`
	GeneratedReply    string    `json:"generated_reply"`
	Sentiment         Sentiment `json:"sentiment"`
	SentimentStrength float64   `json:"sentiment_strength"`
	Topics            []string  `json:"topics"`
	Keywords          []string  `json:"keywords"`
	CreatedAt         time.Time `json:"created_at"`
}

// UsageAPIType classifies a model call for billing.
type UsageAPIType string

const (
	UsageReply     UsageAPIType = "openai_chat"
	UsageSentiment UsageAPIType = "sentiment_analysis"
)

// UsageLog is one billed model call.
type UsageLog struct {
	UserID           uuid.UUID    `json:"user_id"`
	APIType          UsageAPIType `json:"api_type"`
	Endpoint         string       `json:"endpoint"`
	Model            string       `json:"model_used"`
	PromptTokens     int          `json:"prompt_tokens"`
	CompletionTokens int          `json:"completion_tokens"`
	TotalTokens      int          `json:"total_tokens"`
	EstimatedCost    float64      `json:"estimated_cost"`
	Success          bool         `json:"success"`
	ErrorMessage     string       `json:"error_message,omitempty"`
	ExecutionTimeMs  int64        `json:"execution_time_ms"`
	CreatedAt        time.Time    `json:"created_at"`
}

// UsageQuota holds per-user limits. A zero limit means unlimited.
type UsageQuota struct {
	UserID            uuid.UUID `json:"user_id"`
	DailyReplyLimit   int       `json:"daily_reply_limit"`
	MonthlyReplyLimit int       `json:"monthly_reply_limit"`
	MonthlyTokenLimit int64     `json:"monthly_token_limit"`
}

// UsagePeriod is consumption over one window.
type UsagePeriod struct {
	Requests int     `json:"requests"`
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// UsageSummary is today's and this month's consumption.
type UsageSummary struct {
	Today     UsagePeriod `json:"today"`
	ThisMonth UsagePeriod `json:"this_month"`
}

// QuotaDecision is the result of a quota check.
type QuotaDecision struct {
	Allowed bool          `json:"allowed"`
	Reason  string        `json:"reason,omitempty"`
	Usage   *UsageSummary `json:"current_usage,omitempty"`
	Quota   *UsageQuota   `json:"quota,omitempty"`
}
