package out

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when no model client is configured or the breaker is open.
var ErrModelUnavailable = errors.New("model unavailable")

// ModelClient 텍스트 생성 모델 클라이언트 인터페이스
type ModelClient interface {
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
	Model() string
}

// CompletionRequest one system+user exchange.
type CompletionRequest struct {
	System           string
	User             string
	Temperature      float32
	MaxTokens        int
	JSON             bool // ask for a single JSON object
	PresencePenalty  float32
	FrequencyPenalty float32
}

// Completion model output plus token usage.
type Completion struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens prompt + completion.
func (c *Completion) TotalTokens() int {
	if c == nil {
		return 0
	}
	return c.PromptTokens + c.CompletionTokens
}
