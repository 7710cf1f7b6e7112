// Package usage logs billed model calls and enforces per-user quotas.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/bravo6co-debug/ai-riview/core/agent/llm"
	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithUser attaches the billed user to ctx.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFrom returns the billed user, or uuid.Nil.
func UserFrom(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(ctxKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// Tracker records usage and checks quotas. Every method is best-effort:
// storage failures are logged and never block the caller.
type Tracker struct {
	repo  out.UsageRepository
	costs *llm.CostTracker
	log   *logger.Logger
}

func NewTracker(repo out.UsageRepository, log *logger.Logger) *Tracker {
	if log == nil {
		log = logger.Default()
	}
	return &Tracker{
		repo:  repo,
		costs: llm.NewCostTracker(),
		log:   log.WithField("component", "usage"),
	}
}

var _ in.UsageService = (*Tracker)(nil)

// Call describes one finished model call.
type Call struct {
	APIType    domain.UsageAPIType
	Endpoint   string
	Completion *out.Completion
	Err        error
	Elapsed    time.Duration
}

// Record logs a model call for the user in ctx. Anonymous calls only feed
// the in-process cost tracker.
func (t *Tracker) Record(ctx context.Context, call Call) {
	if t == nil {
		return
	}

	var model string
	var prompt, completion int
	if call.Completion != nil {
		model = call.Completion.Model
		prompt = call.Completion.PromptTokens
		completion = call.Completion.CompletionTokens
	}
	cost := t.costs.Track(model, prompt, completion)

	userID := UserFrom(ctx)
	if t.repo == nil || userID == uuid.Nil {
		return
	}

	entry := &domain.UsageLog{
		UserID:           userID,
		APIType:          call.APIType,
		Endpoint:         call.Endpoint,
		Model:            model,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
		EstimatedCost:    cost,
		Success:          call.Err == nil,
		ExecutionTimeMs:  call.Elapsed.Milliseconds(),
		CreatedAt:        time.Now(),
	}
	if call.Err != nil {
		entry.ErrorMessage = call.Err.Error()
	}
	if err := t.repo.LogUsage(ctx, entry); err != nil {
		t.log.WithError(err).WithField("user_id", userID.String()).Warn("failed to log api usage")
	}
}

// CheckQuota fails open: lookup errors and missing quota rows allow the call.
func (t *Tracker) CheckQuota(ctx context.Context, userID uuid.UUID) domain.QuotaDecision {
	allowed := domain.QuotaDecision{Allowed: true}
	if t == nil || t.repo == nil || userID == uuid.Nil {
		return allowed
	}

	quota, err := t.repo.GetQuota(ctx, userID)
	if err != nil {
		t.log.WithError(err).Warn("failed to fetch quota, allowing request")
		return allowed
	}
	if quota == nil {
		return allowed
	}

	summary, err := t.repo.GetUsage(ctx, userID)
	if err != nil {
		t.log.WithError(err).Warn("failed to fetch usage, allowing request")
		return allowed
	}

	decision := domain.QuotaDecision{Allowed: true, Usage: summary, Quota: quota}
	switch {
	case quota.DailyReplyLimit > 0 && summary.Today.Requests >= quota.DailyReplyLimit:
		decision.Allowed = false
		decision.Reason = fmt.Sprintf("일일 답글 생성 한도(%d개)를 초과했습니다.", quota.DailyReplyLimit)
	case quota.MonthlyReplyLimit > 0 && summary.ThisMonth.Requests >= quota.MonthlyReplyLimit:
		decision.Allowed = false
		decision.Reason = fmt.Sprintf("월간 답글 생성 한도(%d개)를 초과했습니다.", quota.MonthlyReplyLimit)
	case quota.MonthlyTokenLimit > 0 && summary.ThisMonth.Tokens >= quota.MonthlyTokenLimit:
		decision.Allowed = false
		decision.Reason = fmt.Sprintf("월간 토큰 사용 한도(%d)를 초과했습니다.", quota.MonthlyTokenLimit)
	}
	return decision
}

// Stats returns the user's usage, with quota when one is set.
func (t *Tracker) Stats(ctx context.Context, userID uuid.UUID) (*domain.QuotaDecision, error) {
	if t == nil || t.repo == nil {
		return &domain.QuotaDecision{Allowed: true, Usage: &domain.UsageSummary{}}, nil
	}
	summary, err := t.repo.GetUsage(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}
	quota, err := t.repo.GetQuota(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}
	return &domain.QuotaDecision{Allowed: true, Usage: summary, Quota: quota}, nil
}

// Costs returns the process-wide spend counters.
func (t *Tracker) Costs() llm.CostStats {
	if t == nil {
		return llm.CostStats{}
	}
	return t.costs.GetStats()
}
