package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

// =============================================================================
// Usage Adapter (pgx)
// =============================================================================

// UsageAdapter implements out.UsageRepository on api_usage_logs and
// usage_quotas.
type UsageAdapter struct {
	pool *pgxpool.Pool
}

// NewUsageAdapter creates a new UsageAdapter.
func NewUsageAdapter(pool *pgxpool.Pool) *UsageAdapter {
	return &UsageAdapter{pool: pool}
}

var _ out.UsageRepository = (*UsageAdapter)(nil)

// LogUsage inserts one model call.
func (a *UsageAdapter) LogUsage(ctx context.Context, l *domain.UsageLog) error {
	query := `
		INSERT INTO api_usage_logs (
			user_id, api_type, endpoint, model_used,
			prompt_tokens, completion_tokens, total_tokens, estimated_cost,
			success, error_message, execution_time_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)`

	_, err := a.pool.Exec(ctx, query,
		l.UserID,
		string(l.APIType),
		l.Endpoint,
		l.Model,
		l.PromptTokens,
		l.CompletionTokens,
		l.TotalTokens,
		l.EstimatedCost,
		l.Success,
		l.ErrorMessage,
		l.ExecutionTimeMs,
		l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert api usage log: %w", err)
	}
	return nil
}

// GetQuota returns (nil, nil) when the user has no quota row. NULL limits
// read as zero, which means unlimited.
func (a *UsageAdapter) GetQuota(ctx context.Context, userID uuid.UUID) (*domain.UsageQuota, error) {
	query := `
		SELECT user_id,
			COALESCE(daily_reply_limit, 0),
			COALESCE(monthly_reply_limit, 0),
			COALESCE(monthly_token_limit, 0)::bigint
		FROM usage_quotas
		WHERE user_id = $1`

	var q domain.UsageQuota
	err := a.pool.QueryRow(ctx, query, userID).Scan(
		&q.UserID,
		&q.DailyReplyLimit,
		&q.MonthlyReplyLimit,
		&q.MonthlyTokenLimit,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage quota: %w", err)
	}
	return &q, nil
}

// GetUsage aggregates today's and this month's usage. Requests count reply
// generations only; tokens and cost include every billed call.
func (a *UsageAdapter) GetUsage(ctx context.Context, userID uuid.UUID) (*domain.UsageSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE api_type = $2 AND created_at >= date_trunc('day', NOW())),
			COALESCE(SUM(total_tokens) FILTER (WHERE created_at >= date_trunc('day', NOW())), 0)::bigint,
			COALESCE(SUM(estimated_cost) FILTER (WHERE created_at >= date_trunc('day', NOW())), 0)::float8,
			COUNT(*) FILTER (WHERE api_type = $2),
			COALESCE(SUM(total_tokens), 0)::bigint,
			COALESCE(SUM(estimated_cost), 0)::float8
		FROM api_usage_logs
		WHERE user_id = $1 AND created_at >= date_trunc('month', NOW())`

	var s domain.UsageSummary
	err := a.pool.QueryRow(ctx, query, userID, string(domain.UsageReply)).Scan(
		&s.Today.Requests,
		&s.Today.Tokens,
		&s.Today.Cost,
		&s.ThisMonth.Requests,
		&s.ThisMonth.Tokens,
		&s.ThisMonth.Cost,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate api usage: %w", err)
	}
	return &s, nil
}
