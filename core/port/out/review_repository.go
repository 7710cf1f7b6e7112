package out

import (
	"context"

	"github.com/bravo6co-debug/ai-riview/core/domain"

	"github.com/google/uuid"
)

// HistoryRepository stores generated replies.
type HistoryRepository interface {
	Append(ctx context.Context, record *domain.ReplyHistory) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReplyHistory, error)
}

// UsageRepository stores model usage and per-user quotas.
type UsageRepository interface {
	LogUsage(ctx context.Context, log *domain.UsageLog) error
	// GetQuota returns (nil, nil) when the user has no quota row.
	GetQuota(ctx context.Context, userID uuid.UUID) (*domain.UsageQuota, error)
	GetUsage(ctx context.Context, userID uuid.UUID) (*domain.UsageSummary, error)
}
