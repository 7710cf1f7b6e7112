package usage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"

	"github.com/google/uuid"
)

type fakeUsageRepo struct {
	quota    *domain.UsageQuota
	quotaErr error
	usage    *domain.UsageSummary
	usageErr error
	logs     []*domain.UsageLog
}

func (f *fakeUsageRepo) LogUsage(ctx context.Context, l *domain.UsageLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeUsageRepo) GetQuota(ctx context.Context, userID uuid.UUID) (*domain.UsageQuota, error) {
	return f.quota, f.quotaErr
}

func (f *fakeUsageRepo) GetUsage(ctx context.Context, userID uuid.UUID) (*domain.UsageSummary, error) {
	return f.usage, f.usageErr
}

func TestTracker_CheckQuota(t *testing.T) {
	user := uuid.New()
	tests := []struct {
		name        string
		repo        *fakeUsageRepo
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "no quota row",
			repo:        &fakeUsageRepo{},
			wantAllowed: true,
		},
		{
			name:        "quota lookup error fails open",
			repo:        &fakeUsageRepo{quotaErr: errors.New("db down")},
			wantAllowed: true,
		},
		{
			name: "usage lookup error fails open",
			repo: &fakeUsageRepo{
				quota:    &domain.UsageQuota{DailyReplyLimit: 1},
				usageErr: errors.New("db down"),
			},
			wantAllowed: true,
		},
		{
			name: "daily limit reached",
			repo: &fakeUsageRepo{
				quota: &domain.UsageQuota{DailyReplyLimit: 10, MonthlyReplyLimit: 100},
				usage: &domain.UsageSummary{Today: domain.UsagePeriod{Requests: 10}},
			},
			wantAllowed: false,
			wantReason:  "일일",
		},
		{
			name: "monthly reply limit reached",
			repo: &fakeUsageRepo{
				quota: &domain.UsageQuota{DailyReplyLimit: 10, MonthlyReplyLimit: 100},
				usage: &domain.UsageSummary{Today: domain.UsagePeriod{Requests: 1}, ThisMonth: domain.UsagePeriod{Requests: 100}},
			},
			wantAllowed: false,
			wantReason:  "월간 답글",
		},
		{
			name: "monthly token limit reached",
			repo: &fakeUsageRepo{
				quota: &domain.UsageQuota{MonthlyTokenLimit: 5000},
				usage: &domain.UsageSummary{ThisMonth: domain.UsagePeriod{Tokens: 5000}},
			},
			wantAllowed: false,
			wantReason:  "토큰",
		},
		{
			name: "zero limits are unlimited",
			repo: &fakeUsageRepo{
				quota: &domain.UsageQuota{},
				usage: &domain.UsageSummary{Today: domain.UsagePeriod{Requests: 999}},
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(tt.repo, logger.Nop())
			got := tr.CheckQuota(context.Background(), user)
			if got.Allowed != tt.wantAllowed {
				t.Fatalf("Allowed = %v, want %v (%s)", got.Allowed, tt.wantAllowed, got.Reason)
			}
			if tt.wantReason != "" && !strings.Contains(got.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to mention %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestTracker_Record(t *testing.T) {
	repo := &fakeUsageRepo{}
	tr := NewTracker(repo, logger.Nop())
	completion := &out.Completion{Model: "gpt-4o-mini", PromptTokens: 1000, CompletionTokens: 200}

	// anonymous: cost tracked, nothing persisted
	tr.Record(context.Background(), Call{APIType: domain.UsageReply, Completion: completion})
	if len(repo.logs) != 0 {
		t.Fatalf("anonymous call persisted %d logs", len(repo.logs))
	}

	user := uuid.New()
	tr.Record(WithUser(context.Background(), user), Call{
		APIType:    domain.UsageReply,
		Endpoint:   "/api/v1/reply/generate",
		Completion: completion,
	})
	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(repo.logs))
	}
	got := repo.logs[0]
	if got.UserID != user || got.TotalTokens != 1200 || !got.Success {
		t.Errorf("log = %+v", got)
	}
	if got.EstimatedCost <= 0 {
		t.Errorf("EstimatedCost = %f", got.EstimatedCost)
	}
	if tr.Costs().RequestCount != 2 {
		t.Errorf("cost tracker requests = %d", tr.Costs().RequestCount)
	}
}

func TestTracker_NilSafe(t *testing.T) {
	var tr *Tracker
	tr.Record(context.Background(), Call{})
	if !tr.CheckQuota(context.Background(), uuid.New()).Allowed {
		t.Error("nil tracker must allow")
	}
}
