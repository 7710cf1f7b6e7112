package reply

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

type fakeModel struct {
	mu      sync.Mutex
	content string
	err     error
	calls   int
	lastReq *out.CompletionRequest
}

func (m *fakeModel) Model() string { return "gpt-4o-mini" }

func (m *fakeModel) Complete(ctx context.Context, req *out.CompletionRequest) (*out.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &out.Completion{Content: m.content, Model: "gpt-4o-mini", PromptTokens: 200, CompletionTokens: 80}, nil
}

type fakeAnalyzer struct {
	result *domain.AnalysisResult
	err    error
	calls  int
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, content string) (*domain.AnalysisResult, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.result.Clone(), nil
}

func (a *fakeAnalyzer) AnalyzeBatch(ctx context.Context, contents []string) []in.BatchItem {
	return nil
}

type fakeHistory struct {
	mu      sync.Mutex
	records []*domain.ReplyHistory
	err     error
}

func (h *fakeHistory) Append(ctx context.Context, record *domain.ReplyHistory) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.records = append(h.records, record)
	return nil
}

func (h *fakeHistory) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReplyHistory, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	var out []*domain.ReplyHistory
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		if h.records[i].UserID == userID {
			out = append(out, h.records[i])
		}
	}
	return out, nil
}

type fakeUsageRepo struct {
	mu    sync.Mutex
	logs  []*domain.UsageLog
	quota *domain.UsageQuota
	usage *domain.UsageSummary
}

func (r *fakeUsageRepo) LogUsage(ctx context.Context, l *domain.UsageLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeUsageRepo) GetQuota(ctx context.Context, userID uuid.UUID) (*domain.UsageQuota, error) {
	return r.quota, nil
}

func (r *fakeUsageRepo) GetUsage(ctx context.Context, userID uuid.UUID) (*domain.UsageSummary, error) {
	if r.usage == nil {
		return &domain.UsageSummary{}, nil
	}
	return r.usage, nil
}

var errProvider = errors.New("provider returned 500")

func positiveAnalysis() *domain.AnalysisResult {
	elapsed := int64(3)
	return &domain.AnalysisResult{
		Success:           true,
		Sentiment:         domain.SentimentPositive,
		SentimentStrength: 0.95,
		Topics:            []string{"맛/품질", "서비스"},
		Keywords:          []string{"맛있", "친절"},
		Intent:            domain.IntentPraise,
		ReplyFocus:        []string{"구체적인 칭찬 포인트 감사", "지속적인 품질 약속"},
		ReplyAvoid:        []string{"형식적인 답변", "과도한 마케팅"},
		AnalysisDepth:     domain.DepthQuick,
		AnalysisSource:    domain.SourceRuleBased,
		ModelUsed:         domain.ModelNone,
		AnalysisTimeMs:    &elapsed,
	}
}
