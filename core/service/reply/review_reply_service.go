package reply

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service runs quota check, analysis, drafting and history in order.
type Service struct {
	analyzer  in.SentimentService
	generator *Generator
	history   out.HistoryRepository
	usage     *usage.Tracker

	defaultBrand string
	log          *logger.Logger
}

// NewService creates the reply service. history and tracker may be nil.
func NewService(
	analyzer in.SentimentService,
	generator *Generator,
	history out.HistoryRepository,
	tracker *usage.Tracker,
	defaultBrand string,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Default()
	}
	if defaultBrand == "" {
		defaultBrand = DefaultBrandContext
	}
	return &Service{
		analyzer:     analyzer,
		generator:    generator,
		history:      history,
		usage:        tracker,
		defaultBrand: defaultBrand,
		log:          log.WithField("component", "reply_service"),
	}
}

var _ in.ReplyService = (*Service)(nil)

// GenerateReply analyzes content and drafts a reply.
func (s *Service) GenerateReply(ctx context.Context, content string, opts *in.ReplyOptions) (*in.ReplyResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.ValidationFailed("review content is empty")
	}
	if opts == nil {
		opts = &in.ReplyOptions{}
	}

	if opts.UserID != uuid.Nil {
		decision := s.usage.CheckQuota(ctx, opts.UserID)
		if !decision.Allowed {
			return nil, apperr.QuotaExceeded(decision.Reason)
		}
		ctx = usage.WithUser(ctx, opts.UserID)
	}

	analysis, err := s.analyzer.Analyze(ctx, content)
	if err != nil {
		return nil, err
	}

	brand := Brand{Context: opts.BrandContext, Tone: opts.BrandTone}
	if strings.TrimSpace(brand.Context) == "" {
		brand.Context = s.defaultBrand
	}

	start := time.Now()
	draft := s.generator.Generate(ctx, content, analysis, brand)
	generationMs := time.Since(start).Milliseconds()

	if opts.SaveHistory && opts.UserID != uuid.Nil {
		s.saveHistory(ctx, opts.UserID, content, draft, analysis)
	}

	s.log.WithContext(ctx).WithFields(map[string]any{
		"sentiment":       string(analysis.Sentiment),
		"analysis_source": string(analysis.AnalysisSource),
		"model_used":      draft.ModelUsed,
		"tokens_used":     draft.TokensUsed,
	}).Debug("reply generated")

	return &in.ReplyResult{
		Success:               true,
		Reply:                 draft.Reply,
		Sentiment:             analysis.Sentiment,
		SentimentStrength:     analysis.SentimentStrength,
		Topics:                nonNil(analysis.Topics),
		Keywords:              nonNil(analysis.Keywords),
		Intent:                analysis.Intent,
		AnalysisTimeMs:        analysis.ElapsedMs(),
		AnalysisSource:        analysis.AnalysisSource,
		ModelUsed:             draft.ModelUsed,
		TokensUsed:            draft.TokensUsed,
		ReplyGenerationTimeMs: generationMs,
	}, nil
}

// saveHistory is best-effort; the reply is returned even if it fails.
func (s *Service) saveHistory(ctx context.Context, userID uuid.UUID, content string, draft ReplyDraft, analysis *domain.AnalysisResult) {
	if s.history == nil {
		return
	}
	record := &domain.ReplyHistory{
		ID:                uuid.New(),
		UserID:            userID,
		ReviewContent:     content,
		GeneratedReply:    draft.Reply,
		Sentiment:         analysis.Sentiment,
		SentimentStrength: analysis.SentimentStrength,
		Topics:            nonNil(analysis.Topics),
		Keywords:          nonNil(analysis.Keywords),
		CreatedAt:         time.Now(),
	}
	if err := s.history.Append(ctx, record); err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("user_id", userID.String()).Warn("failed to save reply history")
	}
}

// History lists the user's most recent replies, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReplyHistory, error) {
	if s.history == nil {
		return []*domain.ReplyHistory{}, nil
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	records, err := s.history.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list reply history", err)
	}
	return records, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
