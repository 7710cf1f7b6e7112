package sentiment

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/in"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/core/service/usage"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
	"github.com/bravo6co-debug/ai-riview/pkg/metrics"
)

// =============================================================================
// Analyzer (orchestration)
// =============================================================================

// Analyzer runs the hybrid pipeline:
//
//	cache → quick score + topics → escalation → deep | local → cache store
type Analyzer struct {
	config *AnalyzerConfig

	cache     *FingerprintCache
	scorer    *QuickScorer
	extractor *TopicExtractor
	deep      *DeepAnalyzer

	inflight singleflight.Group
	metrics  *metrics.AnalysisMetrics
	latency  *metrics.LatencyRegistry
	log      *logger.Logger
}

// AnalyzerConfig pipeline tuning.
type AnalyzerConfig struct {
	Escalation       EscalationPolicy
	ModelTimeout     time.Duration // deep analysis call; exceeded means fallback
	StoreTimeout     time.Duration // background cache write
	BatchConcurrency int
}

// DefaultAnalyzerConfig returns production defaults.
func DefaultAnalyzerConfig() *AnalyzerConfig {
	return &AnalyzerConfig{
		Escalation:       DefaultEscalationPolicy(),
		ModelTimeout:     20 * time.Second,
		StoreTimeout:     5 * time.Second,
		BatchConcurrency: 4,
	}
}

// AnalyzerDeps collaborators. Every field is optional.
type AnalyzerDeps struct {
	Store   out.FingerprintStore
	Model   out.ModelClient
	Usage   *usage.Tracker
	Metrics *metrics.AnalysisMetrics
	Latency *metrics.LatencyRegistry
	Logger  *logger.Logger
}

// NewAnalyzer creates the pipeline.
func NewAnalyzer(deps *AnalyzerDeps, config *AnalyzerConfig) *Analyzer {
	if deps == nil {
		deps = &AnalyzerDeps{}
	}
	if config == nil {
		config = DefaultAnalyzerConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.Default()
	}
	latency := deps.Latency
	if latency == nil {
		latency = metrics.GlobalRegistry()
	}

	return &Analyzer{
		config:    config,
		cache:     NewFingerprintCache(deps.Store, config.StoreTimeout, deps.Metrics, log),
		scorer:    NewQuickScorer(),
		extractor: NewTopicExtractor(),
		deep:      NewDeepAnalyzer(deps.Model, config.ModelTimeout, deps.Usage, log),
		metrics:   deps.Metrics,
		latency:   latency,
		log:       log.WithField("component", "analyzer"),
	}
}

// Analyze returns the best available analysis of content. It fails only
// for empty input or an unexpected internal error.
func (a *Analyzer) Analyze(ctx context.Context, content string) (result *domain.AnalysisResult, err error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.ValidationFailed("review content is empty")
	}

	defer func() {
		if r := recover(); r != nil {
			a.log.WithContext(ctx).WithField("stack", string(debug.Stack())).Error("analysis panicked: %v", r)
			result = nil
			err = apperr.AnalysisFailed(fmt.Errorf("panic: %v", r))
		}
	}()

	start := time.Now()

	if cached, ok := a.cache.Lookup(ctx, content); ok {
		a.observe(cached, time.Since(start))
		return cached, nil
	}

	// concurrent misses on the same text share one computation, so it must
	// not inherit the first caller's cancellation. ModelTimeout still bounds it.
	shareCtx := context.WithoutCancel(ctx)
	v, err, shared := a.inflight.Do(Fingerprint(content), func() (interface{}, error) {
		return a.compute(shareCtx, content, start), nil
	})
	if err != nil {
		return nil, apperr.AnalysisFailed(err)
	}

	result = v.(*domain.AnalysisResult)
	if shared {
		result = result.Clone()
	}
	return result, nil
}

func (a *Analyzer) compute(ctx context.Context, content string, start time.Time) *domain.AnalysisResult {
	quick := a.scorer.Score(content)
	topics := a.extractor.Extract(content)

	var result *domain.AnalysisResult
	if reason := a.config.Escalation.Reason(quick, topics, content); reason != ReasonNone {
		a.metrics.Escalation(string(reason))
		outcome := a.deep.Analyze(ctx, content, quick, topics)
		if outcome.Kind == OutcomeFallback {
			a.metrics.DeepFallback()
		}
		if outcome.Completion != nil {
			a.metrics.Tokens(outcome.Completion.Model, outcome.Completion.PromptTokens, outcome.Completion.CompletionTokens)
		}
		a.log.WithContext(ctx).WithFields(map[string]any{
			"reason":  string(reason),
			"outcome": outcome.Kind.String(),
		}).Debug("review escalated")
		result = outcome.Analysis
	} else {
		result = Compose(quick, topics)
	}

	elapsed := time.Since(start)
	ms := elapsed.Milliseconds()
	result.AnalysisTimeMs = &ms

	a.cache.Store(ctx, content, result)
	a.observe(result, elapsed)
	return result
}

func (a *Analyzer) observe(result *domain.AnalysisResult, elapsed time.Duration) {
	a.metrics.ObserveAnalysis(string(result.AnalysisDepth), string(result.AnalysisSource), elapsed)
	a.latency.Record("analysis:"+string(result.AnalysisDepth), elapsed)
}

// AnalyzeBatch analyzes contents with bounded concurrency. Items keep input
// order and fail independently.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, contents []string) []in.BatchItem {
	items := make([]in.BatchItem, len(contents))

	g, gctx := errgroup.WithContext(ctx)
	limit := a.config.BatchConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, content := range contents {
		g.Go(func() error {
			res, err := a.Analyze(gctx, content)
			items[i] = in.BatchItem{Index: i, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return items
}

// Score exposes the quick scorer alone.
func (a *Analyzer) Score(content string) domain.QuickScore {
	return a.scorer.Score(content)
}

// Topics exposes the topic extractor alone.
func (a *Analyzer) Topics(content string) domain.TopicExtraction {
	return a.extractor.Extract(content)
}

// Drain waits for background cache writes. Call before shutdown.
func (a *Analyzer) Drain() {
	a.cache.Drain()
}
