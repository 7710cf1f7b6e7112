package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

// BreakerClient wraps a ModelClient with a circuit breaker so a failing
// provider costs nothing while open. Open-state errors wrap
// out.ErrModelUnavailable.
type BreakerClient struct {
	next out.ModelClient
	cb   *gobreaker.CircuitBreaker
}

// BreakerConfig circuit breaker tuning.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32        // half-open probes
	Interval            time.Duration // closed-state counter reset
	Timeout             time.Duration // open -> half-open
	ConsecutiveFailures uint32
	FailureRatio        float64
	MinRequests         uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		FailureRatio:        0.6,
		MinRequests:         10,
	}
}

func NewBreakerClient(next out.ModelClient, cfg BreakerConfig, log *logger.Logger) *BreakerClient {
	if log == nil {
		log = logger.Default()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(counts.Requests >= cfg.MinRequests && failureRatio >= cfg.FailureRatio)
		},
		// caller cancellation is not a provider failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("model circuit breaker state changed")
		},
	}
	return &BreakerClient{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *BreakerClient) Model() string {
	return b.next.Model()
}

func (b *BreakerClient) Complete(ctx context.Context, req *out.CompletionRequest) (*out.Completion, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Join(out.ErrModelUnavailable, err)
		}
		return nil, err
	}
	return res.(*out.Completion), nil
}

// State reports the breaker state for health output.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}
