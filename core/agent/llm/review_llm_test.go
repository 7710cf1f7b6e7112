package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bravo6co-debug/ai-riview/core/port/out"
	"github.com/bravo6co-debug/ai-riview/pkg/apperr"
	"github.com/bravo6co-debug/ai-riview/pkg/logger"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSONResponse(tt.in); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"prose around object", `분석 결과입니다: {"sentiment":"positive"} 감사합니다`, `{"sentiment":"positive"}`},
		{"nested", `{"a":{"b":[1,2]}}`, `{"a":{"b":[1,2]}}`},
		{"no json", "no braces here", "no braces here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestCalculateCost(t *testing.T) {
	got := CalculateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("gpt-4o-mini cost = %f, want 0.75", got)
	}
	if unknown := CalculateCost("some-new-model", 1_000_000, 0); math.Abs(unknown-0.15) > 1e-9 {
		t.Errorf("unknown model cost = %f, want gpt-4o-mini input price", unknown)
	}
}

func TestCostTracker(t *testing.T) {
	tr := NewCostTracker()
	tr.Track("gpt-4o-mini", 100, 50)
	tr.Track("gpt-4o-mini", 200, 50)

	stats := tr.GetStats()
	if stats.RequestCount != 2 || stats.TotalTokens != 400 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ModelUsage["gpt-4o-mini"] != 400 {
		t.Errorf("model usage = %v", stats.ModelUsage)
	}
}

type failingClient struct {
	calls int
	err   error
}

func (f *failingClient) Model() string { return "fake" }

func (f *failingClient) Complete(ctx context.Context, req *out.CompletionRequest) (*out.Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &out.Completion{Content: "{}", Model: "fake"}, nil
}

func TestBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	next := &failingClient{err: errors.New("503 from provider")}
	cfg := DefaultBreakerConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Minute
	b := NewBreakerClient(next, cfg, logger.Nop())

	for i := 0; i < 2; i++ {
		if _, err := b.Complete(context.Background(), &out.CompletionRequest{}); err == nil {
			t.Fatal("expected provider error")
		}
	}

	_, err := b.Complete(context.Background(), &out.CompletionRequest{})
	if !errors.Is(err, out.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable once open, got %v", err)
	}
	if next.calls != 2 {
		t.Errorf("open breaker should not call provider, calls = %d", next.calls)
	}
	if b.State() != "open" {
		t.Errorf("State() = %s", b.State())
	}
}

func TestBreakerClient_PassesThrough(t *testing.T) {
	b := NewBreakerClient(&failingClient{}, DefaultBreakerConfig("test"), logger.Nop())
	c, err := b.Complete(context.Background(), &out.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Model != "fake" || b.Model() != "fake" {
		t.Errorf("model = %s", c.Model)
	}
}

func TestClient_ProviderErrorIsExternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := NewClientWithConfig(ClientConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := client.Complete(context.Background(), &out.CompletionRequest{System: "s", User: "u"})
	if !apperr.IsCode(err, apperr.CodeExternalError) {
		t.Fatalf("err = %v, want EXTERNAL_ERROR", err)
	}
	if appErr := apperr.AsAppError(err); appErr.Details["service"] != "openai" {
		t.Errorf("details = %v", appErr.Details)
	}
}
