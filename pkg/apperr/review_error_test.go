package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsAppError(t *testing.T) {
	cause := errors.New("pool closed")
	wrapped := fmt.Errorf("lookup: %w", DatabaseError("cache hit", cause))

	appErr := AsAppError(wrapped)
	if appErr.Code != CodeDatabaseError {
		t.Errorf("Code = %s, want %s", appErr.Code, CodeDatabaseError)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}

	plain := AsAppError(errors.New("x"))
	if plain.Code != CodeInternalError || plain.Status != http.StatusInternalServerError {
		t.Errorf("plain error mapped to %s/%d", plain.Code, plain.Status)
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ValidationFailed("empty"), http.StatusBadRequest},
		{"quota", QuotaExceeded("daily limit"), http.StatusTooManyRequests},
		{"analysis", AnalysisFailed(errors.New("panic")), http.StatusInternalServerError},
		{"timeout", Timeout("llm"), http.StatusGatewayTimeout},
		{"external", ExternalError("openai", errors.New("500")), http.StatusBadGateway},
		{"cache", CacheError("stats", errors.New("down")), http.StatusServiceUnavailable},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ValidationFailed("review content is empty"))
	if !IsCode(err, CodeValidationFailed) {
		t.Error("expected VALIDATION_FAILED")
	}
	if IsCode(err, CodeQuotaExceeded) {
		t.Error("unexpected QUOTA_EXCEEDED")
	}
}

func TestAnalysisFailed_HidesCause(t *testing.T) {
	err := AnalysisFailed(errors.New("index out of range"))
	if err.Message != "review analysis failed" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWithDetail(t *testing.T) {
	err := ValidationFailed("too many reviews").WithDetail("max_items", 50)
	if err.Details["max_items"] != 50 {
		t.Errorf("Details = %v", err.Details)
	}

	ext := ExternalError("anthropic", context.Canceled)
	if !errors.Is(ext, context.Canceled) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}
