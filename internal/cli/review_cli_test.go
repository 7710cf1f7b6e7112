package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// isolate keeps tests off any local database, cache or model.
func isolate(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		"ENV":            "test",
		"DATABASE_URL":   "",
		"REDIS_URL":      "",
		"OPENAI_API_KEY": "",
		"LLM_PROVIDER":   "openai",
		"CACHE_BACKEND":  "memory",
	} {
		t.Setenv(key, value)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScoreCmd(t *testing.T) {
	out, err := execute(t, "score", "정말", "맛있어요", "최고")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var got struct {
		Quick struct {
			Sentiment string `json:"sentiment"`
		} `json:"quick"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Quick.Sentiment != "positive" {
		t.Errorf("sentiment = %s", got.Quick.Sentiment)
	}
}

func TestAnalyzeCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "analyze", "맛있어요")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, `"analysis_source": "rule-based"`) {
		t.Errorf("output = %s", out)
	}
}

func TestReplyCmd(t *testing.T) {
	isolate(t)
	out, err := execute(t, "reply", "--brand", "restaurant", "--tone", "warm", "맛있어요")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if !strings.Contains(out, `"model_used": "template"`) {
		t.Errorf("output = %s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing text", []string{"score"}},
		{"unknown tone", []string{"reply", "--tone", "sarcastic", "hi"}},
		{"bad user", []string{"reply", "--user", "nope", "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !isUsageError(err) {
				t.Errorf("err = %v, want usage error", err)
			}
		})
	}
}
