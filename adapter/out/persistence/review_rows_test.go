package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/bravo6co-debug/ai-riview/core/domain"
)

func TestSentimentCacheRow_ToEntity(t *testing.T) {
	used := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		row  sentimentCacheRow
		want func(t *testing.T, e *domain.CacheEntry)
	}{
		{
			name: "full row",
			row: sentimentCacheRow{
				ContentHash:       "abc",
				Sentiment:         "negative",
				SentimentStrength: sql.NullFloat64{Float64: 0.9, Valid: true},
				Topics:            pq.StringArray{"서비스"},
				Keywords:          pq.StringArray{"불친절"},
				Intent:            sql.NullString{String: "불만", Valid: true},
				AnalysisDepth:     sql.NullString{String: "deep", Valid: true},
				AnalysisModel:     sql.NullString{String: "gpt-4o-mini", Valid: true},
				HitCount:          4,
				LastUsedAt:        sql.NullTime{Time: used, Valid: true},
			},
			want: func(t *testing.T, e *domain.CacheEntry) {
				r := e.Result
				if r.Sentiment != domain.SentimentNegative || r.SentimentStrength != 0.9 || r.Intent != domain.IntentComplaint {
					t.Errorf("result = %+v", r)
				}
				if e.HitCount != 4 || !e.LastUsedAt.Equal(used) || r.ModelUsed != "gpt-4o-mini" {
					t.Errorf("entry = %+v", e)
				}
			},
		},
		{
			name: "nulls take defaults",
			row:  sentimentCacheRow{ContentHash: "def", Sentiment: "weird"},
			want: func(t *testing.T, e *domain.CacheEntry) {
				r := e.Result
				if r.Sentiment != domain.SentimentNeutral || r.SentimentStrength != 0.5 || r.Intent != domain.IntentGeneral {
					t.Errorf("result = %+v", r)
				}
				if r.Topics == nil || r.Keywords == nil || r.ReplyFocus == nil || r.ReplyAvoid == nil {
					t.Error("arrays must be non-nil")
				}
				if !e.LastUsedAt.IsZero() {
					t.Errorf("LastUsedAt = %v", e.LastUsedAt)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, tt.row.toEntity())
		})
	}
}

func TestDecodeStrings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"array", `["맛/품질","서비스"]`, 2},
		{"empty", ``, 0},
		{"not an array", `{"a":1}`, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeStrings([]byte(tt.raw))
			if got == nil || len(got) != tt.want {
				t.Errorf("decodeStrings(%q) = %v", tt.raw, got)
			}
		})
	}
}
