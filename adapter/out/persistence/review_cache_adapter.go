// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

// =============================================================================
// Sentiment Cache Adapter (PostgreSQL)
// =============================================================================

// SentimentCacheAdapter implements out.FingerprintStore on the
// sentiment_analysis_cache table.
type SentimentCacheAdapter struct {
	db *sqlx.DB
}

// NewSentimentCacheAdapter creates a new SentimentCacheAdapter.
func NewSentimentCacheAdapter(db *sqlx.DB) *SentimentCacheAdapter {
	return &SentimentCacheAdapter{db: db}
}

var _ out.FingerprintStore = (*SentimentCacheAdapter)(nil)

type sentimentCacheRow struct {
	ContentHash       string          `db:"content_hash"`
	ContentPreview    string          `db:"content_preview"`
	Sentiment         string          `db:"sentiment"`
	SentimentStrength sql.NullFloat64 `db:"sentiment_strength"`
	Topics            pq.StringArray  `db:"topics"`
	Keywords          pq.StringArray  `db:"keywords"`
	Intent            sql.NullString  `db:"intent"`
	ReplyFocus        pq.StringArray  `db:"reply_focus"`
	ReplyAvoid        pq.StringArray  `db:"reply_avoid"`
	Summary           sql.NullString  `db:"summary"`
	AnalysisDepth     sql.NullString  `db:"analysis_depth"`
	AnalysisModel     sql.NullString  `db:"analysis_model"`
	HitCount          int64           `db:"hit_count"`
	LastUsedAt        sql.NullTime    `db:"last_used_at"`
	CreatedAt         time.Time       `db:"created_at"`
}

const sentimentCacheColumns = `content_hash, content_preview, sentiment, sentiment_strength,
	topics, keywords, intent, reply_focus, reply_avoid, summary,
	analysis_depth, analysis_model, hit_count, last_used_at, created_at`

func (r *sentimentCacheRow) toEntity() *domain.CacheEntry {
	sentiment, _ := domain.ParseSentiment(r.Sentiment)
	strength := 0.5
	if r.SentimentStrength.Valid {
		strength = r.SentimentStrength.Float64
	}

	entry := &domain.CacheEntry{
		ContentHash:    r.ContentHash,
		ContentPreview: r.ContentPreview,
		Result: domain.AnalysisResult{
			Success:           true,
			Sentiment:         sentiment,
			SentimentStrength: strength,
			Topics:            stringsOrEmpty(r.Topics),
			Keywords:          stringsOrEmpty(r.Keywords),
			Intent:            domain.ParseIntent(r.Intent.String),
			ReplyFocus:        stringsOrEmpty(r.ReplyFocus),
			ReplyAvoid:        stringsOrEmpty(r.ReplyAvoid),
			Summary:           r.Summary.String,
			AnalysisDepth:     domain.AnalysisDepth(r.AnalysisDepth.String),
			ModelUsed:         r.AnalysisModel.String,
		},
		HitCount:  r.HitCount,
		CreatedAt: r.CreatedAt,
	}
	if r.LastUsedAt.Valid {
		entry.LastUsedAt = r.LastUsedAt.Time
	}
	return entry
}

// Hit bumps hit_count and last_used_at in one statement and returns the row.
func (a *SentimentCacheAdapter) Hit(ctx context.Context, hash string) (*domain.CacheEntry, error) {
	var row sentimentCacheRow
	query := `
		UPDATE sentiment_analysis_cache
		SET hit_count = hit_count + 1, last_used_at = NOW()
		WHERE content_hash = $1
		RETURNING ` + sentimentCacheColumns

	if err := a.db.GetContext(ctx, &row, query, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to hit sentiment cache: %w", err)
	}

	return row.toEntity(), nil
}

// Upsert replaces the row for entry.ContentHash; last write wins.
func (a *SentimentCacheAdapter) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	query := `
		INSERT INTO sentiment_analysis_cache (
			content_hash, content_preview, sentiment, sentiment_strength,
			topics, keywords, intent, reply_focus, reply_avoid, summary,
			analysis_depth, analysis_model, hit_count, last_used_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, $13, $14)
		ON CONFLICT (content_hash) DO UPDATE SET
			content_preview = EXCLUDED.content_preview,
			sentiment = EXCLUDED.sentiment,
			sentiment_strength = EXCLUDED.sentiment_strength,
			topics = EXCLUDED.topics,
			keywords = EXCLUDED.keywords,
			intent = EXCLUDED.intent,
			reply_focus = EXCLUDED.reply_focus,
			reply_avoid = EXCLUDED.reply_avoid,
			summary = EXCLUDED.summary,
			analysis_depth = EXCLUDED.analysis_depth,
			analysis_model = EXCLUDED.analysis_model,
			hit_count = 0,
			last_used_at = EXCLUDED.last_used_at`

	r := entry.Result
	_, err := a.db.ExecContext(ctx, query,
		entry.ContentHash,
		entry.ContentPreview,
		string(r.Sentiment),
		r.SentimentStrength,
		pq.Array(stringsOrEmpty(r.Topics)),
		pq.Array(stringsOrEmpty(r.Keywords)),
		string(r.Intent),
		pq.Array(stringsOrEmpty(r.ReplyFocus)),
		pq.Array(stringsOrEmpty(r.ReplyAvoid)),
		r.Summary,
		string(r.AnalysisDepth),
		r.ModelUsed,
		entry.LastUsedAt,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sentiment cache: %w", err)
	}
	return nil
}

// Stats returns row count and total hits for the health endpoint.
func (a *SentimentCacheAdapter) Stats(ctx context.Context) (entries int64, hits int64, err error) {
	query := `SELECT COUNT(*), COALESCE(SUM(hit_count), 0)::bigint FROM sentiment_analysis_cache`
	if err := a.db.QueryRowxContext(ctx, query).Scan(&entries, &hits); err != nil {
		return 0, 0, fmt.Errorf("failed to get sentiment cache stats: %w", err)
	}
	return entries, hits, nil
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
