package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bravo6co-debug/ai-riview/core/domain"
	"github.com/bravo6co-debug/ai-riview/core/port/out"
)

// HistoryAdapter implements out.HistoryRepository on reply_history.
// topics and keywords are jsonb arrays.
type HistoryAdapter struct {
	db *sqlx.DB
}

// NewHistoryAdapter creates a new HistoryAdapter.
func NewHistoryAdapter(db *sqlx.DB) *HistoryAdapter {
	return &HistoryAdapter{db: db}
}

var _ out.HistoryRepository = (*HistoryAdapter)(nil)

type replyHistoryRow struct {
	ID                uuid.UUID `db:"id"`
	UserID            uuid.UUID `db:"user_id"`
	ReviewContent     string    `db:"review_content"`
	GeneratedReply    string    `db:"generated_reply"`
	Sentiment         string    `db:"sentiment"`
	SentimentStrength float64   `db:"sentiment_strength"`
	Topics            []byte    `db:"topics"`
	Keywords          []byte    `db:"keywords"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r *replyHistoryRow) toEntity() *domain.ReplyHistory {
	sentiment, _ := domain.ParseSentiment(r.Sentiment)
	return &domain.ReplyHistory{
		ID:                r.ID,
		UserID:            r.UserID,
		ReviewContent:     r.ReviewContent,
		GeneratedReply:    r.GeneratedReply,
		Sentiment:         sentiment,
		SentimentStrength: r.SentimentStrength,
		Topics:            decodeStrings(r.Topics),
		Keywords:          decodeStrings(r.Keywords),
		CreatedAt:         r.CreatedAt,
	}
}

// Append inserts one reply.
func (a *HistoryAdapter) Append(ctx context.Context, record *domain.ReplyHistory) error {
	topics, err := json.Marshal(stringsOrEmpty(record.Topics))
	if err != nil {
		return fmt.Errorf("failed to encode topics: %w", err)
	}
	keywords, err := json.Marshal(stringsOrEmpty(record.Keywords))
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}

	id := record.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO reply_history (
			id, user_id, review_content, generated_reply,
			sentiment, sentiment_strength, topics, keywords, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9)`

	if _, err := a.db.ExecContext(ctx, query,
		id,
		record.UserID,
		record.ReviewContent,
		record.GeneratedReply,
		string(record.Sentiment),
		record.SentimentStrength,
		string(topics),
		string(keywords),
		createdAt,
	); err != nil {
		return fmt.Errorf("failed to insert reply history: %w", err)
	}
	return nil
}

// ListByUser returns the latest replies of a user, newest first.
func (a *HistoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ReplyHistory, error) {
	var rows []replyHistoryRow
	query := `
		SELECT id, user_id, review_content, generated_reply, sentiment,
			sentiment_strength, topics, keywords, created_at
		FROM reply_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if err := a.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list reply history: %w", err)
	}

	records := make([]*domain.ReplyHistory, len(rows))
	for i := range rows {
		records[i] = rows[i].toEntity()
	}
	return records, nil
}

// decodeStrings reads a jsonb string array; anything else yields empty.
func decodeStrings(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
