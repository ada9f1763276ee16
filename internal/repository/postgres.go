package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/set-night/chatfeedback/internal/domain"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) AppendTurn(ctx context.Context, chatID string, turn domain.Turn) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_turns (chat_id, role, text, created_at) VALUES ($1, $2, $3, $4)`,
		chatID, string(turn.Role), turn.Text, turn.Timestamp)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

func (s *PostgresStore) Turns(ctx context.Context, chatID string) ([]domain.Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, text, created_at FROM chat_turns WHERE chat_id = $1 ORDER BY id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	turns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Turn, error) {
		var (
			t    domain.Turn
			role string
		)
		err := row.Scan(&role, &t.Text, &t.Timestamp)
		t.Role = domain.Role(role)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan turns: %w", err)
	}
	return turns, nil
}

func (s *PostgresStore) AppendFeedback(ctx context.Context, rec domain.FeedbackRecord) error {
	var rating *int16
	if rec.Rating.Valid() {
		r := int16(rec.Rating)
		rating = &r
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chat_feedback (chat_id, review, rating, source, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ChatID, rec.Review, rating, string(rec.Source), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PostgresStore) Feedback(ctx context.Context, chatID string) ([]domain.FeedbackRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT review, rating, source, created_at FROM chat_feedback WHERE chat_id = $1 ORDER BY id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.FeedbackRecord, error) {
		var (
			review    string
			rating    *int16
			source    string
			createdAt time.Time
		)
		if err := row.Scan(&review, &rating, &source, &createdAt); err != nil {
			return domain.FeedbackRecord{}, err
		}
		rec := domain.FeedbackRecord{
			ChatID:    chatID,
			Review:    review,
			Source:    domain.FeedbackSource(source),
			CreatedAt: createdAt,
		}
		if rating != nil {
			rec.Rating = domain.Rating(*rating)
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
