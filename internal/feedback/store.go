package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID        uuid.UUID
	UserID    string
	Email     string
	Message   string
	Rating    int
	RequestID string
	CreatedAt time.Time
}

type Store interface {
	Insert(ctx context.Context, e Entry) error
}

// PGStore writes feedback rows to Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const insertFeedback = `INSERT INTO feedback (id, user_id, email, message, rating, request_id, created_at)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, NULLIF($6, ''), $7)`

func (s *PGStore) Insert(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, insertFeedback,
		e.ID, e.UserID, e.Email, e.Message, e.Rating, e.RequestID, e.CreatedAt)
	return err
}
