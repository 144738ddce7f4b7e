package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// pgxPool is the subset of *pgxpool.Pool used by PostgresStore.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sentiment_logs (
	id          BIGSERIAL PRIMARY KEY,
	text        TEXT NOT NULL,
	label       VARCHAR(32) NOT NULL,
	probability DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS sentiment_logs_created_at_idx ON sentiment_logs (created_at DESC, id DESC);
`

// PostgresStore stores the prediction log in PostgreSQL.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgresStore connects to dsn and ensures the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, entry *models.PredictionLog) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sentiment_logs (text, label, probability, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		entry.Text, entry.Label, entry.Probability, entry.CreatedAt).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("inserting prediction log: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]models.PredictionLog, error) {
	if limit <= 0 {
		return []models.PredictionLog{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, text, label, probability, created_at
		 FROM sentiment_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying prediction log: %w", err)
	}
	defer rows.Close()

	list := make([]models.PredictionLog, 0, limit)
	for rows.Next() {
		var e models.PredictionLog
		if err := rows.Scan(&e.ID, &e.Text, &e.Label, &e.Probability, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning prediction log: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating prediction log: %w", err)
	}
	return list, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
