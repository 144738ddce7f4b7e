package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcboeker/go-duckdb"

	"github.com/ml-punto-tech/sentiment-api/internal/models"
)

// DuckOptions configures the embedded DuckDB file.
type DuckOptions struct {
	Path        string
	Threads     int
	MemoryLimit string
}

// DuckStore stores the prediction log in an embedded DuckDB file.
type DuckStore struct {
	db   *sql.DB
	path string
}

// NewDuckStore opens (or creates) the DuckDB file and ensures the schema.
func NewDuckStore(ctx context.Context, opts DuckOptions) (*DuckStore, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("duckdb path is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("creating duckdb directory: %w", err)
	}

	pragmas := []string{"PRAGMA enable_progress_bar=false"}
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", strings.ReplaceAll(opts.MemoryLimit, "'", "")))
	}

	connector, err := duckdb.NewConnector(opts.Path, func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	schema := []string{
		`CREATE SEQUENCE IF NOT EXISTS sentiment_logs_id_seq START 1`,
		`CREATE TABLE IF NOT EXISTS sentiment_logs (
			id          BIGINT PRIMARY KEY DEFAULT nextval('sentiment_logs_id_seq'),
			text        VARCHAR NOT NULL,
			label       VARCHAR NOT NULL,
			probability DOUBLE NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &DuckStore{db: db, path: opts.Path}, nil
}

// Path returns the database file path.
func (s *DuckStore) Path() string {
	return s.path
}

func (s *DuckStore) Append(ctx context.Context, entry *models.PredictionLog) error {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO sentiment_logs (text, label, probability, created_at) VALUES (?, ?, ?, ?) RETURNING id`,
		entry.Text, entry.Label, entry.Probability, entry.CreatedAt.UTC())
	if err := row.Scan(&entry.ID); err != nil {
		return fmt.Errorf("inserting prediction log: %w", err)
	}
	return nil
}

func (s *DuckStore) Recent(ctx context.Context, limit int) ([]models.PredictionLog, error) {
	if limit <= 0 {
		return []models.PredictionLog{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, label, probability, created_at
		 FROM sentiment_logs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
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

func (s *DuckStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *DuckStore) Close() error {
	return s.db.Close()
}
