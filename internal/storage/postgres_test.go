package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sentiment_logs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Append(t *testing.T) {
	s, mock := newMockStore(t)
	entry := logAt("great product", "positivo", 0)

	mock.ExpectQuery("INSERT INTO sentiment_logs").
		WithArgs("great product", "positivo", 0.75, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	require.NoError(t, s.Append(context.Background(), entry))
	assert.Equal(t, int64(42), entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO sentiment_logs").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	err := s.Append(context.Background(), logAt("x", "neutral", 0))
	assert.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Recent(t *testing.T) {
	s, mock := newMockStore(t)
	newest := baseTime.Add(2 * time.Minute)

	rows := pgxmock.NewRows([]string{"id", "text", "label", "probability", "created_at"}).
		AddRow(int64(2), "newest", "negativo", 0.9, newest).
		AddRow(int64(1), "oldest", "positivo", 0.6, baseTime)

	mock.ExpectQuery("SELECT id, text, label, probability, created_at").
		WithArgs(10).
		WillReturnRows(rows)

	recent, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "newest", recent[0].Text)
	assert.Equal(t, newest, recent[0].CreatedAt)
	assert.Equal(t, int64(1), recent[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RecentZeroLimit(t *testing.T) {
	s, mock := newMockStore(t)

	recent, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, recent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool() // pgxmock v3 always routes Ping through expectations
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectPing()
	s := &PostgresStore{pool: mock}
	assert.NoError(t, s.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
