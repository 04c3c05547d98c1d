package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrace/pkg/config"
)

// mockAdapter приводит pgxmock к интерфейсу DB
type mockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *mockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *mockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *mockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *mockAdapter) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, opts)
}

func (a *mockAdapter) Close() { a.mock.Close() }

func (a *mockAdapter) Ping(ctx context.Context) error { return a.mock.Ping(ctx) }

func newMock(t *testing.T) (pgxmock.PgxPoolIface, DB) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, &mockAdapter{mock: mock}
}

func TestWithTransactionResult_Commit(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM flow_runs").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	n, err := WithTransactionResult(context.Background(), db, pgx.TxOptions{}, func(tx pgx.Tx) (int64, error) {
		tag, err := tx.Exec(context.Background(), "DELETE FROM flow_runs")
		return tag.RowsAffected(), err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionResult_RollbackOnError(t *testing.T) {
	mock, db := newMock(t)
	expectedErr := errors.New("db error")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := WithTransactionResult(context.Background(), db, pgx.TxOptions{}, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionResult_RollbackOnPanic(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_, _ = WithTransactionResult(context.Background(), db, pgx.TxOptions{}, func(tx pgx.Tx) (struct{}, error) {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransactionResult_BeginFails(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	_, err := WithTransactionResult(context.Background(), db, pgx.TxOptions{}, func(tx pgx.Tx) (struct{}, error) {
		t.Fatal("fn must not run")
		return struct{}{}, nil
	})
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestWithTransactionResult_ReadOnlySnapshot(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectBeginTx(ReadOnlySnapshot)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	mock.ExpectCommit()

	n, err := WithTransactionResult(context.Background(), db, ReadOnlySnapshot, func(tx pgx.Tx) (int64, error) {
		var count int64
		err := tx.QueryRow(context.Background(), "SELECT COUNT(*) FROM flow_runs").Scan(&count)
		return count, err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck(t *testing.T) {
	mock, db := newMock(t)

	mock.ExpectPing()
	assert.NoError(t, HealthCheck(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("down"))
	assert.ErrorContains(t, HealthCheck(context.Background(), db), "health check failed")
}

func TestPoolConfig(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:            "db",
		Port:            5432,
		Database:        "flowtrace",
		Username:        "flow",
		Password:        "secret",
		SSLMode:         "disable",
		MaxOpenConns:    12,
		MaxIdleConns:    3,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
	}

	pc, err := PoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)
	assert.Equal(t, time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "flowtrace", pc.ConnConfig.Database)
}
