package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/errs"
)

func newTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Database.Dialect = "sqlite"
	cfg.Database.Path = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	return cfg
}

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	logger := zerolog.Nop()
	db, err := New(newTestConfig(), &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestProvisionIsIdempotent(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	policy := RetryPolicy{Attempts: 1}

	require.NoError(t, db.Provision(ctx, policy))
	require.NoError(t, db.Provision(ctx, policy))

	var count int
	err := db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('students', 'attendance')`,
	).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestDropTables(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	require.NoError(t, db.EnsureTablesExist(ctx))
	require.NoError(t, db.DropTables(ctx))
	// Dropping absent tables is not an error.
	require.NoError(t, db.DropTables(ctx))

	var count int
	err := db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('students', 'attendance')`,
	).Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestInsertReturnsGeneratedID(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.EnsureTablesExist(ctx))

	conn, err := db.Connect(ctx)
	require.NoError(t, err)
	defer db.Disconnect(conn)

	first, err := db.Insert(ctx, conn, `INSERT INTO students (roll_no, name, class) VALUES (?, ?, ?)`, 1, "Ada", "10A")
	require.NoError(t, err)
	second, err := db.Insert(ctx, conn, `INSERT INTO students (roll_no, name, class) VALUES (?, ?, ?)`, 2, "Alan", "10B")
	require.NoError(t, err)

	require.Positive(t, first)
	require.Equal(t, first+1, second)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.EnsureTablesExist(ctx))

	conn, err := db.Connect(ctx)
	require.NoError(t, err)
	defer db.Disconnect(conn)

	sentinel := errors.New("abort")
	err = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO students (roll_no, name, class) VALUES (1, 'Ada', '10A')`); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count))
	require.Zero(t, count)

	err = db.WithTx(ctx, conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO students (roll_no, name, class) VALUES (1, 'Ada', '10A')`)
		return err
	})
	require.NoError(t, err)
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestDisconnectNilIsNoop(t *testing.T) {
	db := newTestDatabase(t)
	require.NotPanics(t, func() { db.Disconnect(nil) })
}

func TestPingFailureIsConnectionFailure(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.Close())

	err := db.Ping(context.Background())
	require.Equal(t, errs.KindConnection, errs.KindOf(err))
}

func TestEnsureDatabaseExistsRejectsBadNames(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Name = "attendance`; DROP DATABASE x; --"
	cfg.Database.ConnectTimeout = 10 * time.Millisecond

	logger := zerolog.Nop()
	db, err := New(cfg, &logger, nil)
	require.NoError(t, err)
	defer db.Close()

	err = db.EnsureDatabaseExists(context.Background())
	require.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
}

func TestProvisionDoesNotRetryBadDatabaseName(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.Name = "bad-name;drop"
	cfg.Database.ConnectTimeout = 10 * time.Millisecond

	logger := zerolog.Nop()
	db, err := New(cfg, &logger, nil)
	require.NoError(t, err)
	defer db.Close()

	sleeps := 0
	policy := RetryPolicy{
		Attempts:       5,
		InitialBackoff: time.Second,
		Sleep: func(context.Context, time.Duration) error {
			sleeps++
			return nil
		},
	}

	err = db.Provision(context.Background(), policy)
	require.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
	require.Zero(t, sleeps)
}

func TestEnsureDatabaseExistsNoopForSQLite(t *testing.T) {
	db := newTestDatabase(t)
	require.NoError(t, db.EnsureDatabaseExists(context.Background()))
}

func TestObserveOperationWarnsAboveThreshold(t *testing.T) {
	cfg := newTestConfig()
	cfg.Observability.Logging.SlowQueryThreshold = 50 * time.Millisecond

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	db, err := New(cfg, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	buf.Reset()

	db.ObserveOperation("students.list", 10*time.Millisecond)
	require.Zero(t, buf.Len())

	db.ObserveOperation("students.list", 80*time.Millisecond)
	require.Contains(t, buf.String(), "slow database operation")
	require.Contains(t, buf.String(), `"operation":"students.list"`)
}
