// Package database contains the logic for establishing connections to
// the configured SQL engine (mysql, postgres or sqlite).
//
// It handles:
//   - resolving the dialect and opening a pooled *sql.DB
//   - wiring query tracing/logging (pgx tracelog, New Relic nrpgx5)
//   - per-operation connection acquisition and release
//   - transactions and dialect-neutral identity retrieval
//   - schema provisioning with startup retries
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/errs"
	loggerConfig "github.com/deppfellow/attendance-api/internal/logger"
)

// Database wraps the pooled handle, the dialect that produced it and a
// logger. It provides a simple object you can pass around the app.
type Database struct {
	DB *sql.DB

	dialect       Dialect
	cfg           config.DatabaseConfig
	env           string
	log           *zerolog.Logger
	loggerService *loggerConfig.LoggerService
	slowQuery     time.Duration
}

// Querier is satisfied by *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New resolves the configured dialect and opens its pool.
//
// No connection is made here; the first Connect, Ping or Provision does
// the network I/O, so New succeeds even while the database is down.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	dialect, err := LookupDialect(cfg.Database.Dialect)
	if err != nil {
		return nil, err
	}

	database := &Database{
		dialect:       dialect,
		cfg:           cfg.Database,
		env:           cfg.Primary.Env,
		log:           logger,
		loggerService: loggerService,
	}
	if cfg.Observability != nil {
		database.slowQuery = cfg.Observability.Logging.SlowQueryThreshold
	}

	db, err := dialect.Open(database.openOptions(false))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name(), err)
	}
	database.DB = db

	logger.Info().
		Str("dialect", dialect.Name()).
		Str("database", database.displayName()).
		Msg("database handle ready")

	return database, nil
}

func (db *Database) openOptions(serverOnly bool) OpenOptions {
	return OpenOptions{
		Config:        &db.cfg,
		Env:           db.env,
		Logger:        db.log,
		LoggerService: db.loggerService,
		ServerOnly:    serverOnly,
	}
}

func (db *Database) displayName() string {
	if db.dialect.Name() == "sqlite" {
		return db.cfg.Path
	}
	return db.cfg.Name
}

// Dialect returns the active dialect.
func (db *Database) Dialect() Dialect {
	return db.dialect
}

// Config returns the database settings the handle was built from.
func (db *Database) Config() config.DatabaseConfig {
	return db.cfg
}

// Connect acquires one dedicated connection from the pool, bounded by
// database.connect_timeout.
func (db *Database) Connect(ctx context.Context) (*sql.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, db.cfg.ConnectTimeout)
	defer cancel()

	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return nil, errs.Connection(err, "failed to acquire database connection")
	}
	return conn, nil
}

// Disconnect returns conn to the pool. A nil conn is a no-op.
func (db *Database) Disconnect(conn *sql.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		db.log.Warn().Err(err).Msg("failed to release database connection")
	}
}

// WithQueryTimeout bounds a repository operation by database.query_timeout.
func (db *Database) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.cfg.QueryTimeout)
}

// ObserveOperation warns when a repository operation took longer than
// observability.logging.slow_query_threshold. A zero threshold disables it.
func (db *Database) ObserveOperation(op string, elapsed time.Duration) {
	if db.slowQuery <= 0 || elapsed < db.slowQuery {
		return
	}

	db.log.Warn().
		Str("operation", op).
		Str("dialect", db.dialect.Name()).
		Dur("duration", elapsed).
		Dur("threshold", db.slowQuery).
		Msg("slow database operation")
}

// Ping checks the database is reachable.
func (db *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.cfg.ConnectTimeout)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return errs.Connection(err, "failed to ping database")
	}
	return nil
}

// Close closes the pool.
func (db *Database) Close() error {
	db.log.Info().Msg("closing database connection pool")
	return db.DB.Close()
}

// Rebind rewrites "?" placeholders for the active dialect.
func (db *Database) Rebind(query string) string {
	return db.dialect.Rebind(query)
}

// Insert runs an INSERT and returns the generated id using the dialect's
// identity strategy. query must not carry its own RETURNING clause.
func (db *Database) Insert(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	switch db.dialect.IdentityStrategy() {
	case Returning:
		var id int64
		if err := q.QueryRowContext(ctx, db.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	default:
		res, err := q.ExecContext(ctx, db.Rebind(query), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
}

// WithTx runs fn inside a transaction on conn. The transaction commits
// when fn returns nil and rolls back on any error or panic.
func (db *Database) WithTx(ctx context.Context, conn *sql.Conn, fn func(tx *sql.Tx) error) (err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.log.Error().Err(rbErr).Msg("failed to roll back transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
