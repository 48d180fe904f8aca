package database

import (
	"context"
)

// Provision prepares the database for serving:
//
//   - retries EnsureDatabaseExists + Ping under policy
//   - then ensures both tables exist
//
// It is called at startup and again by the readiness gate while the
// database is unavailable.
func (db *Database) Provision(ctx context.Context, policy RetryPolicy) error {
	err := Retry(ctx, policy, db.log, func(ctx context.Context) error {
		if err := db.EnsureDatabaseExists(ctx); err != nil {
			return err
		}
		return db.Ping(ctx)
	})
	if err != nil {
		return err
	}

	if err := db.EnsureTablesExist(ctx); err != nil {
		return err
	}

	db.log.Info().
		Str("dialect", db.dialect.Name()).
		Msg("database schema up to date")

	return nil
}
