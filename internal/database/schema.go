package database

import (
	"context"
	"fmt"
	"regexp"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/sqlerr"
)

// identifierPattern restricts database names that get interpolated into
// CREATE DATABASE, which cannot take bind parameters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]{0,63}$`)

// EnsureDatabaseExists creates the configured database if the dialect
// supports doing so. It opens a separate server-level handle since the
// pooled handle selects a database that may not exist yet.
func (db *Database) EnsureDatabaseExists(ctx context.Context) error {
	if db.dialect.CreateDatabaseStatement(db.cfg.Name) == "" {
		return nil
	}

	if !identifierPattern.MatchString(db.cfg.Name) {
		return errs.InvalidArgument("name", "invalid database name %q", db.cfg.Name)
	}

	server, err := db.dialect.Open(db.openOptions(true))
	if err != nil {
		return errs.Connection(err, "failed to open server connection")
	}
	defer server.Close()

	ctx, cancel := context.WithTimeout(ctx, db.cfg.ConnectTimeout)
	defer cancel()

	if _, err := server.ExecContext(ctx, db.dialect.CreateDatabaseStatement(db.cfg.Name)); err != nil {
		return sqlerr.Classify(err)
	}

	db.log.Debug().Str("database", db.cfg.Name).Msg("database ensured")
	return nil
}

// EnsureTablesExist creates the enum type (where separate) and both
// tables if they are absent. It is idempotent and runs on every startup.
func (db *Database) EnsureTablesExist(ctx context.Context) error {
	statements := db.dialect.CreateTableStatements()
	if enum := db.dialect.CreateEnumStatement(); enum != "" {
		statements = append([]string{enum}, statements...)
	}

	if err := db.execAll(ctx, statements); err != nil {
		return fmt.Errorf("failed to ensure tables: %w", err)
	}

	db.log.Info().Msg("tables 'students' and 'attendance' ensured")
	return nil
}

// DropTables drops attendance, then students, then any dialect types.
func (db *Database) DropTables(ctx context.Context) error {
	if err := db.execAll(ctx, db.dialect.DropTableStatements()); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}

	db.log.Info().Msg("tables 'attendance' and 'students' dropped")
	return nil
}

// execAll runs DDL statements in order on one connection. DDL is not
// wrapped in a transaction: mysql commits it implicitly.
func (db *Database) execAll(ctx context.Context, statements []string) error {
	conn, err := db.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect(conn)

	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return sqlerr.Classify(err)
		}
	}
	return nil
}
