// Package repository handles all interactions with the database.
//
// It contains the SQL for the students and attendance tables, written
// once with "?" placeholders, and returns canonical models regardless of
// the dialect in use. Every method acquires its own connection and
// releases it on every path; multi-statement writes are transactional.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/deppfellow/attendance-api/internal/database"
	"github.com/deppfellow/attendance-api/internal/server"
	"github.com/deppfellow/attendance-api/internal/sqlerr"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Students   *StudentRepository
	Attendance *AttendanceRepository
}

// NewRepositories constructs the repository container from the
// application container.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Students:   NewStudentRepository(s.DB, s.Config.Database.ExplicitStudentID),
		Attendance: NewAttendanceRepository(s.DB),
	}
}

// run bounds fn by the query timeout, hands it a dedicated connection,
// and classifies whatever error comes back. op names the operation in
// slow-operation logs.
func run(ctx context.Context, db *database.Database, op string, fn func(ctx context.Context, conn *sql.Conn) error) error {
	start := time.Now()
	defer func() { db.ObserveOperation(op, time.Since(start)) }()

	ctx, cancel := db.WithQueryTimeout(ctx)
	defer cancel()

	conn, err := db.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Disconnect(conn)

	return sqlerr.Classify(fn(ctx, conn))
}

// exists reports whether query returns at least one row.
func exists(ctx context.Context, db *database.Database, q database.Querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, db.Rebind(query), args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}
