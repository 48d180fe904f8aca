package database

import (
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

// Open enables foreign keys on every connection and pins the pool to a
// single connection. SQLite serializes writers anyway, and an in-memory
// database only lives as long as its connection.
func (sqliteDialect) Open(opts OpenOptions) (*sql.DB, error) {
	dsn := opts.Config.Path
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	return db, nil
}

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) IdentityStrategy() IdentityStrategy { return LastInsertID }

func (sqliteDialect) CreateDatabaseStatement(string) string { return "" }

func (sqliteDialect) CreateEnumStatement() string { return "" }

func (sqliteDialect) CreateTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	roll_no INTEGER NOT NULL,
	name TEXT NOT NULL,
	class TEXT NOT NULL,
	CONSTRAINT uq_students_roll_no UNIQUE (roll_no)
)`,
		`CREATE TABLE IF NOT EXISTS attendance (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	student_id INTEGER NOT NULL,
	date TEXT NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('Present', 'Absent')),
	CONSTRAINT fk_attendance_student FOREIGN KEY (student_id) REFERENCES students(id),
	CONSTRAINT uq_attendance_student_date UNIQUE (student_id, date)
)`,
	}
}

func (sqliteDialect) DropTableStatements() []string {
	return []string{
		"DROP TABLE IF EXISTS attendance",
		"DROP TABLE IF EXISTS students",
	}
}
