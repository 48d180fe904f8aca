package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupDialect(t *testing.T) {
	for _, name := range []string{"mysql", "postgres", "sqlite", "MySQL"} {
		d, err := LookupDialect(name)
		require.NoError(t, err)
		require.Equal(t, strings.ToLower(name), d.Name())
	}

	_, err := LookupDialect("oracle")
	require.ErrorContains(t, err, "mysql, postgres, sqlite")
}

func TestRebind(t *testing.T) {
	pg, _ := LookupDialect("postgres")
	my, _ := LookupDialect("mysql")

	query := `SELECT id FROM attendance WHERE student_id = ? AND date = ? AND status <> '?'`

	require.Equal(t,
		`SELECT id FROM attendance WHERE student_id = $1 AND date = $2 AND status <> '?'`,
		pg.Rebind(query))
	require.Equal(t, query, my.Rebind(query))
}

func TestIdentityStrategies(t *testing.T) {
	tests := map[string]IdentityStrategy{
		"mysql":    LastInsertID,
		"postgres": Returning,
		"sqlite":   LastInsertID,
	}
	for name, want := range tests {
		d, err := LookupDialect(name)
		require.NoError(t, err)
		require.Equal(t, want, d.IdentityStrategy(), name)
	}
}

func TestSchemaStatements(t *testing.T) {
	for _, name := range DialectNames() {
		d, _ := LookupDialect(name)

		tables := d.CreateTableStatements()
		require.Len(t, tables, 2, name)
		require.Contains(t, tables[0], "CREATE TABLE IF NOT EXISTS students", name)
		require.Contains(t, tables[1], "CREATE TABLE IF NOT EXISTS attendance", name)
		require.Contains(t, tables[1], "uq_attendance_student_date", name)

		drops := d.DropTableStatements()
		require.Equal(t, "DROP TABLE IF EXISTS attendance", drops[0], name)
		require.Equal(t, "DROP TABLE IF EXISTS students", drops[1], name)
	}

	my, _ := LookupDialect("mysql")
	require.Equal(t, "CREATE DATABASE IF NOT EXISTS `attendance_db`", my.CreateDatabaseStatement("attendance_db"))
	require.Empty(t, my.CreateEnumStatement())

	pg, _ := LookupDialect("postgres")
	require.Empty(t, pg.CreateDatabaseStatement("attendance_db"))
	require.Contains(t, pg.CreateEnumStatement(), "IF NOT EXISTS")
	require.Contains(t, pg.CreateEnumStatement(), "CREATE TYPE attendance_status AS ENUM ('Present', 'Absent')")
}
