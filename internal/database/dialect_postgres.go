package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"

	loggerConfig "github.com/deppfellow/attendance-api/internal/logger"
)

const postgresDefaultPort = 5432

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// Open parses a pgx ConnConfig, attaches tracing and hands it to the pgx
// database/sql adapter.
//
// Tracing:
//   - New Relic tracer when the agent is running
//   - pgx tracelog (SQL and args) in the "local" environment
//   - both, chained through multiTracer, when both apply
func (postgresDialect) Open(opts OpenOptions) (*sql.DB, error) {
	cfg := opts.Config

	port := cfg.Port
	if port == 0 {
		port = postgresDefaultPort
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}

	connConfig, err := pgx.ParseConfig(dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	connConfig.ConnectTimeout = cfg.ConnectTimeout

	if opts.LoggerService.GetApplication() != nil {
		connConfig.Tracer = nrpgx5.NewTracer()
	}

	if opts.Env == "local" && opts.Logger != nil {
		globalLevel := opts.Logger.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		}

		if connConfig.Tracer != nil {
			connConfig.Tracer = &multiTracer{
				tracers: []pgx.QueryTracer{connConfig.Tracer, localTracer},
			}
		} else {
			connConfig.Tracer = localTracer
		}
	}

	db := stdlib.OpenDB(*connConfig)
	applyPool(db, cfg)
	return db, nil
}

func (postgresDialect) Rebind(query string) string { return rebindDollar(query) }

func (postgresDialect) IdentityStrategy() IdentityStrategy { return Returning }

// CreateDatabaseStatement is empty: postgres deployments are managed and
// the database is provisioned outside the application.
func (postgresDialect) CreateDatabaseStatement(string) string { return "" }

func (postgresDialect) CreateEnumStatement() string {
	return `DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'attendance_status') THEN
		CREATE TYPE attendance_status AS ENUM ('Present', 'Absent');
	END IF;
END
$$`
}

func (postgresDialect) CreateTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
	id SERIAL PRIMARY KEY,
	roll_no INTEGER NOT NULL,
	name VARCHAR(100) NOT NULL,
	class VARCHAR(50) NOT NULL,
	CONSTRAINT uq_students_roll_no UNIQUE (roll_no)
)`,
		`CREATE TABLE IF NOT EXISTS attendance (
	id SERIAL PRIMARY KEY,
	student_id INTEGER NOT NULL,
	date DATE NOT NULL,
	status attendance_status NOT NULL,
	CONSTRAINT fk_attendance_student FOREIGN KEY (student_id) REFERENCES students(id),
	CONSTRAINT uq_attendance_student_date UNIQUE (student_id, date)
)`,
	}
}

func (postgresDialect) DropTableStatements() []string {
	return []string{
		"DROP TABLE IF EXISTS attendance",
		"DROP TABLE IF EXISTS students",
		"DROP TYPE IF EXISTS attendance_status",
	}
}

// multiTracer fans pgx query tracing out to several tracers.
//
// pgx has a single Tracer slot in ConnConfig, so New Relic and the local
// SQL logger have to share it.
type multiTracer struct {
	tracers []pgx.QueryTracer
}

// TraceQueryStart threads ctx through every tracer in order so each can
// stash values for TraceQueryEnd.
func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		ctx = tracer.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		tracer.TraceQueryEnd(ctx, conn, data)
	}
}
