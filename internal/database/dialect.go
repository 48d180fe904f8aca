package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/deppfellow/attendance-api/internal/config"
	loggerConfig "github.com/deppfellow/attendance-api/internal/logger"
)

// IdentityStrategy is how a dialect reports the id of an inserted row.
type IdentityStrategy int

const (
	// LastInsertID reads sql.Result.LastInsertId after the insert.
	LastInsertID IdentityStrategy = iota
	// Returning appends "RETURNING id" and scans the single result row.
	Returning
)

// OpenOptions carries everything a dialect needs to build its *sql.DB.
type OpenOptions struct {
	Config        *config.DatabaseConfig
	Env           string
	Logger        *zerolog.Logger
	LoggerService *loggerConfig.LoggerService

	// ServerOnly opens a handle with no database selected, used to create
	// the database itself.
	ServerOnly bool
}

// Dialect hides every difference between the supported SQL engines.
//
// Repositories write their queries once with "?" placeholders and never
// branch on the dialect; anything engine specific belongs here.
type Dialect interface {
	// Name is the value of database.dialect that selects this dialect.
	Name() string

	// Open builds a pooled handle. It performs no network I/O.
	Open(opts OpenOptions) (*sql.DB, error)

	// Rebind rewrites "?" placeholders into the dialect's bind syntax.
	Rebind(query string) string

	IdentityStrategy() IdentityStrategy

	// CreateDatabaseStatement returns "" when the dialect does not create
	// databases at startup.
	CreateDatabaseStatement(name string) string

	// CreateEnumStatement returns "" when the status enum is inline.
	CreateEnumStatement() string

	// CreateTableStatements are executed in order; each must be idempotent.
	CreateTableStatements() []string

	// DropTableStatements are executed in order; each must be idempotent.
	DropTableStatements() []string
}

var dialects = map[string]Dialect{
	mysqlDialect{}.Name():    mysqlDialect{},
	postgresDialect{}.Name(): postgresDialect{},
	sqliteDialect{}.Name():   sqliteDialect{},
}

// LookupDialect returns the dialect registered under name.
func LookupDialect(name string) (Dialect, error) {
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported database dialect %q (supported: %s)",
			name, strings.Join(DialectNames(), ", "))
	}
	return d, nil
}

// DialectNames lists the registered dialects in sorted order.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// rebindDollar rewrites "?" into "$1", "$2", ... skipping quoted text.
func rebindDollar(query string) string {
	var (
		b       strings.Builder
		n       int
		inQuote byte
	)
	b.Grow(len(query) + 8)

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case inQuote != 0:
			if ch == inQuote {
				inQuote = 0
			}
		case ch == '\'' || ch == '"':
			inQuote = ch
		case ch == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(ch)
	}

	return b.String()
}

// applyPool copies the pool tuning from config onto db.
func applyPool(db *sql.DB, cfg *config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTimeDuration())
}
