package sqlerr

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// Duplicate entry '7' for key 'students.uq_students_roll_no'
	mysqlDuplicateKey = regexp.MustCompile(`for key '([^']+)'`)
	// ... fails (`db`.`attendance`, CONSTRAINT `fk` FOREIGN KEY (`student_id`) ...
	mysqlForeignKey = regexp.MustCompile("\\(`[^`]*`\\.`([^`]+)`, CONSTRAINT `([^`]+)` FOREIGN KEY \\(`([^`]+)`\\)")
	// Column 'name' cannot be null / Data truncated for column 'status'
	mysqlColumn = regexp.MustCompile(`[Cc]olumn '([^']+)'`)
	// Check constraint 'chk_name' is violated.
	mysqlCheck = regexp.MustCompile(`[Cc]heck constraint '([^']+)'`)
)

// Convert normalizes any supported driver error found in err's chain.
func Convert(err error) (*Error, bool) {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConvertPgError(pgErr), true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return ConvertMySQLError(myErr), true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return ConvertSQLiteError(liteErr), true
	}

	return nil, false
}

// ErrCode reports the mapped Code for err, or Other.
func ErrCode(err error) Code {
	if sqlErr, ok := Convert(err); ok {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into an Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// ConvertMySQLError converts a server-side mysql error into an Error.
//
// mysql carries no structured table or column fields, so they are parsed
// out of the message where the format is stable.
func ConvertMySQLError(src *mysql.MySQLError) *Error {
	out := &Error{
		Code:         mapMySQLNumber(src.Number),
		Severity:     SeverityError,
		DatabaseCode: strconv.Itoa(int(src.Number)),
		Message:      src.Message,
		driverErr:    src,
	}

	switch out.Code {
	case UniqueViolation:
		if m := mysqlDuplicateKey.FindStringSubmatch(src.Message); m != nil {
			key := m[1]
			if table, name, ok := strings.Cut(key, "."); ok {
				out.TableName = table
				key = name
			}
			out.ConstraintName = key
			if key == "PRIMARY" {
				out.ColumnName = "id"
			}
		}
	case ForeignKeyViolation:
		if m := mysqlForeignKey.FindStringSubmatch(src.Message); m != nil {
			out.TableName = m[1]
			out.ConstraintName = m[2]
			out.ColumnName = m[3]
		}
	case CheckViolation:
		if m := mysqlCheck.FindStringSubmatch(src.Message); m != nil {
			out.ConstraintName = m[1]
		}
	default:
		if m := mysqlColumn.FindStringSubmatch(src.Message); m != nil {
			out.ColumnName = m[1]
		}
	}

	return out
}

func mapMySQLNumber(number uint16) Code {
	switch number {
	case 1062, 1586:
		return UniqueViolation
	case 1451, 1452, 1216, 1217:
		return ForeignKeyViolation
	case 1048, 1364:
		return NotNullViolation
	case 3819:
		return CheckViolation
	case 1265, 1366:
		return InvalidTextRepresentation
	case 1406:
		return StringDataRightTruncation
	case 1292:
		return InvalidDatetimeFormat
	// too many connections, access denied, unknown database, server gone
	case 1040, 1044, 1045, 1049, 1053, 1129, 1130:
		return ConnectionException
	default:
		return Other
	}
}

// ConvertSQLiteError converts a sqlite error into an Error.
//
// Constraint messages look like
//
//	UNIQUE constraint failed: attendance.student_id, attendance.date
//	NOT NULL constraint failed: students.name
func ConvertSQLiteError(src *sqlite.Error) *Error {
	code := src.Code()
	databaseCode := strconv.Itoa(code)
	// The driver already appends " (<code>)"; Error adds its own.
	message := strings.TrimSuffix(src.Error(), " ("+databaseCode+")")

	out := &Error{
		Code:         mapSQLiteCode(code),
		Severity:     SeverityError,
		DatabaseCode: databaseCode,
		Message:      message,
		driverErr:    src,
	}

	const marker = "constraint failed: "
	if i := strings.LastIndex(message, marker); i >= 0 {
		detail := message[i+len(marker):]
		var columns []string
		for _, qualified := range strings.Split(detail, ",") {
			qualified = strings.TrimSpace(qualified)
			// Trailing " (19)" style suffixes from the driver.
			qualified, _, _ = strings.Cut(qualified, " ")
			table, column, found := strings.Cut(qualified, ".")
			if !found {
				continue
			}
			out.TableName = table
			columns = append(columns, column)
		}
		out.ColumnName = strings.Join(columns, ",")
	}

	return out
}

func mapSQLiteCode(code int) Code {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return UniqueViolation
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ForeignKeyViolation
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return NotNullViolation
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return CheckViolation
	}

	switch code & 0xff {
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
		return ConnectionException
	default:
		return Other
	}
}
