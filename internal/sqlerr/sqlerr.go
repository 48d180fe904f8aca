// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic error codes from the postgres, mysql and sqlite
// drivers into one Error shape, classifies them into the errs taxonomy,
// and converts them into user-friendly messages (e.g., a unique
// violation on roll_no becomes "A Student with this Roll No already
// exists").
package sqlerr

import "strings"

// Code is a dialect-neutral category of database error.
type Code string

const (
	Other                     Code = "other"
	NotNullViolation          Code = "not_null_violation"
	ForeignKeyViolation       Code = "foreign_key_violation"
	UniqueViolation           Code = "unique_violation"
	CheckViolation            Code = "check_violation"
	InvalidTextRepresentation Code = "invalid_text_representation"
	StringDataRightTruncation Code = "string_data_right_truncation"
	InvalidDatetimeFormat     Code = "invalid_datetime_format"
	ConnectionException       Code = "connection_exception"
)

// Severity mirrors postgres message severities. mysql and sqlite errors
// are always SeverityError.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// Error is a driver error normalized across dialects.
//
// DatabaseCode keeps the raw engine code (SQLSTATE, mysql error number,
// or sqlite extended result code) for logs.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return string(e.Severity) + ": " + e.Message + " (" + e.DatabaseCode + ")"
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a postgres SQLSTATE to a Code.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "22P02":
		return InvalidTextRepresentation
	case "22001":
		return StringDataRightTruncation
	case "22007", "22008":
		return InvalidDatetimeFormat
	// invalid authorization, unknown database, too many connections,
	// operator intervention (shutdown, cannot connect now)
	case "28000", "28P01", "3D000", "53300", "57P01", "57P02", "57P03":
		return ConnectionException
	}

	// Class 08: connection exception.
	if strings.HasPrefix(sqlstate, "08") {
		return ConnectionException
	}

	return Other
}

// MapSeverity maps a postgres severity string to a Severity.
func MapSeverity(severity string) Severity {
	switch strings.ToUpper(severity) {
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	case "WARNING":
		return SeverityWarning
	case "NOTICE":
		return SeverityNotice
	case "DEBUG":
		return SeverityDebug
	case "INFO":
		return SeverityInfo
	case "LOG":
		return SeverityLog
	default:
		return SeverityError
	}
}
