package sqlerr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/attendance-api/internal/errs"
)

// constraintColumns names the column(s) behind the constraints this
// service creates, for engines that report only the constraint name.
var constraintColumns = map[string]string{
	"uq_students_roll_no":        "roll_no",
	"uq_attendance_student_date": "student_id,date",
	"students_pkey":              "id",
	"attendance_pkey":            "id",
}

var uniqueKeySuffix = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// Classify converts a raw database error into the errs taxonomy.
//
//	unique                      -> Conflict (field from constraint/column)
//	foreign key                 -> NotFound
//	not null / check / bad text -> InvalidArgument
//	connection-level            -> ConnectionFailure
//	anything else               -> PersistenceFailure
//
// Errors already classified are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var domainErr *errs.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if sqlErr, ok := Convert(err); ok {
		return classifyDriverError(sqlErr)
	}

	if IsConnectionError(err) {
		return errs.Connection(err, "database connection failed")
	}

	return errs.Persistence(err, "database operation failed")
}

func classifyDriverError(sqlErr *Error) error {
	message := formatUserFriendlyMessage(sqlErr)

	switch sqlErr.Code {
	case UniqueViolation:
		field := sqlErr.ColumnName
		if field == "" {
			field = extractColumnForUniqueViolation(sqlErr.ConstraintName)
		}
		if field != "" {
			message = strings.ReplaceAll(message, "identifier", humanizeFields(field))
		}
		return &errs.Error{Kind: errs.KindConflict, Field: field, Message: message, Err: sqlErr}

	case ForeignKeyViolation:
		return &errs.Error{Kind: errs.KindNotFound, Field: strings.ToLower(sqlErr.ColumnName), Message: message, Err: sqlErr}

	case NotNullViolation, CheckViolation, InvalidTextRepresentation,
		StringDataRightTruncation, InvalidDatetimeFormat:
		return &errs.Error{Kind: errs.KindInvalidArgument, Field: strings.ToLower(sqlErr.ColumnName), Message: message, Err: sqlErr}

	case ConnectionException:
		return errs.Connection(sqlErr, "database connection failed")

	default:
		return errs.Persistence(sqlErr, "database operation failed")
	}
}

// IsConnectionError reports whether err means the database could not be
// reached or the connection was lost.
//
// A query that runs past its own deadline is not a connection failure.
// Acquire and ping paths wrap their errors with errs.Connection instead.
func IsConnectionError(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn):
		return true
	}

	if ErrCode(err) == ConnectionException {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// HandleError converts any error reaching the API layer into an
// *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - sql.ErrNoRows: 404
//   - everything else: classified, then mapped with errs.FromKind; driver
//     errors additionally get a <DOMAIN>_<ACTION> code such as
//     STUDENT_ALREADY_EXISTS
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	var domainErr *errs.Error
	if !errors.As(Classify(err), &domainErr) {
		return errs.NewInternalServerError()
	}

	out := errs.FromKind(domainErr)

	if sqlErr, ok := Convert(domainErr); ok {
		switch sqlErr.Code {
		case Other, ConnectionException:
		default:
			out.Code = generateErrorCode(sqlErr.TableName, sqlErr.Code)
		}
	}

	return out
}

// generateErrorCode creates consistent application error codes from
// database errors, formatted <DOMAIN>_<ACTION>:
//
//	students + UniqueViolation => STUDENT_ALREADY_EXISTS
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidTextRepresentation, StringDataRightTruncation, InvalidDatetimeFormat:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// formatUserFriendlyMessage produces a client-facing message. It never
// includes the raw driver text.
func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entityName)

	case UniqueViolation:
		// "identifier" is replaced by the column name when it is known.
		return fmt.Sprintf("%s %s with this identifier already exists", article(entityName), entityName)

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation, InvalidTextRepresentation, StringDataRightTruncation, InvalidDatetimeFormat:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	default:
		return "An error occurred while processing your request"
	}
}

// getEntityName infers the entity an error is about.
//
//  1. a column ending in "_id" names the referenced entity ("student_id" -> "Student")
//  2. otherwise the table name, singularized
//  3. otherwise "record"
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

func article(noun string) string {
	if noun != "" && strings.ContainsRune("AEIOUaeiou", rune(noun[0])) {
		return "An"
	}
	return "A"
}

// humanizeText converts snake_case into Title Case: "roll_no" -> "Roll No".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// humanizeFields renders a comma separated column list: "student_id,date"
// -> "Student Id and Date".
func humanizeFields(fields string) string {
	parts := strings.Split(fields, ",")
	for i, p := range parts {
		parts[i] = humanizeText(strings.TrimSpace(p))
	}
	return strings.Join(parts, " and ")
}

// extractColumnForUniqueViolation infers the column(s) behind a unique
// constraint name. Known constraints are looked up directly; otherwise
// two conventions are recognized:
//
//  1. "unique_<table>_<column>"
//  2. "<table>_<column>_(key|ukey)"
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if column, ok := constraintColumns[constraintName]; ok {
		return column
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueKeySuffix.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}
