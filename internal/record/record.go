// Package record normalizes raw database rows into the canonical models.
//
// Drivers disagree on how values come back: mysql hands out []byte for
// text and dates, pgx hands out time.Time for DATE and int64 for INTEGER,
// sqlite hands out string and int64. A raw row may also be field-named
// (Row) or positional ([]any in canonical column order). Everything is
// coerced here so repositories only ever see models.
package record

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
)

// Row is a field-named raw row keyed by lower-case column name.
type Row map[string]any

// Canonical positional column orders.
var (
	StudentColumns    = []string{"id", "roll_no", "name", "class"}
	AttendanceColumns = []string{"id", "student_id", "date", "status"}
	ViewColumns       = []string{"id", "roll_no", "name", "class", "date", "status"}
	EntryColumns      = []string{"id", "date", "status"}
)

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanValues scans n columns into untyped values, keeping whatever
// representation the driver chose.
func ScanValues(s Scanner, n int) ([]any, error) {
	values := make([]any, n)
	dest := make([]any, n)
	for i := range values {
		dest[i] = &values[i]
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	return values, nil
}

// ScanRow scans the current row of rows into a Row.
func ScanRow(rows *sql.Rows) (Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values, err := ScanValues(rows, len(columns))
	if err != nil {
		return nil, err
	}

	row := make(Row, len(columns))
	for i, column := range columns {
		row[strings.ToLower(column)] = values[i]
	}
	return row, nil
}

// fields resolves raw into a Row using columns for positional input.
func fields(raw any, columns []string) (Row, error) {
	switch r := raw.(type) {
	case Row:
		return lowerKeys(r), nil
	case map[string]any:
		return lowerKeys(r), nil
	case []any:
		if len(r) != len(columns) {
			return nil, malformed("row", fmt.Errorf("expected %d columns, got %d", len(columns), len(r)))
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = r[i]
		}
		return row, nil
	default:
		return nil, malformed("row", fmt.Errorf("unsupported row type %T", raw))
	}
}

// lowerKeys copies m with lowercased keys, matching ScanRow.
func lowerKeys(m map[string]any) Row {
	row := make(Row, len(m))
	for k, v := range m {
		row[strings.ToLower(k)] = v
	}
	return row
}

// Student normalizes a students row.
func Student(raw any) (models.Student, error) {
	row, err := fields(raw, StudentColumns)
	if err != nil {
		return models.Student{}, err
	}

	var out models.Student
	if out.ID, err = row.integer("id"); err != nil {
		return models.Student{}, err
	}
	rollNo, err := row.integer("roll_no")
	if err != nil {
		return models.Student{}, err
	}
	out.RollNo = int(rollNo)
	if out.Name, err = row.text("name"); err != nil {
		return models.Student{}, err
	}
	out.Class = row.class()

	return out, nil
}

// Attendance normalizes an attendance row.
func Attendance(raw any) (models.Attendance, error) {
	row, err := fields(raw, AttendanceColumns)
	if err != nil {
		return models.Attendance{}, err
	}

	var out models.Attendance
	if out.ID, err = row.integer("id"); err != nil {
		return models.Attendance{}, err
	}
	if out.StudentID, err = row.integer("student_id"); err != nil {
		return models.Attendance{}, err
	}
	if out.Date, err = row.date("date"); err != nil {
		return models.Attendance{}, err
	}
	if out.Status, err = row.status("status"); err != nil {
		return models.Attendance{}, err
	}

	return out, nil
}

// View normalizes an attendance row joined with its student.
func View(raw any) (models.AttendanceView, error) {
	row, err := fields(raw, ViewColumns)
	if err != nil {
		return models.AttendanceView{}, err
	}

	var out models.AttendanceView
	if out.ID, err = row.integer("id"); err != nil {
		return models.AttendanceView{}, err
	}
	rollNo, err := row.integer("roll_no")
	if err != nil {
		return models.AttendanceView{}, err
	}
	out.RollNo = int(rollNo)
	if out.Name, err = row.text("name"); err != nil {
		return models.AttendanceView{}, err
	}
	out.Class = row.class()
	if out.Date, err = row.date("date"); err != nil {
		return models.AttendanceView{}, err
	}
	if out.Status, err = row.status("status"); err != nil {
		return models.AttendanceView{}, err
	}

	return out, nil
}

// Entry normalizes a per-student attendance row.
func Entry(raw any) (models.AttendanceEntry, error) {
	row, err := fields(raw, EntryColumns)
	if err != nil {
		return models.AttendanceEntry{}, err
	}

	var out models.AttendanceEntry
	if out.ID, err = row.integer("id"); err != nil {
		return models.AttendanceEntry{}, err
	}
	if out.Date, err = row.date("date"); err != nil {
		return models.AttendanceEntry{}, err
	}
	if out.Status, err = row.status("status"); err != nil {
		return models.AttendanceEntry{}, err
	}

	return out, nil
}

func (r Row) integer(column string) (int64, error) {
	v, ok := r[column]
	if !ok || v == nil {
		return 0, malformed(column, fmt.Errorf("missing value"))
	}

	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, malformed(column, fmt.Errorf("value %d out of range", n))
		}
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, malformed(column, fmt.Errorf("non-integral value %v", n))
		}
		return int64(n), nil
	case []byte:
		return parseInt(column, string(n))
	case string:
		return parseInt(column, n)
	default:
		return 0, malformed(column, fmt.Errorf("unsupported type %T", v))
	}
}

func parseInt(column, s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, malformed(column, err)
	}
	return n, nil
}

func (r Row) text(column string) (string, error) {
	switch s := r[column].(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case nil:
		return "", malformed(column, fmt.Errorf("missing value"))
	default:
		return "", malformed(column, fmt.Errorf("unsupported type %T", s))
	}
}

// class applies the "N/A" sentinel to a missing, NULL or blank class.
func (r Row) class() string {
	s, err := r.text("class")
	if err != nil || strings.TrimSpace(s) == "" {
		return models.ClassNotAvailable
	}
	return s
}

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func (r Row) date(column string) (models.Date, error) {
	var s string
	switch v := r[column].(type) {
	case time.Time:
		return models.DateOf(v), nil
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return models.Date{}, malformed(column, fmt.Errorf("missing value"))
	default:
		return models.Date{}, malformed(column, fmt.Errorf("unsupported type %T", v))
	}

	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, malformed(column, fmt.Errorf("unparseable date %q", s))
}

func (r Row) status(column string) (models.AttendanceStatus, error) {
	s, err := r.text(column)
	if err != nil {
		return "", err
	}
	status := models.AttendanceStatus(s)
	if !status.Valid() {
		return "", malformed(column, fmt.Errorf("unknown status %q", s))
	}
	return status, nil
}

func malformed(column string, err error) error {
	return errs.Persistence(fmt.Errorf("column %s: %w", column, err), "malformed database row")
}
