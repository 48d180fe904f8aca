package models

import (
	"strings"

	"github.com/deppfellow/attendance-api/internal/errs"
)

// AttendanceStatus is the enumerated status column.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
)

// Valid reports whether s is one of the enumerated values. Matching is
// exact: "present" is not valid.
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// ParseAttendanceStatus validates raw as a status.
func ParseAttendanceStatus(raw string) (AttendanceStatus, error) {
	s := AttendanceStatus(raw)
	if !s.Valid() {
		return "", errs.InvalidArgument("status", "status must be either %s or %s, got %q",
			StatusPresent, StatusAbsent, strings.TrimSpace(raw))
	}
	return s, nil
}

// Attendance is a row of the attendance table.
type Attendance struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"student_id"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status"`
}

// AttendanceEntry is the per-student listing shape.
type AttendanceEntry struct {
	ID     int64            `json:"id"`
	Date   Date             `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// AttendanceView is an attendance row with its student's identity joined in.
type AttendanceView struct {
	ID     int64            `json:"id"`
	RollNo int              `json:"roll_no"`
	Name   string           `json:"name"`
	Class  string           `json:"class"`
	Date   Date             `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// AttendanceDetail is a newly marked record together with its student.
type AttendanceDetail struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"student_id"`
	RollNo    int              `json:"roll_no"`
	Name      string           `json:"name"`
	Class     string           `json:"class"`
	Date      Date             `json:"date"`
	Status    AttendanceStatus `json:"status"`
}
