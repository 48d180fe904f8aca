package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deppfellow/attendance-api/internal/errs"
)

func TestParseAttendanceStatus(t *testing.T) {
	for _, raw := range []string{"Present", "Absent"} {
		s, err := ParseAttendanceStatus(raw)
		require.NoError(t, err)
		require.Equal(t, AttendanceStatus(raw), s)
	}

	for _, raw := range []string{"Late", "present", "", " Absent"} {
		_, err := ParseAttendanceStatus(raw)
		require.Error(t, err)
		require.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
	}
}

func TestDateParseAndFormat(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	require.Equal(t, NewDate(2024, time.January, 10), d)
	require.Equal(t, "2024-01-10", d.String())

	_, err = ParseDate("10/01/2024")
	require.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))

	_, err = ParseDate("2024-02-30")
	require.Error(t, err)
}

func TestDateOfKeepsLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	ts := time.Date(2024, time.March, 1, 1, 30, 0, 0, loc)
	require.Equal(t, NewDate(2024, time.March, 1), DateOf(ts))
}

func TestAttendanceJSONShape(t *testing.T) {
	rec := Attendance{ID: 4, StudentID: 9, Date: NewDate(2024, time.January, 10), Status: StatusPresent}

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":4,"student_id":9,"date":"2024-01-10","status":"Present"}`, string(out))

	var back Attendance
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, rec, back)
}
