package record

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
)

func TestStudentFromNamedAndPositionalRows(t *testing.T) {
	want := models.Student{ID: 3, RollNo: 12, Name: "Ada", Class: "10A"}

	tests := []struct {
		name string
		raw  any
	}{
		{name: "named, native types", raw: Row{"id": int64(3), "roll_no": int64(12), "name": "Ada", "class": "10A"}},
		{name: "named, mysql bytes", raw: Row{"id": []byte("3"), "roll_no": []byte("12"), "name": []byte("Ada"), "class": []byte("10A")}},
		{name: "named, int32", raw: map[string]any{"id": int32(3), "roll_no": int32(12), "name": "Ada", "class": "10A"}},
		{name: "positional", raw: []any{int64(3), "12", "Ada", []byte("10A")}},
		{name: "named, mixed case keys", raw: map[string]any{"ID": int64(3), "Roll_No": int64(12), "NAME": "Ada", "Class": "10A"}},
		{name: "named, uint64 in range", raw: Row{"id": uint64(3), "roll_no": uint64(12), "name": "Ada", "class": "10A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Student(tt.raw)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestClassSentinel(t *testing.T) {
	for _, class := range []any{nil, "", "   ", []byte("")} {
		got, err := Student(Row{"id": int64(1), "roll_no": int64(1), "name": "Ada", "class": class})
		require.NoError(t, err)
		require.Equal(t, models.ClassNotAvailable, got.Class)
	}

	got, err := Student(Row{"id": int64(1), "roll_no": int64(1), "name": "Ada"})
	require.NoError(t, err)
	require.Equal(t, models.ClassNotAvailable, got.Class)

	view, err := View([]any{int64(1), int64(1), "Ada", nil, "2024-01-10", "Present"})
	require.NoError(t, err)
	require.Equal(t, models.ClassNotAvailable, view.Class)
}

func TestDateCoercion(t *testing.T) {
	want := models.NewDate(2024, time.January, 10)

	for _, raw := range []any{
		time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		[]byte("2024-01-10"),
		"2024-01-10",
		"2024-01-10 00:00:00",
		"2024-01-10T00:00:00Z",
	} {
		got, err := Attendance(Row{"id": int64(1), "student_id": int64(2), "date": raw, "status": "Absent"})
		require.NoError(t, err)
		require.Equal(t, want, got.Date)
		require.Equal(t, models.StatusAbsent, got.Status)
	}
}

func TestEntry(t *testing.T) {
	got, err := Entry([]any{int64(7), []byte("2024-02-29"), []byte("Present")})
	require.NoError(t, err)
	require.Equal(t, models.AttendanceEntry{
		ID:     7,
		Date:   models.NewDate(2024, time.February, 29),
		Status: models.StatusPresent,
	}, got)
}

func TestMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{name: "missing id", fn: func() error {
			_, err := Student(Row{"roll_no": int64(1), "name": "Ada", "class": "10A"})
			return err
		}},
		{name: "non numeric roll", fn: func() error {
			_, err := Student(Row{"id": int64(1), "roll_no": "twelve", "name": "Ada", "class": "10A"})
			return err
		}},
		{name: "null name", fn: func() error {
			_, err := Student(Row{"id": int64(1), "roll_no": int64(1), "name": nil, "class": "10A"})
			return err
		}},
		{name: "bad date", fn: func() error {
			_, err := Attendance(Row{"id": int64(1), "student_id": int64(1), "date": "10/01/2024", "status": "Present"})
			return err
		}},
		{name: "unknown status", fn: func() error {
			_, err := Entry([]any{int64(1), "2024-01-10", "Late"})
			return err
		}},
		{name: "wrong width", fn: func() error {
			_, err := Entry([]any{int64(1), "2024-01-10"})
			return err
		}},
		{name: "uint64 above int64 range", fn: func() error {
			_, err := Student(Row{"id": uint64(math.MaxInt64) + 1, "roll_no": int64(1), "name": "Ada", "class": "10A"})
			return err
		}},
		{name: "unsupported row", fn: func() error {
			_, err := Student("not a row")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, errs.KindPersistence, errs.KindOf(tt.fn()))
		})
	}
}
