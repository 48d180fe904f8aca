package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/database"
	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Database.Dialect = "sqlite"
	cfg.Database.Path = "file:" + uuid.NewString() + "?mode=memory&cache=shared"

	logger := zerolog.Nop()
	db, err := database.New(cfg, &logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Provision(context.Background(), database.RetryPolicy{Attempts: 1}))
	return db
}

func countRows(t *testing.T, db *database.Database, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.DB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func ptr(v int64) *int64 { return &v }

func TestStudentAddGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db, false)
	ctx := context.Background()

	id, err := repo.Add(ctx, models.Student{RollNo: 12, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)
	require.Positive(t, id)

	got, found, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.Student{ID: id, RollNo: 12, Name: "Ada", Class: "10A"}, got)

	_, found, err = repo.Get(ctx, id+100)
	require.NoError(t, err)
	require.False(t, found)
}

func TestStudentDuplicateRollNo(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudentRepository(db, false)
	ctx := context.Background()

	_, err := repo.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)

	_, err = repo.Add(ctx, models.Student{RollNo: 1, Name: "Alan", Class: "10B"}, nil)
	require.ErrorIs(t, err, &errs.Error{Kind: errs.KindConflict, Field: "roll_no"})
	require.Equal(t, 1, countRows(t, db, "students"))
}

func TestStudentIdentityModes(t *testing.T) {
	ctx := context.Background()
	student := models.Student{RollNo: 5, Name: "Grace", Class: "11C"}

	t.Run("generated mode rejects explicit id", func(t *testing.T) {
		repo := NewStudentRepository(newTestDB(t), false)
		_, err := repo.Add(ctx, student, ptr(42))
		require.ErrorIs(t, err, &errs.Error{Kind: errs.KindInvalidArgument, Field: "id"})
	})

	t.Run("explicit mode requires id", func(t *testing.T) {
		repo := NewStudentRepository(newTestDB(t), true)
		_, err := repo.Add(ctx, student, nil)
		require.ErrorIs(t, err, &errs.Error{Kind: errs.KindInvalidArgument, Field: "id"})
	})

	t.Run("explicit mode stores and guards id", func(t *testing.T) {
		db := newTestDB(t)
		repo := NewStudentRepository(db, true)

		id, err := repo.Add(ctx, student, ptr(42))
		require.NoError(t, err)
		require.Equal(t, int64(42), id)

		_, err = repo.Add(ctx, models.Student{RollNo: 6, Name: "Linus", Class: "11C"}, ptr(42))
		require.ErrorIs(t, err, &errs.Error{Kind: errs.KindConflict, Field: "id"})
		require.Equal(t, 1, countRows(t, db, "students"))
	})
}

func TestStudentValidation(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), false)
	ctx := context.Background()

	tests := []struct {
		name    string
		student models.Student
		field   string
	}{
		{name: "zero roll", student: models.Student{RollNo: 0, Name: "Ada", Class: "10A"}, field: "roll_no"},
		{name: "blank name", student: models.Student{RollNo: 1, Name: "  ", Class: "10A"}, field: "name"},
		{name: "blank class", student: models.Student{RollNo: 1, Name: "Ada", Class: ""}, field: "class"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Add(ctx, tt.student, nil)
			require.ErrorIs(t, err, &errs.Error{Kind: errs.KindInvalidArgument, Field: tt.field})
		})
	}
}

func TestStudentListOrderedByRollNo(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), false)
	ctx := context.Background()

	for _, roll := range []int{30, 10, 20} {
		_, err := repo.Add(ctx, models.Student{RollNo: roll, Name: "S", Class: "9"}, nil)
		require.NoError(t, err)
	}

	students, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	require.Equal(t, []int{10, 20, 30}, []int{students[0].RollNo, students[1].RollNo, students[2].RollNo})
}

func TestStudentListEmpty(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), false)

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, students)
	require.Empty(t, students)
}

func TestStudentUpdate(t *testing.T) {
	repo := NewStudentRepository(newTestDB(t), false)
	ctx := context.Background()

	id, err := repo.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)
	other, err := repo.Add(ctx, models.Student{RollNo: 2, Name: "Alan", Class: "10B"}, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, id, models.Student{RollNo: 3, Name: "Ada L.", Class: "11A"}))
	got, _, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.Student{ID: id, RollNo: 3, Name: "Ada L.", Class: "11A"}, got)

	// The unique constraint backs roll_no on update.
	err = repo.Update(ctx, other, models.Student{RollNo: 3, Name: "Alan", Class: "10B"})
	require.ErrorIs(t, err, &errs.Error{Kind: errs.KindConflict, Field: "roll_no"})
}

func TestStudentDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	id, err := students.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)
	keep, err := students.Add(ctx, models.Student{RollNo: 2, Name: "Alan", Class: "10B"}, nil)
	require.NoError(t, err)

	for day := 1; day <= 3; day++ {
		_, err := attendance.Mark(ctx, id, models.NewDate(2024, time.January, day), models.StatusPresent)
		require.NoError(t, err)
	}
	_, err = attendance.Mark(ctx, keep, models.NewDate(2024, time.January, 1), models.StatusAbsent)
	require.NoError(t, err)

	require.NoError(t, students.Delete(ctx, id))

	found, err := students.Exists(ctx, id)
	require.NoError(t, err)
	require.False(t, found)

	entries, err := attendance.ListByStudent(ctx, id)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, 1, countRows(t, db, "attendance"))
}

func TestStudentDeleteRollsBackAttendanceOnFailure(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	id, err := students.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)
	_, err = attendance.Mark(ctx, id, models.NewDate(2024, time.January, 1), models.StatusPresent)
	require.NoError(t, err)

	_, err = db.DB.ExecContext(ctx, `CREATE TRIGGER block_student_delete BEFORE DELETE ON students
		BEGIN SELECT RAISE(ABORT, 'student delete blocked'); END`)
	require.NoError(t, err)

	err = students.Delete(ctx, id)
	require.Error(t, err)
	require.Equal(t, errs.KindPersistence, errs.KindOf(err))

	require.Equal(t, 1, countRows(t, db, "attendance"))
	found, err := students.Exists(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
}

func TestAttendanceMarkTwice(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	id, err := students.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)

	day := models.NewDate(2024, time.January, 10)
	_, err = attendance.Mark(ctx, id, day, models.StatusPresent)
	require.NoError(t, err)

	_, err = attendance.Mark(ctx, id, day, models.StatusAbsent)
	require.ErrorIs(t, err, errs.ErrConflict)
	require.Equal(t, 1, countRows(t, db, "attendance"))
}

func TestAttendanceConcurrentMarks(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	id, err := students.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)

	day := models.NewDate(2024, time.March, 4)
	results := make([]error, 2)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = attendance.Mark(ctx, id, day, models.StatusPresent)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errs.KindOf(err) == errs.KindConflict:
			conflicts++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, conflicts)
	require.Equal(t, 1, countRows(t, db, "attendance"))
}

func TestAttendanceInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	id, err := students.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)

	_, err = attendance.Mark(ctx, id, models.NewDate(2024, time.January, 10), models.AttendanceStatus("Late"))
	require.ErrorIs(t, err, &errs.Error{Kind: errs.KindInvalidArgument, Field: "status"})
	require.Zero(t, countRows(t, db, "attendance"))
}

func TestAttendanceMarkUnknownStudent(t *testing.T) {
	db := newTestDB(t)
	attendance := NewAttendanceRepository(db)

	_, err := attendance.Mark(context.Background(), 99, models.NewDate(2024, time.January, 10), models.StatusPresent)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Zero(t, countRows(t, db, "attendance"))
}

func TestAttendanceListAllAppliesClassSentinel(t *testing.T) {
	db := newTestDB(t)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	// Rows written by other tools may carry a blank class.
	_, err := db.DB.ExecContext(ctx, `INSERT INTO students (id, roll_no, name, class) VALUES (1, 1, 'Ada', '')`)
	require.NoError(t, err)

	_, err = attendance.Mark(ctx, 1, models.NewDate(2024, time.January, 10), models.StatusPresent)
	require.NoError(t, err)

	views, err := attendance.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, models.ClassNotAvailable, views[0].Class)
	require.Equal(t, "Ada", views[0].Name)
	require.Equal(t, 1, views[0].RollNo)
}

func TestAttendanceListByStudentOrderedByDate(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	id, err := students.Add(ctx, models.Student{RollNo: 1, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)

	for _, day := range []int{15, 3, 9} {
		_, err := attendance.Mark(ctx, id, models.NewDate(2024, time.May, day), models.StatusPresent)
		require.NoError(t, err)
	}

	entries, err := attendance.ListByStudent(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "2024-05-03", entries[0].Date.String())
	require.Equal(t, "2024-05-09", entries[1].Date.String())
	require.Equal(t, "2024-05-15", entries[2].Date.String())
}

func TestAttendanceEndToEnd(t *testing.T) {
	db := newTestDB(t)
	students := NewStudentRepository(db, false)
	attendance := NewAttendanceRepository(db)
	ctx := context.Background()

	studentID, err := students.Add(ctx, models.Student{RollNo: 7, Name: "Ada", Class: "10A"}, nil)
	require.NoError(t, err)

	day := models.NewDate(2024, time.January, 10)
	recordID, err := attendance.Mark(ctx, studentID, day, models.StatusPresent)
	require.NoError(t, err)

	got, found, err := attendance.Get(ctx, recordID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.Attendance{ID: recordID, StudentID: studentID, Date: day, Status: models.StatusPresent}, got)

	require.NoError(t, attendance.UpdateStatus(ctx, recordID, models.StatusAbsent))
	got, _, err = attendance.Get(ctx, recordID)
	require.NoError(t, err)
	require.Equal(t, models.StatusAbsent, got.Status)

	views, err := attendance.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.AttendanceView{{
		ID: recordID, RollNo: 7, Name: "Ada", Class: "10A", Date: day, Status: models.StatusAbsent,
	}}, views)

	require.NoError(t, attendance.Delete(ctx, recordID))
	_, found, err = attendance.Get(ctx, recordID)
	require.NoError(t, err)
	require.False(t, found)
}

func TestAttendanceUpdateStatusValidates(t *testing.T) {
	attendance := NewAttendanceRepository(newTestDB(t))

	err := attendance.UpdateStatus(context.Background(), 1, models.AttendanceStatus("present"))
	require.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
}
