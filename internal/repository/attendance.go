package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/deppfellow/attendance-api/internal/database"
	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
	"github.com/deppfellow/attendance-api/internal/record"
)

type AttendanceRepository struct {
	db *database.Database
}

func NewAttendanceRepository(db *database.Database) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Mark records status for a student on date and returns the new id.
//
// The student must exist and have no record for date. Both checks and the
// insert share one transaction; the (student_id, date) unique constraint
// turns a concurrent duplicate into a Conflict as well.
func (r *AttendanceRepository) Mark(ctx context.Context, studentID int64, date models.Date, status models.AttendanceStatus) (int64, error) {
	if _, err := models.ParseAttendanceStatus(string(status)); err != nil {
		return 0, err
	}
	if date.IsZero() {
		return 0, errs.InvalidArgument("date", "date is required")
	}

	var id int64
	err := run(ctx, r.db, "attendance.mark", func(ctx context.Context, conn *sql.Conn) error {
		return r.db.WithTx(ctx, conn, func(tx *sql.Tx) error {
			found, err := exists(ctx, r.db, tx, `SELECT 1 FROM students WHERE id = ?`, studentID)
			if err != nil {
				return err
			}
			if !found {
				return errs.NotFound("student %d not found", studentID)
			}

			marked, err := exists(ctx, r.db, tx,
				`SELECT 1 FROM attendance WHERE student_id = ? AND date = ?`, studentID, date.String())
			if err != nil {
				return err
			}
			if marked {
				return errs.Conflict("student_id,date", "attendance for student %d on %s already exists", studentID, date)
			}

			id, err = r.db.Insert(ctx, tx,
				`INSERT INTO attendance (student_id, date, status) VALUES (?, ?, ?)`,
				studentID, date.String(), string(status))
			return err
		})
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// Get returns the attendance record with id. found is false when it does
// not exist.
func (r *AttendanceRepository) Get(ctx context.Context, id int64) (rec models.Attendance, found bool, err error) {
	err = run(ctx, r.db, "attendance.get", func(ctx context.Context, conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx,
			r.db.Rebind(`SELECT id, student_id, date, status FROM attendance WHERE id = ?`), id)

		values, err := record.ScanValues(row, len(record.AttendanceColumns))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		rec, err = record.Attendance(values)
		found = err == nil
		return err
	})
	return rec, found, err
}

// ListByStudent returns a student's records ordered by date.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.AttendanceEntry, error) {
	entries := []models.AttendanceEntry{}

	err := run(ctx, r.db, "attendance.listByStudent", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx,
			r.db.Rebind(`SELECT id, date, status FROM attendance WHERE student_id = ? ORDER BY date, id`), studentID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			values, err := record.ScanValues(rows, len(record.EntryColumns))
			if err != nil {
				return err
			}
			entry, err := record.Entry(values)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// ListAll returns every record joined with its student, ordered by
// attendance id.
func (r *AttendanceRepository) ListAll(ctx context.Context) ([]models.AttendanceView, error) {
	views := []models.AttendanceView{}

	err := run(ctx, r.db, "attendance.listAll", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `
			SELECT a.id, s.roll_no, s.name, s.class, a.date, a.status
			FROM attendance a
			JOIN students s ON s.id = a.student_id
			ORDER BY a.id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			row, err := record.ScanRow(rows)
			if err != nil {
				return err
			}
			view, err := record.View(row)
			if err != nil {
				return err
			}
			views = append(views, view)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return views, nil
}

// UpdateStatus changes the status of a record. It does not check the
// record exists; callers do.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id int64, status models.AttendanceStatus) error {
	if _, err := models.ParseAttendanceStatus(string(status)); err != nil {
		return err
	}

	return run(ctx, r.db, "attendance.updateStatus", func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			r.db.Rebind(`UPDATE attendance SET status = ? WHERE id = ?`), string(status), id)
		return err
	})
}

// Delete removes a record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	return run(ctx, r.db, "attendance.delete", func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, r.db.Rebind(`DELETE FROM attendance WHERE id = ?`), id)
		return err
	})
}
