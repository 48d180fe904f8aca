package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/deppfellow/attendance-api/internal/database"
	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
	"github.com/deppfellow/attendance-api/internal/record"
)

const (
	maxNameLength  = 100
	maxClassLength = 50
)

type StudentRepository struct {
	db *database.Database

	// explicitID selects the identity mode: callers supply ids when true,
	// the database generates them otherwise.
	explicitID bool
}

func NewStudentRepository(db *database.Database, explicitID bool) *StudentRepository {
	return &StudentRepository{db: db, explicitID: explicitID}
}

// ExplicitID reports whether callers must supply student ids.
func (r *StudentRepository) ExplicitID() bool {
	return r.explicitID
}

// Add inserts a student and returns its id.
//
// In explicit-id mode id must be supplied and free; otherwise it must be
// nil. The roll number must be free. All checks and the insert share one
// transaction.
func (r *StudentRepository) Add(ctx context.Context, student models.Student, id *int64) (int64, error) {
	if err := validateStudent(student); err != nil {
		return 0, err
	}

	switch {
	case r.explicitID && id == nil:
		return 0, errs.InvalidArgument("id", "id is required")
	case !r.explicitID && id != nil:
		return 0, errs.InvalidArgument("id", "id is generated by the database and must not be supplied")
	case id != nil && *id <= 0:
		return 0, errs.InvalidArgument("id", "id must be a positive integer")
	}

	var newID int64
	err := run(ctx, r.db, "students.add", func(ctx context.Context, conn *sql.Conn) error {
		return r.db.WithTx(ctx, conn, func(tx *sql.Tx) error {
			if id != nil {
				taken, err := exists(ctx, r.db, tx, `SELECT 1 FROM students WHERE id = ?`, *id)
				if err != nil {
					return err
				}
				if taken {
					return errs.Conflict("id", "student with id %d already exists", *id)
				}
			}

			taken, err := exists(ctx, r.db, tx, `SELECT 1 FROM students WHERE roll_no = ?`, student.RollNo)
			if err != nil {
				return err
			}
			if taken {
				return errs.Conflict("roll_no", "student with roll number %d already exists", student.RollNo)
			}

			if id != nil {
				_, err := tx.ExecContext(ctx,
					r.db.Rebind(`INSERT INTO students (id, roll_no, name, class) VALUES (?, ?, ?, ?)`),
					*id, student.RollNo, student.Name, student.Class)
				newID = *id
				return err
			}

			newID, err = r.db.Insert(ctx, tx,
				`INSERT INTO students (roll_no, name, class) VALUES (?, ?, ?)`,
				student.RollNo, student.Name, student.Class)
			return err
		})
	})
	if err != nil {
		return 0, err
	}

	return newID, nil
}

// Get returns the student with id. found is false when it does not exist.
func (r *StudentRepository) Get(ctx context.Context, id int64) (student models.Student, found bool, err error) {
	err = run(ctx, r.db, "students.get", func(ctx context.Context, conn *sql.Conn) error {
		row := conn.QueryRowContext(ctx,
			r.db.Rebind(`SELECT id, roll_no, name, class FROM students WHERE id = ?`), id)

		values, err := record.ScanValues(row, len(record.StudentColumns))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		student, err = record.Student(values)
		found = err == nil
		return err
	})
	return student, found, err
}

// List returns every student ordered by roll number.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}

	err := run(ctx, r.db, "students.list", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, roll_no, name, class FROM students ORDER BY roll_no`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			row, err := record.ScanRow(rows)
			if err != nil {
				return err
			}
			student, err := record.Student(row)
			if err != nil {
				return err
			}
			students = append(students, student)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return students, nil
}

// Update replaces roll number, name and class. It does not check the
// student exists; callers do.
func (r *StudentRepository) Update(ctx context.Context, id int64, student models.Student) error {
	if err := validateStudent(student); err != nil {
		return err
	}

	return run(ctx, r.db, "students.update", func(ctx context.Context, conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			r.db.Rebind(`UPDATE students SET roll_no = ?, name = ?, class = ? WHERE id = ?`),
			student.RollNo, student.Name, student.Class, id)
		return err
	})
}

// Delete removes the student and all of its attendance rows in one
// transaction.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return run(ctx, r.db, "students.delete", func(ctx context.Context, conn *sql.Conn) error {
		return r.db.WithTx(ctx, conn, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM attendance WHERE student_id = ?`), id); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM students WHERE id = ?`), id)
			return err
		})
	})
}

// Exists reports whether a student with id exists.
func (r *StudentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := run(ctx, r.db, "students.exists", func(ctx context.Context, conn *sql.Conn) error {
		var err error
		found, err = exists(ctx, r.db, conn, `SELECT 1 FROM students WHERE id = ?`, id)
		return err
	})
	return found, err
}

func validateStudent(s models.Student) error {
	switch {
	case s.RollNo <= 0:
		return errs.InvalidArgument("roll_no", "roll_no must be a positive integer")
	case strings.TrimSpace(s.Name) == "":
		return errs.InvalidArgument("name", "name must not be empty")
	case utf8.RuneCountInString(s.Name) > maxNameLength:
		return errs.InvalidArgument("name", "name must be at most %d characters", maxNameLength)
	case strings.TrimSpace(s.Class) == "":
		return errs.InvalidArgument("class", "class must not be empty")
	case utf8.RuneCountInString(s.Class) > maxClassLength:
		return errs.InvalidArgument("class", "class must be at most %d characters", maxClassLength)
	}
	return nil
}
