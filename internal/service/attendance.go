package service

import (
	"context"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
	"github.com/deppfellow/attendance-api/internal/repository"
	"github.com/deppfellow/attendance-api/internal/server"
)

type AttendanceService struct {
	server   *server.Server
	students *repository.StudentRepository
	repo     *repository.AttendanceRepository
}

func NewAttendanceService(s *server.Server, students *repository.StudentRepository, repo *repository.AttendanceRepository) *AttendanceService {
	return &AttendanceService{server: s, students: students, repo: repo}
}

func (s *AttendanceService) List(ctx context.Context) ([]models.AttendanceView, error) {
	return s.repo.ListAll(ctx)
}

// Mark records attendance and returns it joined with the student.
func (s *AttendanceService) Mark(ctx context.Context, studentID int64, date models.Date, status models.AttendanceStatus) (models.AttendanceDetail, error) {
	id, err := s.repo.Mark(ctx, studentID, date, status)
	if err != nil {
		return models.AttendanceDetail{}, err
	}

	rec, err := s.Get(ctx, id)
	if err != nil {
		return models.AttendanceDetail{}, err
	}

	student, found, err := s.students.Get(ctx, studentID)
	if err != nil {
		return models.AttendanceDetail{}, err
	}

	detail := models.AttendanceDetail{
		ID:        rec.ID,
		StudentID: rec.StudentID,
		Class:     models.ClassNotAvailable,
		Date:      rec.Date,
		Status:    rec.Status,
	}
	if found {
		detail.RollNo = student.RollNo
		detail.Name = student.Name
		detail.Class = student.Class
	}

	s.server.Logger.Info().
		Int64("attendance_id", id).
		Int64("student_id", studentID).
		Str("date", date.String()).
		Str("status", string(status)).
		Msg("attendance marked")

	return detail, nil
}

func (s *AttendanceService) Get(ctx context.Context, id int64) (models.Attendance, error) {
	rec, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Attendance{}, err
	}
	if !found {
		return models.Attendance{}, errs.NotFound("Attendance record not found")
	}
	return rec, nil
}

func (s *AttendanceService) ListByStudent(ctx context.Context, studentID int64) ([]models.AttendanceEntry, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// UpdateStatus changes an existing record's status and returns the stored row.
func (s *AttendanceService) UpdateStatus(ctx context.Context, id int64, status models.AttendanceStatus) (models.Attendance, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Attendance{}, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return models.Attendance{}, err
	}

	return s.Get(ctx, id)
}

func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
