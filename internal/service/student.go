package service

import (
	"context"

	"github.com/deppfellow/attendance-api/internal/errs"
	"github.com/deppfellow/attendance-api/internal/models"
	"github.com/deppfellow/attendance-api/internal/repository"
	"github.com/deppfellow/attendance-api/internal/server"
)

type StudentService struct {
	server *server.Server
	repo   *repository.StudentRepository
}

func NewStudentService(s *server.Server, repo *repository.StudentRepository) *StudentService {
	return &StudentService{server: s, repo: repo}
}

func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.repo.List(ctx)
}

// Add stores student and returns the row as persisted.
func (s *StudentService) Add(ctx context.Context, student models.Student, id *int64) (models.Student, error) {
	newID, err := s.repo.Add(ctx, student, id)
	if err != nil {
		return models.Student{}, err
	}

	s.server.Logger.Info().Int64("student_id", newID).Int("roll_no", student.RollNo).Msg("student added")

	return s.Get(ctx, newID)
}

func (s *StudentService) Get(ctx context.Context, id int64) (models.Student, error) {
	student, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Student{}, err
	}
	if !found {
		return models.Student{}, errs.NotFound("Student not found")
	}
	return student, nil
}

// Update replaces an existing student's fields and returns the stored row.
func (s *StudentService) Update(ctx context.Context, id int64, student models.Student) (models.Student, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Student{}, err
	}

	if err := s.repo.Update(ctx, id, student); err != nil {
		return models.Student{}, err
	}

	return s.Get(ctx, id)
}

// Delete removes an existing student and its attendance.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.server.Logger.Info().Int64("student_id", id).Msg("student deleted")
	return nil
}
