package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/attendance-api/internal/models"
	"github.com/deppfellow/attendance-api/internal/server"
	"github.com/deppfellow/attendance-api/internal/service"
	"github.com/deppfellow/attendance-api/internal/validation"
)

type StudentHandler struct {
	Handler
	students *service.StudentService
}

func NewStudentHandler(s *server.Server, students *service.StudentService) *StudentHandler {
	return &StudentHandler{
		Handler:  NewHandler(s),
		students: students,
	}
}

type ListStudentsRequest struct{}

func (r *ListStudentsRequest) Validate() error {
	return nil
}

// AddStudentRequest is the body of POST /api/student-add. ID is only
// accepted when the database runs in explicit-id mode.
type AddStudentRequest struct {
	ID     *int64 `json:"id" validate:"omitempty,gt=0"`
	RollNo *int   `json:"roll_no" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
	Class  string `json:"class" validate:"required,max=50"`
}

func (r *AddStudentRequest) Validate() error {
	return validation.Struct(r)
}

type StudentIDRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *StudentIDRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateStudentRequest struct {
	ID     int64  `param:"id" json:"-" validate:"required,gt=0"`
	RollNo *int   `json:"roll_no" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
	Class  string `json:"class" validate:"required,max=50"`
}

func (r *UpdateStudentRequest) Validate() error {
	return validation.Struct(r)
}

func (h *StudentHandler) List(c echo.Context, _ *ListStudentsRequest) ([]models.Student, error) {
	return h.students.List(c.Request().Context())
}

func (h *StudentHandler) Add(c echo.Context, req *AddStudentRequest) (models.Student, error) {
	return h.students.Add(c.Request().Context(), models.Student{
		RollNo: *req.RollNo,
		Name:   req.Name,
		Class:  req.Class,
	}, req.ID)
}

func (h *StudentHandler) Get(c echo.Context, req *StudentIDRequest) (models.Student, error) {
	return h.students.Get(c.Request().Context(), req.ID)
}

func (h *StudentHandler) Update(c echo.Context, req *UpdateStudentRequest) (models.Student, error) {
	return h.students.Update(c.Request().Context(), req.ID, models.Student{
		RollNo: *req.RollNo,
		Name:   req.Name,
		Class:  req.Class,
	})
}

func (h *StudentHandler) Delete(c echo.Context, req *StudentIDRequest) (MessageResponse, error) {
	if err := h.students.Delete(c.Request().Context(), req.ID); err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{Message: fmt.Sprintf("Student id=%d deleted", req.ID)}, nil
}
