package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/attendance-api/internal/models"
	"github.com/deppfellow/attendance-api/internal/server"
	"github.com/deppfellow/attendance-api/internal/service"
	"github.com/deppfellow/attendance-api/internal/validation"
)

type AttendanceHandler struct {
	Handler
	attendance *service.AttendanceService
}

func NewAttendanceHandler(s *server.Server, attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		Handler:    NewHandler(s),
		attendance: attendance,
	}
}

type ListAttendanceRequest struct{}

func (r *ListAttendanceRequest) Validate() error {
	return nil
}

type MarkAttendanceRequest struct {
	StudentID int64  `json:"student_id" validate:"required,gt=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=Present Absent"`
}

func (r *MarkAttendanceRequest) Validate() error {
	return validation.Struct(r)
}

type AttendanceIDRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *AttendanceIDRequest) Validate() error {
	return validation.Struct(r)
}

type StudentAttendanceRequest struct {
	StudentID int64 `param:"student_id" validate:"required,gt=0"`
}

func (r *StudentAttendanceRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateAttendanceRequest struct {
	ID     int64  `param:"id" json:"-" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,oneof=Present Absent"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	return validation.Struct(r)
}

func (h *AttendanceHandler) List(c echo.Context, _ *ListAttendanceRequest) ([]models.AttendanceView, error) {
	return h.attendance.List(c.Request().Context())
}

func (h *AttendanceHandler) Mark(c echo.Context, req *MarkAttendanceRequest) (models.AttendanceDetail, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return models.AttendanceDetail{}, err
	}

	status, err := models.ParseAttendanceStatus(req.Status)
	if err != nil {
		return models.AttendanceDetail{}, err
	}

	return h.attendance.Mark(c.Request().Context(), req.StudentID, date, status)
}

func (h *AttendanceHandler) Get(c echo.Context, req *AttendanceIDRequest) (models.Attendance, error) {
	return h.attendance.Get(c.Request().Context(), req.ID)
}

func (h *AttendanceHandler) ListByStudent(c echo.Context, req *StudentAttendanceRequest) ([]models.AttendanceEntry, error) {
	return h.attendance.ListByStudent(c.Request().Context(), req.StudentID)
}

func (h *AttendanceHandler) UpdateStatus(c echo.Context, req *UpdateAttendanceRequest) (models.Attendance, error) {
	status, err := models.ParseAttendanceStatus(req.Status)
	if err != nil {
		return models.Attendance{}, err
	}

	return h.attendance.UpdateStatus(c.Request().Context(), req.ID, status)
}

func (h *AttendanceHandler) Delete(c echo.Context, req *AttendanceIDRequest) (MessageResponse, error) {
	if err := h.attendance.Delete(c.Request().Context(), req.ID); err != nil {
		return MessageResponse{}, err
	}
	return MessageResponse{Message: fmt.Sprintf("Attendance id=%d deleted", req.ID)}, nil
}
