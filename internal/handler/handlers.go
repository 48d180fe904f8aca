package handler

import (
	"github.com/deppfellow/attendance-api/internal/server"
	"github.com/deppfellow/attendance-api/internal/service"
)

// Handlers groups all HTTP handlers so the router receives one value.
type Handlers struct {
	Health     *HealthHandler
	Student    *StudentHandler
	Attendance *AttendanceHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(s),
		Student:    NewStudentHandler(s, services.Students),
		Attendance: NewAttendanceHandler(s, services.Attendance),
	}
}

// MessageResponse is the body returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}
