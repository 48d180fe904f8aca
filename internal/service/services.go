// Package service contains the business logic.
//
// It sits between the handler and repository layers. It checks that the
// records a request refers to exist, calls the repositories, and composes
// the stored rows returned to clients.
package service

import (
	"github.com/deppfellow/attendance-api/internal/repository"
	"github.com/deppfellow/attendance-api/internal/server"
)

type Services struct {
	Students   *StudentService
	Attendance *AttendanceService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Students:   NewStudentService(s, repos.Students),
		Attendance: NewAttendanceService(s, repos.Students, repos.Attendance),
	}
}
