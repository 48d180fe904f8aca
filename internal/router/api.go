package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/attendance-api/internal/handler"
)

func registerStudentRoutes(r *echo.Echo, h *handler.Handlers, ready echo.MiddlewareFunc) {
	r.GET("/api/student-list", handler.Handle(h.Student.List, http.StatusOK), ready)
	r.POST("/api/student-add", handler.Handle(h.Student.Add, http.StatusCreated), ready)

	r.GET("/students/:id", handler.Handle(h.Student.Get, http.StatusOK), ready)
	r.PUT("/students/:id", handler.Handle(h.Student.Update, http.StatusOK), ready)
	r.DELETE("/students/:id", handler.Handle(h.Student.Delete, http.StatusOK), ready)
}

func registerAttendanceRoutes(r *echo.Echo, h *handler.Handlers, ready echo.MiddlewareFunc) {
	r.GET("/api/attendance", handler.Handle(h.Attendance.List, http.StatusOK), ready)
	r.POST("/api/attendance", handler.Handle(h.Attendance.Mark, http.StatusCreated), ready)
	r.DELETE("/api/attendance/:id", handler.Handle(h.Attendance.Delete, http.StatusOK), ready)

	r.GET("/attendance/:id", handler.Handle(h.Attendance.Get, http.StatusOK), ready)
	r.PUT("/attendance/:id", handler.Handle(h.Attendance.UpdateStatus, http.StatusOK), ready)
	r.GET("/attendance/student/:student_id", handler.Handle(h.Attendance.ListByStudent, http.StatusOK), ready)
}
