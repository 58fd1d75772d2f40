package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every HTTP handler served by the API.
type Handlers struct {
	Skaters     *SkaterHandler
	Notes       *NoteHandler
	Sessions    *SessionHandler
	Enrollments *EnrollmentHandler
	Attendance  *AttendanceHandler
	Exports     *ExportHandler
	Dashboard   *DashboardHandler
	Instructor  *InstructorHandler
	Media       *MediaHandler
}

// RegisterRoutes mounts the API routes on the given group.
func RegisterRoutes(api gin.IRouter, h Handlers) {
	skaters := api.Group("/skaters")
	skaters.GET("", h.Skaters.List)
	skaters.POST("", h.Skaters.Create)
	skaters.GET("/:id", h.Skaters.Get)
	skaters.PATCH("/:id", h.Skaters.Update)
	skaters.DELETE("/:id", h.Skaters.Delete)
	skaters.GET("/:id/history", h.Skaters.History)
	skaters.GET("/:id/history/export", h.Exports.SkaterHistory)
	skaters.GET("/:id/notes", h.Notes.List)
	skaters.POST("/:id/notes", h.Notes.Add)

	sessions := api.Group("/sessions")
	sessions.GET("", h.Sessions.List)
	sessions.POST("", h.Sessions.Create)
	sessions.GET("/:id", h.Sessions.Get)
	sessions.PATCH("/:id", h.Sessions.Update)
	sessions.GET("/:id/enrollments", h.Enrollments.List)
	sessions.POST("/:id/enrollments", h.Enrollments.Enroll)
	sessions.DELETE("/:id/enrollments/:skaterId", h.Enrollments.Unenroll)
	sessions.GET("/:id/candidates", h.Enrollments.Candidates)
	sessions.GET("/:id/attendance", h.Attendance.View)
	sessions.GET("/:id/attendance/export", h.Exports.SessionAttendance)
	sessions.POST("/:id/attendance/:skaterId/toggle", h.Attendance.Toggle)

	api.GET("/dashboard/stats", h.Dashboard.Stats)
	api.GET("/instructor", h.Instructor.Get)
	api.PUT("/instructor", h.Instructor.Update)

	api.POST("/media/photos", h.Media.Upload)
	api.GET("/media/photos/:token", h.Media.Download)
}

// RegisterOps mounts liveness, readiness and Prometheus endpoints.
func RegisterOps(r gin.IRouter, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
}
