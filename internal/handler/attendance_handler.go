package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/response"
)

// AttendanceService is the behaviour the attendance handler depends on.
type AttendanceService interface {
	Mark(ctx context.Context, req models.MarkAttendanceRequest) (*models.Attendance, error)
	Update(ctx context.Context, id string, req models.UpdateAttendanceRequest) (*models.Attendance, error)
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceDetail, error)
	ListByStudent(ctx context.Context, studentID string, page, limit int) ([]models.StudentAttendanceRow, *models.Pagination, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service AttendanceService
}

// NewAttendanceHandler creates a new instance of AttendanceHandler.
func NewAttendanceHandler(service AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Mark godoc
// @Summary      Record attendance for a student in a draft session
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body models.MarkAttendanceRequest true "Mark"
// @Success      201 {object} response.Envelope{data=models.Attendance}
// @Failure      409 {object} response.Envelope
// @Router       /attendances [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req models.MarkAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	attendance, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attendance)
}

// Update godoc
// @Summary      Change a mark while its session is a draft
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                         true "Attendance id"
// @Param        payload body models.UpdateAttendanceRequest true "Fields to update"
// @Success      200 {object} response.Envelope{data=models.Attendance}
// @Failure      409 {object} response.Envelope
// @Router       /attendances/{id} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req models.UpdateAttendanceRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	attendance, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// Delete godoc
// @Summary      Remove a mark while its session is a draft
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Attendance id"
// @Success      204 "No Content"
// @Failure      409 {object} response.Envelope
// @Router       /attendances/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListBySession godoc
// @Summary      List attendance for a session
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session id"
// @Success      200 {object} response.Envelope{data=[]models.AttendanceDetail}
// @Failure      404 {object} response.Envelope
// @Router       /sessions/{id}/attendances [get]
func (h *AttendanceHandler) ListBySession(c *gin.Context) {
	marks, err := h.service.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ListByStudent godoc
// @Summary      List a student's attendance history newest-first
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "Student id"
// @Param        page  query int    false "Page number"
// @Param        limit query int    false "Page size"
// @Success      200 {object} response.Envelope{data=[]models.StudentAttendanceRow}
// @Router       /students/{id}/attendances [get]
func (h *AttendanceHandler) ListByStudent(c *gin.Context) {
	rows, pagination, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"),
		queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, pagination)
}
