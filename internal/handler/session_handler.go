package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/internal/service"
	"github.com/schoolcore/school-api/pkg/response"
)

// SessionService is the behaviour the session handler depends on.
type SessionService interface {
	Get(ctx context.Context, id string) (*models.SessionDetail, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.SessionDetail, *models.Pagination, error)
	Create(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error)
	Update(ctx context.Context, id string, req models.UpdateSessionRequest) (*models.Session, error)
	Validate(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// ExportService renders attendance sheets for download.
type ExportService interface {
	SessionAttendanceSheet(ctx context.Context, sessionID, format string) (*service.ExportFile, error)
}

// SessionHandler exposes session lifecycle endpoints.
type SessionHandler struct {
	service SessionService
	export  ExportService
}

// NewSessionHandler creates a new instance of SessionHandler.
func NewSessionHandler(svc SessionService, export ExportService) *SessionHandler {
	return &SessionHandler{service: svc, export: export}
}

// List godoc
// @Summary      List sessions newest-first
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        search    query string false "Match class name"
// @Param        status    query string false "Filter by status"
// @Param        teacherId query string false "Filter by teacher"
// @Param        page      query int    false "Page number"
// @Param        limit     query int    false "Page size"
// @Success      200 {object} response.Envelope{data=[]models.SessionDetail}
// @Router       /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	filter := models.SessionFilter{
		Search:    c.Query("search"),
		Status:    models.SessionStatus(c.Query("status")),
		TeacherID: c.Query("teacherId"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 10),
	}

	sessions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get godoc
// @Summary      Get a session with class and teacher context
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session id"
// @Success      200 {object} response.Envelope{data=models.SessionDetail}
// @Failure      404 {object} response.Envelope
// @Router       /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary      Schedule a session as a draft
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body models.CreateSessionRequest true "Session"
// @Success      201 {object} response.Envelope{data=models.Session}
// @Failure      400 {object} response.Envelope
// @Router       /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary      Reschedule a draft session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                      true "Session id"
// @Param        payload body models.UpdateSessionRequest true "Fields to update"
// @Success      200 {object} response.Envelope{data=models.Session}
// @Failure      409 {object} response.Envelope
// @Router       /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req models.UpdateSessionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Validate godoc
// @Summary      Validate a session, freezing its attendance
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session id"
// @Success      200 {object} response.Envelope{data=models.Session}
// @Failure      409 {object} response.Envelope
// @Router       /sessions/{id}/validate [post]
func (h *SessionHandler) Validate(c *gin.Context) {
	session, err := h.service.Validate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary      Delete a draft session
// @Tags         sessions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Session id"
// @Success      204 "No Content"
// @Failure      409 {object} response.Envelope
// @Router       /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportAttendance godoc
// @Summary      Download the attendance sheet of a session
// @Tags         sessions
// @Produce      text/csv
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id     path  string true  "Session id"
// @Param        format query string false "csv or pdf" default(csv)
// @Success      200 {file} file
// @Failure      404 {object} response.Envelope
// @Router       /sessions/{id}/attendance/export [get]
func (h *SessionHandler) ExportAttendance(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	file, err := h.export.SessionAttendanceSheet(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
