package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/response"
)

// GuardianStudentService is the behaviour the guardian link handler
// depends on.
type GuardianStudentService interface {
	Link(ctx context.Context, req models.CreateGuardianStudentRequest) (*models.GuardianStudent, error)
	Get(ctx context.Context, id string) (*models.GuardianStudent, error)
	SetPrimary(ctx context.Context, id string) (*models.GuardianStudent, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.GuardianStudentWithGuardian, error)
	ListByGuardian(ctx context.Context, guardianID string) ([]models.GuardianStudentWithStudent, error)
	Unlink(ctx context.Context, id string) error
}

// GuardianStudentHandler exposes guardian-student link endpoints.
type GuardianStudentHandler struct {
	service GuardianStudentService
}

// NewGuardianStudentHandler creates a new instance of
// GuardianStudentHandler.
func NewGuardianStudentHandler(service GuardianStudentService) *GuardianStudentHandler {
	return &GuardianStudentHandler{service: service}
}

// Link godoc
// @Summary      Link a guardian to a student
// @Tags         guardians
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body models.CreateGuardianStudentRequest true "Link"
// @Success      201 {object} response.Envelope{data=models.GuardianStudent}
// @Failure      409 {object} response.Envelope
// @Router       /guardian-students [post]
func (h *GuardianStudentHandler) Link(c *gin.Context) {
	var req models.CreateGuardianStudentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	link, err := h.service.Link(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Get godoc
// @Summary      Get a guardian-student link
// @Tags         guardians
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link id"
// @Success      200 {object} response.Envelope{data=models.GuardianStudent}
// @Failure      404 {object} response.Envelope
// @Router       /guardian-students/{id} [get]
func (h *GuardianStudentHandler) Get(c *gin.Context) {
	link, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// SetPrimary godoc
// @Summary      Mark a link as the student's primary contact
// @Tags         guardians
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link id"
// @Success      200 {object} response.Envelope{data=models.GuardianStudent}
// @Failure      404 {object} response.Envelope
// @Router       /guardian-students/{id}/primary [post]
func (h *GuardianStudentHandler) SetPrimary(c *gin.Context) {
	link, err := h.service.SetPrimary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// ListByStudent godoc
// @Summary      List a student's guardians, primary first
// @Tags         guardians
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Student id"
// @Success      200 {object} response.Envelope{data=[]models.GuardianStudentWithGuardian}
// @Router       /students/{id}/guardians [get]
func (h *GuardianStudentHandler) ListByStudent(c *gin.Context) {
	links, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// ListByGuardian godoc
// @Summary      List the students linked to a guardian
// @Tags         guardians
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Guardian id"
// @Success      200 {object} response.Envelope{data=[]models.GuardianStudentWithStudent}
// @Router       /guardians/{id}/students [get]
func (h *GuardianStudentHandler) ListByGuardian(c *gin.Context) {
	links, err := h.service.ListByGuardian(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// Unlink godoc
// @Summary      Remove a guardian-student link
// @Tags         guardians
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Link id"
// @Success      204 "No Content"
// @Failure      404 {object} response.Envelope
// @Router       /guardian-students/{id} [delete]
func (h *GuardianStudentHandler) Unlink(c *gin.Context) {
	if err := h.service.Unlink(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
