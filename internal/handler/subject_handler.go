package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/response"
)

// SubjectService is the behaviour the subject handler depends on.
type SubjectService interface {
	Get(ctx context.Context, id string) (*models.Subject, error)
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error)
	Create(ctx context.Context, req models.CreateSubjectRequest) (*models.Subject, error)
	Update(ctx context.Context, id string, req models.UpdateSubjectRequest) (*models.Subject, error)
	Delete(ctx context.Context, id string) error
}

// SubjectHandler exposes subject endpoints.
type SubjectHandler struct {
	service SubjectService
}

// NewSubjectHandler creates a new instance of SubjectHandler.
func NewSubjectHandler(service SubjectService) *SubjectHandler {
	return &SubjectHandler{service: service}
}

// List godoc
// @Summary      List subjects
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Match name or code"
// @Param        page   query int    false "Page number"
// @Param        limit  query int    false "Page size"
// @Success      200 {object} response.Envelope{data=[]models.Subject}
// @Router       /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	filter := models.SubjectFilter{
		Search: c.Query("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	subjects, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, pagination)
}

// Get godoc
// @Summary      Get a subject
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Subject id"
// @Success      200 {object} response.Envelope{data=models.Subject}
// @Failure      404 {object} response.Envelope
// @Router       /subjects/{id} [get]
func (h *SubjectHandler) Get(c *gin.Context) {
	subject, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Create godoc
// @Summary      Create a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body models.CreateSubjectRequest true "Subject"
// @Success      201 {object} response.Envelope{data=models.Subject}
// @Failure      409 {object} response.Envelope
// @Router       /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req models.CreateSubjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	subject, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary      Update a subject
// @Tags         subjects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                      true "Subject id"
// @Param        payload body models.UpdateSubjectRequest true "Fields to update"
// @Success      200 {object} response.Envelope{data=models.Subject}
// @Failure      404 {object} response.Envelope
// @Router       /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	var req models.UpdateSubjectRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	subject, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary      Delete a subject
// @Tags         subjects
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Subject id"
// @Success      204 "No Content"
// @Failure      404 {object} response.Envelope
// @Router       /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
