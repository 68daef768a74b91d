package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/response"
)

// ClassService is the behaviour the class handler depends on.
type ClassService interface {
	Get(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error)
	Create(ctx context.Context, req models.CreateClassRequest) (*models.Class, error)
	Update(ctx context.Context, id string, req models.UpdateClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id string) error
}

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	service ClassService
}

// NewClassHandler creates a new instance of ClassHandler.
func NewClassHandler(service ClassService) *ClassHandler {
	return &ClassHandler{service: service}
}

// List godoc
// @Summary      List classes
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Match name or level"
// @Param        status query string false "Filter by status"
// @Param        page   query int    false "Page number"
// @Param        limit  query int    false "Page size"
// @Success      200 {object} response.Envelope{data=[]models.Class}
// @Router       /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	filter := models.ClassFilter{
		Search: c.Query("search"),
		Status: models.ClassStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	classes, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, pagination)
}

// Get godoc
// @Summary      Get a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Class id"
// @Success      200 {object} response.Envelope{data=models.Class}
// @Failure      404 {object} response.Envelope
// @Router       /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary      Create a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body models.CreateClassRequest true "Class"
// @Success      201 {object} response.Envelope{data=models.Class}
// @Router       /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req models.CreateClassRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary      Update a class
// @Tags         classes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                    true "Class id"
// @Param        payload body models.UpdateClassRequest true "Fields to update"
// @Success      200 {object} response.Envelope{data=models.Class}
// @Failure      404 {object} response.Envelope
// @Router       /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req models.UpdateClassRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary      Delete a class
// @Tags         classes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Class id"
// @Success      204 "No Content"
// @Failure      404 {object} response.Envelope
// @Router       /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
