package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/response"
)

// EnrollmentService is the behaviour the enrollment handler depends on.
type EnrollmentService interface {
	Enroll(ctx context.Context, req models.EnrollRequest) (*models.StudentClass, error)
	Update(ctx context.Context, id string, req models.UpdateEnrollmentRequest) (*models.StudentClass, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentClassWithClass, error)
	ListByClass(ctx context.Context, classID string) ([]models.StudentClassWithStudent, error)
	Delete(ctx context.Context, id string) error
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	service EnrollmentService
}

// NewEnrollmentHandler creates a new instance of EnrollmentHandler.
func NewEnrollmentHandler(service EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll godoc
// @Summary      Enroll a student in a class
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload body models.EnrollRequest true "Enrollment"
// @Success      201 {object} response.Envelope{data=models.StudentClass}
// @Failure      409 {object} response.Envelope
// @Router       /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Update godoc
// @Summary      Update an enrollment
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                         true "Enrollment id"
// @Param        payload body models.UpdateEnrollmentRequest true "Fields to update"
// @Success      200 {object} response.Envelope{data=models.StudentClass}
// @Failure      404 {object} response.Envelope
// @Router       /enrollments/{id} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	var req models.UpdateEnrollmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	enrollment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// ListByStudent godoc
// @Summary      List a student's enrollments
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Student id"
// @Success      200 {object} response.Envelope{data=[]models.StudentClassWithClass}
// @Router       /students/{id}/classes [get]
func (h *EnrollmentHandler) ListByStudent(c *gin.Context) {
	enrollments, err := h.service.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// ListByClass godoc
// @Summary      List a class roster
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Class id"
// @Success      200 {object} response.Envelope{data=[]models.StudentClassWithStudent}
// @Router       /classes/{id}/students [get]
func (h *EnrollmentHandler) ListByClass(c *gin.Context) {
	enrollments, err := h.service.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Delete godoc
// @Summary      Remove an enrollment
// @Tags         enrollments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Enrollment id"
// @Success      204 "No Content"
// @Failure      404 {object} response.Envelope
// @Router       /enrollments/{id} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
