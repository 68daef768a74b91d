package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// EnrollmentRepository is the persistence surface the enrollment service
// depends on.
type EnrollmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentClass, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentClassWithClass, error)
	ListByClass(ctx context.Context, classID string) ([]models.StudentClassWithStudent, error)
	CountActiveByClass(ctx context.Context, classID string) (int, error)
	Create(ctx context.Context, enrollment *models.StudentClass) error
	Update(ctx context.Context, enrollment *models.StudentClass) error
	Delete(ctx context.Context, id string) error
}

// ClassReader resolves classes for enrollment guards.
type ClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// EnrollmentService manages student-class enrollments.
type EnrollmentService struct {
	repo    EnrollmentRepository
	classes ClassReader
}

// NewEnrollmentService creates a new instance of EnrollmentService.
func NewEnrollmentService(repo EnrollmentRepository, classes ClassReader) *EnrollmentService {
	return &EnrollmentService{repo: repo, classes: classes}
}

// Enroll adds a student to a class. A student enrolls in a class at most
// once, and enrollment stops at the class capacity.
func (s *EnrollmentService) Enroll(ctx context.Context, req models.EnrollRequest) (*models.StudentClass, error) {
	status := models.EnrollmentStatusActive
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
		}
		status = *req.Status
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.FromError(err)
	}
	if class.Status == models.ClassStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot enroll into an archived class")
	}

	active, err := s.repo.CountActiveByClass(ctx, req.ClassID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	if class.Capacity > 0 && active >= class.Capacity {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class is at capacity")
	}

	enrollment := &models.StudentClass{
		StudentID:     req.StudentID,
		ClassID:       req.ClassID,
		Status:        status,
		EnrollmentEnd: req.EnrollmentEnd,
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in this class")
		}
		return nil, appErrors.FromError(err)
	}
	return enrollment, nil
}

// Update applies a partial update to an enrollment.
func (s *EnrollmentService) Update(ctx context.Context, id string, req models.UpdateEnrollmentRequest) (*models.StudentClass, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.FromError(err)
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
		}
		enrollment.Status = *req.Status
	}
	if req.EnrollmentEnd != nil {
		enrollment.EnrollmentEnd = req.EnrollmentEnd
	}
	if req.Notes != nil {
		enrollment.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, enrollment); err != nil {
		return nil, appErrors.FromError(err)
	}
	return enrollment, nil
}

// ListByStudent returns a student's enrollments with class context.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]models.StudentClassWithClass, error) {
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return enrollments, nil
}

// ListByClass returns a class roster with student context.
func (s *EnrollmentService) ListByClass(ctx context.Context, classID string) ([]models.StudentClassWithStudent, error) {
	enrollments, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return enrollments, nil
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.FromError(err)
	}
	return nil
}
