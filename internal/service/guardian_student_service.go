package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// GuardianStudentRepository is the persistence surface the guardian link
// service depends on.
type GuardianStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.GuardianStudent, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.GuardianStudentWithGuardian, error)
	ListByGuardian(ctx context.Context, guardianID string) ([]models.GuardianStudentWithStudent, error)
	Create(ctx context.Context, link *models.GuardianStudent) error
	SetPrimary(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// GuardianStudentService manages guardian-student links.
type GuardianStudentService struct {
	repo GuardianStudentRepository
}

// NewGuardianStudentService creates a new instance of
// GuardianStudentService.
func NewGuardianStudentService(repo GuardianStudentRepository) *GuardianStudentService {
	return &GuardianStudentService{repo: repo}
}

// Link connects a guardian to a student. A pair is linked at most once.
// When the link is created as primary, any existing primary link of the
// student is demoted.
func (s *GuardianStudentService) Link(ctx context.Context, req models.CreateGuardianStudentRequest) (*models.GuardianStudent, error) {
	link := &models.GuardianStudent{
		GuardianID:   req.GuardianID,
		StudentID:    req.StudentID,
		RelationType: req.RelationType,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "guardian already linked to this student")
		}
		return nil, appErrors.FromError(err)
	}

	if req.IsPrimary {
		if err := s.repo.SetPrimary(ctx, link.ID); err != nil {
			return nil, appErrors.FromError(err)
		}
		link.IsPrimary = true
	}
	return link, nil
}

// Get returns a single guardian-student link.
func (s *GuardianStudentService) Get(ctx context.Context, id string) (*models.GuardianStudent, error) {
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return nil, appErrors.FromError(err)
	}
	return link, nil
}

// SetPrimary marks the link as the student's primary contact, demoting any
// other primary link of the same student.
func (s *GuardianStudentService) SetPrimary(ctx context.Context, id string) (*models.GuardianStudent, error) {
	if err := s.repo.SetPrimary(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return nil, appErrors.FromError(err)
	}

	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return link, nil
}

// ListByStudent returns a student's guardians, primary first.
func (s *GuardianStudentService) ListByStudent(ctx context.Context, studentID string) ([]models.GuardianStudentWithGuardian, error) {
	links, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return links, nil
}

// ListByGuardian returns the students linked to a guardian.
func (s *GuardianStudentService) ListByGuardian(ctx context.Context, guardianID string) ([]models.GuardianStudentWithStudent, error) {
	links, err := s.repo.ListByGuardian(ctx, guardianID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return links, nil
}

// Unlink removes a guardian-student link.
func (s *GuardianStudentService) Unlink(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "guardian link not found")
		}
		return appErrors.FromError(err)
	}
	return nil
}
