package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// ClassRepository is the persistence surface the class service depends on.
type ClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

// ClassService manages classes.
type ClassService struct {
	repo ClassRepository
}

// NewClassService creates a new instance of ClassService.
func NewClassService(repo ClassRepository) *ClassService {
	return &ClassService{repo: repo}
}

// Get returns a class by identifier.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.FromError(err)
	}
	return class, nil
}

// List returns classes matching the filter with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown class status")
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.FromError(err)
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return classes, models.NewPagination(total, page, limit), nil
}

// Create adds a class in ACTIVE status.
func (s *ClassService) Create(ctx context.Context, req models.CreateClassRequest) (*models.Class, error) {
	if req.EndDate != nil && !req.EndDate.After(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be after startDate")
	}

	class := &models.Class{
		Name:      req.Name,
		Level:     req.Level,
		Capacity:  req.Capacity,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.ClassStatusActive,
		SubjectID: req.SubjectID,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.FromError(err)
	}
	return class, nil
}

// Update applies a partial update to a class.
func (s *ClassService) Update(ctx context.Context, id string, req models.UpdateClassRequest) (*models.Class, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		class.Name = *req.Name
	}
	if req.Level != nil {
		class.Level = *req.Level
	}
	if req.Capacity != nil {
		class.Capacity = *req.Capacity
	}
	if req.StartDate != nil {
		class.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		class.EndDate = req.EndDate
	}
	if req.SubjectID != nil {
		class.SubjectID = req.SubjectID
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown class status")
		}
		class.Status = *req.Status
	}

	if class.EndDate != nil && !class.EndDate.After(class.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be after startDate")
	}

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.FromError(err)
	}
	return class, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.FromError(err)
	}
	return nil
}
