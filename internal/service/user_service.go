package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/internal/repository"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// UserRepository is the persistence surface the user service depends on.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindDetailByID(ctx context.Context, id string) (*models.UserDetail, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User, profile repository.ProfileWriter) error
	Update(ctx context.Context, user *models.User, profile repository.ProfileWriter) error
	Delete(ctx context.Context, id string) error

	CreateTeacherProfile(ctx context.Context, tx *sqlx.Tx, p *models.TeacherProfile) error
	CreateStudentProfile(ctx context.Context, tx *sqlx.Tx, p *models.StudentProfile) error
	CreateGuardianProfile(ctx context.Context, tx *sqlx.Tx, p *models.GuardianProfile) error
	UpdateTeacherProfile(ctx context.Context, tx *sqlx.Tx, userID string, specialization *string) error
	UpdateStudentProfile(ctx context.Context, tx *sqlx.Tx, userID string, dateOfBirth *time.Time) error
	UpdateGuardianProfile(ctx context.Context, tx *sqlx.Tx, userID string, phoneNumber, address *string) error
	NextStudentNumber(ctx context.Context, tx *sqlx.Tx) (string, error)
}

// UserService manages users and their role profiles.
type UserService struct {
	repo UserRepository

	// createProfiles maps each role onto the writer that maintains its
	// profile row inside the user transaction. Adding a role means adding
	// an entry here, not editing the create path.
	createProfiles map[models.UserRole]func(req models.CreateUserRequest) repository.ProfileWriter
	updateProfiles map[models.UserRole]func(req models.UpdateUserRequest) repository.ProfileWriter
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserRepository) *UserService {
	s := &UserService{repo: repo}

	s.createProfiles = map[models.UserRole]func(req models.CreateUserRequest) repository.ProfileWriter{
		models.RoleAdmin: func(models.CreateUserRequest) repository.ProfileWriter { return nil },
		models.RoleTeacher: func(req models.CreateUserRequest) repository.ProfileWriter {
			return func(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
				return s.repo.CreateTeacherProfile(ctx, tx, &models.TeacherProfile{
					UserID:         user.ID,
					Specialization: req.Specialization,
				})
			}
		},
		models.RoleStudent: func(req models.CreateUserRequest) repository.ProfileWriter {
			return func(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
				number, err := s.repo.NextStudentNumber(ctx, tx)
				if err != nil {
					return err
				}
				return s.repo.CreateStudentProfile(ctx, tx, &models.StudentProfile{
					UserID:        user.ID,
					StudentNumber: number,
					DateOfBirth:   req.DateOfBirth,
				})
			}
		},
		models.RoleGuardian: func(req models.CreateUserRequest) repository.ProfileWriter {
			return func(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
				return s.repo.CreateGuardianProfile(ctx, tx, &models.GuardianProfile{
					UserID:      user.ID,
					PhoneNumber: req.PhoneNumber,
					Address:     req.Address,
				})
			}
		},
	}

	s.updateProfiles = map[models.UserRole]func(req models.UpdateUserRequest) repository.ProfileWriter{
		models.RoleAdmin: func(models.UpdateUserRequest) repository.ProfileWriter { return nil },
		models.RoleTeacher: func(req models.UpdateUserRequest) repository.ProfileWriter {
			if req.Specialization == nil {
				return nil
			}
			return func(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
				return s.repo.UpdateTeacherProfile(ctx, tx, user.ID, req.Specialization)
			}
		},
		models.RoleStudent: func(req models.UpdateUserRequest) repository.ProfileWriter {
			if req.DateOfBirth == nil {
				return nil
			}
			return func(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
				return s.repo.UpdateStudentProfile(ctx, tx, user.ID, req.DateOfBirth)
			}
		},
		models.RoleGuardian: func(req models.UpdateUserRequest) repository.ProfileWriter {
			if req.PhoneNumber == nil && req.Address == nil {
				return nil
			}
			return func(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
				return s.repo.UpdateGuardianProfile(ctx, tx, user.ID, req.PhoneNumber, req.Address)
			}
		},
	}

	return s
}

// Get returns a user with its role profile.
func (s *UserService) Get(ctx context.Context, id string) (*models.UserDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.FromError(err)
	}
	return detail, nil
}

// List returns users matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	users, total, err := s.repo.List(ctx, filter)
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
	return users, models.NewPagination(total, page, limit), nil
}

// Create registers a user and its role profile in one transaction.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.UserDetail, error) {
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	profile := s.createProfiles[req.Role](req)
	if err := s.repo.Create(ctx, user, profile); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.FromError(err)
	}

	return s.Get(ctx, user.ID)
}

// Update applies a partial update to a user and its role profile.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.UserDetail, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.FromError(err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		user.PasswordHash = string(hash)
	}

	profile := s.updateProfiles[user.Role](req)
	if err := s.repo.Update(ctx, user, profile); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.FromError(err)
	}

	return s.Get(ctx, user.ID)
}

// Delete removes a user and its dependent rows.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.FromError(err)
	}
	return nil
}
