package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/internal/repository"
	"github.com/schoolcore/school-api/pkg/config"
)

// SeedRepository is the persistence surface the seeder depends on.
type SeedRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User, profile repository.ProfileWriter) error
}

// SeedService ensures the bootstrap admin account exists at startup.
type SeedService struct {
	repo   SeedRepository
	logger *zap.Logger
}

// NewSeedService creates a new instance of SeedService.
func NewSeedService(repo SeedRepository, logger *zap.Logger) *SeedService {
	return &SeedService{repo: repo, logger: logger}
}

// EnsureAdmin creates the configured admin user when it does not exist.
// Seeding is skipped when no credentials are configured.
func (s *SeedService) EnsureAdmin(ctx context.Context, cfg config.SeedConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		s.logger.Info("admin seed skipped, no credentials configured")
		return nil
	}

	if _, err := s.repo.FindByEmail(ctx, cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	firstName, lastName := splitName(cfg.AdminName)
	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.repo.Create(ctx, user, nil); err != nil {
		return err
	}

	s.logger.Info("admin user seeded", zap.String("email", cfg.AdminEmail))
	return nil
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "Admin", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
