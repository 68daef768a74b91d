package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/config"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// AuthRepository is the persistence surface the auth service depends on.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindDetailByID(ctx context.Context, id string) (*models.UserDetail, error)
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, userID, token string) (*models.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID string, next *models.RefreshToken) error
	DeleteRefreshTokensByValue(ctx context.Context, token string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuthService implements login, refresh rotation and logout.
type AuthService struct {
	repo   AuthRepository
	jwtCfg config.JWTConfig
	logger *zap.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(repo AuthRepository, jwtCfg config.JWTConfig, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, jwtCfg: jwtCfg, logger: logger}
}

// Login verifies credentials and issues an access token plus a persisted
// refresh token. An unknown email reports not-found; a wrong password
// reports invalid credentials.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.FromError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	refreshToken, expiresAt, err := s.generateRefreshToken(user.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	if err := s.repo.CreateRefreshToken(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.audit(ctx, user.ID, models.AuditActionLogin, req.IP, req.UserAgent)

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: models.UserInfo{
			ID:       user.ID,
			FullName: user.FullName(),
			Email:    user.Email,
			Role:     user.Role,
		},
	}, nil
}

// Refresh rotates a refresh token: the presented token is verified against
// its stored row, consumed, and replaced in one step. A token that was
// already rotated away no longer matches a row and is rejected, which is
// what makes each refresh token single-use.
func (s *AuthService) Refresh(ctx context.Context, token, ip, userAgent string) (*models.RefreshResponse, error) {
	claims, err := s.parseRefreshToken(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid refresh token")
	}

	stored, err := s.repo.FindRefreshToken(ctx, claims.Subject, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token revoked")
		}
		return nil, appErrors.FromError(err)
	}

	if time.Now().After(stored.ExpiresAt) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token expired")
	}

	user, err := s.repo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token revoked")
		}
		return nil, appErrors.FromError(err)
	}

	nextToken, expiresAt, err := s.generateRefreshToken(user.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	if err := s.repo.RotateRefreshToken(ctx, stored.ID, &models.RefreshToken{
		UserID:    user.ID,
		Token:     nextToken,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, appErrors.FromError(err)
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	s.audit(ctx, user.ID, models.AuditActionRefresh, ip, userAgent)

	return &models.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: nextToken,
	}, nil
}

// Logout revokes the presented refresh token. Logging out with an unknown
// or already-revoked token still succeeds.
func (s *AuthService) Logout(ctx context.Context, token, ip, userAgent string) error {
	if token == "" {
		return nil
	}

	var userID string
	if claims, err := s.parseRefreshToken(token); err == nil {
		userID = claims.Subject
	}

	if err := s.repo.DeleteRefreshTokensByValue(ctx, token); err != nil {
		return appErrors.FromError(err)
	}

	if userID != "" {
		s.audit(ctx, userID, models.AuditActionLogout, ip, userAgent)
	}
	return nil
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.UserDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.FromError(err)
	}
	return detail, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		FullName: user.FullName(),
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.AccessSecret))
}

func (s *AuthService) generateRefreshToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtCfg.RefreshExpiration)
	claims := models.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    s.jwtCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtCfg.RefreshSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *AuthService) parseRefreshToken(token string) (*models.RefreshClaims, error) {
	claims := &models.RefreshClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtCfg.RefreshSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

// audit records the event without failing the request on error.
func (s *AuthService) audit(ctx context.Context, userID, action, ip, userAgent string) {
	err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "auth",
		IPAddress: ip,
		UserAgent: userAgent,
	})
	if err != nil {
		s.logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}
