package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/config"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

type mockAuthRepo struct {
	findByEmail       func(ctx context.Context, email string) (*models.User, error)
	findByID          func(ctx context.Context, id string) (*models.User, error)
	findDetail        func(ctx context.Context, id string) (*models.UserDetail, error)
	createToken       func(ctx context.Context, token *models.RefreshToken) error
	findToken         func(ctx context.Context, userID, token string) (*models.RefreshToken, error)
	rotateToken       func(ctx context.Context, oldID string, next *models.RefreshToken) error
	deleteTokens      func(ctx context.Context, token string) error
	createdAuditLogs  []models.AuditLog
	createAuditResult error
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.findByEmail(ctx, email)
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return m.findByID(ctx, id)
}

func (m *mockAuthRepo) FindDetailByID(ctx context.Context, id string) (*models.UserDetail, error) {
	return m.findDetail(ctx, id)
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return m.createToken(ctx, token)
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, userID, token string) (*models.RefreshToken, error) {
	return m.findToken(ctx, userID, token)
}

func (m *mockAuthRepo) RotateRefreshToken(ctx context.Context, oldID string, next *models.RefreshToken) error {
	return m.rotateToken(ctx, oldID, next)
}

func (m *mockAuthRepo) DeleteRefreshTokensByValue(ctx context.Context, token string) error {
	return m.deleteTokens(ctx, token)
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.createdAuditLogs = append(m.createdAuditLogs, *log)
	return m.createAuditResult
}

var testJWTCfg = config.JWTConfig{
	AccessSecret:      "access-secret",
	RefreshSecret:     "refresh-secret",
	Expiration:        time.Hour,
	RefreshExpiration: 7 * 24 * time.Hour,
	Issuer:            "school-api",
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLogin(t *testing.T) {
	user := &models.User{
		ID:           "user-1",
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleTeacher,
	}

	var storedToken *models.RefreshToken
	repo := &mockAuthRepo{
		findByEmail: func(_ context.Context, email string) (*models.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, sql.ErrNoRows
		},
		createToken: func(_ context.Context, token *models.RefreshToken) error {
			storedToken = token
			return nil
		},
	}
	svc := NewAuthService(repo, testJWTCfg, zap.NewNop())

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "jane@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "Jane Doe", result.User.FullName)
	assert.Equal(t, models.RoleTeacher, result.User.Role)

	require.NotNil(t, storedToken)
	assert.Equal(t, user.ID, storedToken.UserID)
	assert.Equal(t, result.RefreshToken, storedToken.Token)

	// The refresh token is a JWT signed with the refresh secret and carries
	// a unique jti.
	claims := &models.RefreshClaims{}
	_, err = jwt.ParseWithClaims(result.RefreshToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTCfg.RefreshSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.NotEmpty(t, claims.ID)

	require.Len(t, repo.createdAuditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.createdAuditLogs[0].Action)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockAuthRepo{
		findByEmail: func(context.Context, string) (*models.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := NewAuthService(repo, testJWTCfg, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "x"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           "user-1",
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "correct"),
		Role:         models.RoleAdmin,
	}
	repo := &mockAuthRepo{
		findByEmail: func(context.Context, string) (*models.User, error) { return user, nil },
	}
	svc := NewAuthService(repo, testJWTCfg, zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "wrong"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "invalid credentials", appErr.Message)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "jane@example.com", Role: models.RoleTeacher}

	svc := NewAuthService(&mockAuthRepo{}, testJWTCfg, zap.NewNop())
	token, expiresAt, err := svc.generateRefreshToken(user.ID)
	require.NoError(t, err)

	stored := &models.RefreshToken{ID: "row-1", UserID: user.ID, Token: token, ExpiresAt: expiresAt}

	var rotatedOldID string
	var rotatedNext *models.RefreshToken
	repo := &mockAuthRepo{
		findByID: func(context.Context, string) (*models.User, error) { return user, nil },
		findToken: func(_ context.Context, userID, presented string) (*models.RefreshToken, error) {
			if userID == user.ID && presented == token {
				return stored, nil
			}
			return nil, sql.ErrNoRows
		},
		rotateToken: func(_ context.Context, oldID string, next *models.RefreshToken) error {
			rotatedOldID = oldID
			rotatedNext = next
			return nil
		},
	}
	svc = NewAuthService(repo, testJWTCfg, zap.NewNop())

	result, err := svc.Refresh(context.Background(), token, "127.0.0.1", "test")
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, token, result.RefreshToken)
	assert.Equal(t, "row-1", rotatedOldID)
	require.NotNil(t, rotatedNext)
	assert.Equal(t, result.RefreshToken, rotatedNext.Token)
}

func TestAuthServiceRefreshIsSingleUse(t *testing.T) {
	user := &models.User{ID: "user-1", Role: models.RoleTeacher}

	svc := NewAuthService(&mockAuthRepo{}, testJWTCfg, zap.NewNop())
	token, _, err := svc.generateRefreshToken(user.ID)
	require.NoError(t, err)

	// The stored row was already consumed by a previous rotation.
	repo := &mockAuthRepo{
		findToken: func(context.Context, string, string) (*models.RefreshToken, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc = NewAuthService(repo, testJWTCfg, zap.NewNop())

	_, err = svc.Refresh(context.Background(), token, "", "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestAuthServiceRefreshRejectsForgedToken(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"})
	signed, err := forged.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	svc := NewAuthService(&mockAuthRepo{}, testJWTCfg, zap.NewNop())
	_, err = svc.Refresh(context.Background(), signed, "", "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestAuthServiceRefreshRejectsExpiredRow(t *testing.T) {
	user := &models.User{ID: "user-1"}

	svc := NewAuthService(&mockAuthRepo{}, testJWTCfg, zap.NewNop())
	token, _, err := svc.generateRefreshToken(user.ID)
	require.NoError(t, err)

	repo := &mockAuthRepo{
		findToken: func(context.Context, string, string) (*models.RefreshToken, error) {
			return &models.RefreshToken{ID: "row-1", UserID: user.ID, Token: token, ExpiresAt: time.Now().Add(-time.Minute)}, nil
		},
	}
	svc = NewAuthService(repo, testJWTCfg, zap.NewNop())

	_, err = svc.Refresh(context.Background(), token, "", "")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}

func TestAuthServiceLogoutIsIdempotent(t *testing.T) {
	deleted := 0
	repo := &mockAuthRepo{
		deleteTokens: func(context.Context, string) error {
			deleted++
			return nil
		},
	}
	svc := NewAuthService(repo, testJWTCfg, zap.NewNop())

	token, _, err := svc.generateRefreshToken("user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token, "", ""))
	require.NoError(t, svc.Logout(context.Background(), token, "", ""))
	assert.Equal(t, 2, deleted)

	// Empty token is a no-op success.
	require.NoError(t, svc.Logout(context.Background(), "", "", ""))
	assert.Equal(t, 2, deleted)
}
