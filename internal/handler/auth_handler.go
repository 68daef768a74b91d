package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/config"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
	"github.com/schoolcore/school-api/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthService is the behaviour the auth handler depends on.
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Refresh(ctx context.Context, token, ip, userAgent string) (*models.RefreshResponse, error)
	Logout(ctx context.Context, token, ip, userAgent string) error
	Me(ctx context.Context, userID string) (*models.UserDetail, error)
}

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	service AuthService
	jwtCfg  config.JWTConfig
	secure  bool
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(service AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service: service,
		jwtCfg:  cfg.JWT,
		secure:  cfg.Env == config.EnvProduction,
	}
}

// Login godoc
// @Summary      Authenticate a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload body models.LoginRequest true "Credentials"
// @Success      200 {object} response.Envelope{data=models.LoginResponse}
// @Failure      400 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.JSON(c, http.StatusOK, result, nil)
}

// Refresh godoc
// @Summary      Rotate the refresh token and issue a new access token
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.Envelope{data=models.RefreshResponse}
// @Failure      401 {object} response.Envelope
// @Failure      403 {object} response.Envelope
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token required"))
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), token, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.clearRefreshCookie(c)
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	response.JSON(c, http.StatusOK, result, nil)
}

// Logout godoc
// @Summary      Revoke the refresh token
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.Envelope
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)

	if err := h.service.Logout(c.Request.Context(), token, c.ClientIP(), c.Request.UserAgent()); err != nil {
		response.Error(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.JSON(c, http.StatusOK, gin.H{"message": "logged out"}, nil)
}

// Me godoc
// @Summary      Return the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Envelope{data=models.UserDetail}
// @Failure      401 {object} response.Envelope
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	detail, err := h.service.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// setRefreshCookie delivers the refresh token to browsers only. SameSite
// None keeps the cookie usable from a frontend on another origin.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, token, int(h.jwtCfg.RefreshExpiration.Seconds()), "/", "", h.secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", h.secure, true)
}
