package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the access token and user info. The refresh token is
// delivered only through the HTTP-only cookie set by the handler.
type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"-"`
	User         UserInfo `json:"user"`
}

// RefreshResponse returns the rotated access token.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"-"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID       string   `json:"id"`
	FullName string   `json:"fullname"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"fullname"`
	Email    string   `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims is the minimal payload carried by refresh tokens: the subject
// plus a unique token identifier (jti) in RegisteredClaims.ID.
type RefreshClaims struct {
	jwt.RegisteredClaims
}
