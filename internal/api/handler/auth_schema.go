package handler

import (
	"time"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

// --- Request / Response types ---

type registerRequest struct {
	Email           string `json:"email"            validate:"required,email,max=255"`
	Password        string `json:"password"         validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	FullName        string `json:"full_name"        validate:"required,max=100"`
	Username        string `json:"username"         validate:"omitempty,min=3,max=30"`
}

type loginRequest struct {
	Email      string `json:"email"    validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"            validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

type updatePasswordRequest struct {
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// Response-only types owned by the transport layer. These are intentionally
// separate from domain types so the JSON contract is not coupled to internal
// changes.

type userResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type sessionResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type authResponse struct {
	User    *userResponse    `json:"user,omitempty"`
	Session *sessionResponse `json:"session,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

func toSessionResponse(s *domain.Session) *sessionResponse {
	if s == nil {
		return nil
	}
	return &sessionResponse{
		AccessToken: s.AccessToken,
		ExpiresAt:   s.ExpiresAt,
	}
}
