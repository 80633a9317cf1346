package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered claimant account
type User struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Phone              string    `json:"phone"`
	Email              *string   `json:"email,omitempty"`
	PasswordHash       string    `json:"-"`
	LanguagePreference string    `json:"language_preference"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating a new account
type RegisterRequest struct {
	Name     string  `json:"name" binding:"required" validate:"required,min=1,max=100"`
	Phone    string  `json:"phone" binding:"required" validate:"required,numeric,min=10,max=15"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password string  `json:"password" binding:"required" validate:"required,min=6"`
}

// LoginRequest is the payload for authenticating an existing account
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required" validate:"required,min=10,max=15"`
	Password string `json:"password" binding:"required" validate:"required,min=6"`
}

// TokenResponse carries a freshly issued access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
