package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository handles persistence for user accounts
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByPhone(ctx context.Context, phone string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
