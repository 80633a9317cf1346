package policies

import (
	"context"

	"github.com/google/uuid"
)

// PolicyRepository defines data access for policies
type PolicyRepository interface {
	Create(ctx context.Context, policy *Policy) error
	GetByID(ctx context.Context, policyID uuid.UUID) (*Policy, error)
	GetByNumber(ctx context.Context, policyNumber string) (*Policy, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Policy, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
