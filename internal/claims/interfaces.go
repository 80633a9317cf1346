package claims

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smartclaim/backend/internal/policies"
)

// PolicyReader is the slice of the policies repository the claims service
// needs for ownership checks.
type PolicyReader interface {
	GetByID(ctx context.Context, policyID uuid.UUID) (*policies.Policy, error)
}

// ClaimRepository defines data access for claims
type ClaimRepository interface {
	Create(ctx context.Context, claim *Claim) error
	GetByID(ctx context.Context, claimID uuid.UUID) (*Claim, error)
	Update(ctx context.Context, claim *Claim) error
	ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Claim, error)
	CountByUser(ctx context.Context, userID uuid.UUID, status string) (int64, error)
	CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	LatestClaimNumber(ctx context.Context, prefix string) (string, error)
}
