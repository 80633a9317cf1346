package documents

import (
	"context"

	"github.com/google/uuid"
	"github.com/smartclaim/backend/internal/claims"
)

// DocumentRepository defines data access for documents
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*Document, error)
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Document, error)
	// ListFingerprints returns every stored fingerprint across all claims,
	// oldest document first.
	ListFingerprints(ctx context.Context) ([]*FingerprintRecord, error)
	ListNonDuplicateTypes(ctx context.Context, claimID uuid.UUID) ([]string, error)
	UpdateOCR(ctx context.Context, docID uuid.UUID, text string, confidence int) error
}

// ClaimReader is the slice of the claims repository used for ownership checks
type ClaimReader interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
}

// ReadinessRecomputer recalculates a claim's readiness after uploads
type ReadinessRecomputer interface {
	Recompute(ctx context.Context, claimID uuid.UUID) (int, error)
}
