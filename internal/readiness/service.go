package readiness

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"go.uber.org/zap"
)

// RequiredDocuments maps a claim type to the document types a complete
// submission needs. Claim types outside this map have no requirements and
// always score zero.
var RequiredDocuments = map[string][]string{
	claims.TypeHealth: {"hospital_bill", "discharge_summary", "prescription"},
	claims.TypeMotor:  {"accident_photo", "repair_estimate", "rc_book"},
}

// ClaimStore is the slice of the claims repository the scorer needs
type ClaimStore interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
	Update(ctx context.Context, claim *claims.Claim) error
}

// DocumentTypeLister lists the distinct non-duplicate document types on a claim
type DocumentTypeLister interface {
	ListNonDuplicateTypes(ctx context.Context, claimID uuid.UUID) ([]string, error)
}

// Service recomputes claim readiness from uploaded documents
type Service struct {
	claims   ClaimStore
	docs     DocumentTypeLister
	timeline timeline.Recorder
}

// NewService creates a new readiness service
func NewService(claimStore ClaimStore, docs DocumentTypeLister, recorder timeline.Recorder) *Service {
	return &Service{claims: claimStore, docs: docs, timeline: recorder}
}

// Recompute recalculates the readiness score for a claim: the percentage of
// required document types covered by non-duplicate uploads, truncated to an
// integer. The score is persisted and a READINESS_UPDATED event recorded only
// when the value actually changed. Unknown claims and claim types without
// requirements score zero with no write.
func (s *Service) Recompute(ctx context.Context, claimID uuid.UUID) (int, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		logger.WithContext(ctx).Error("failed to load claim for readiness", zap.Error(err))
		return 0, common.NewInternalServerError("failed to recompute readiness")
	}

	required := RequiredDocuments[claim.ClaimType]
	if len(required) == 0 {
		return 0, nil
	}

	types, err := s.docs.ListNonDuplicateTypes(ctx, claimID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list document types", zap.Error(err))
		return 0, common.NewInternalServerError("failed to recompute readiness")
	}

	uploaded := make(map[string]bool, len(types))
	for _, t := range types {
		uploaded[t] = true
	}

	matched := 0
	for _, t := range required {
		if uploaded[t] {
			matched++
		}
	}

	score := (100 * matched) / len(required)

	oldScore := 0
	if claim.ReadinessScore != nil {
		oldScore = *claim.ReadinessScore
	}
	if score == oldScore {
		return score, nil
	}

	claim.ReadinessScore = &score
	if err := s.claims.Update(ctx, claim); err != nil {
		logger.WithContext(ctx).Error("failed to persist readiness score", zap.Error(err))
		return 0, common.NewInternalServerError("failed to recompute readiness")
	}

	if err := s.timeline.Record(ctx, claimID, timeline.EventReadinessUpdated, timeline.ActorSystem,
		fmt.Sprintf("Readiness score updated from %d to %d", oldScore, score),
		map[string]interface{}{"old_score": oldScore, "new_score": score},
	); err != nil {
		return 0, err
	}

	return score, nil
}
