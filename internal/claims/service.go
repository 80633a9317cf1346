package claims

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/validation"
	"go.uber.org/zap"
)

// Service handles claim lifecycle business logic up to submission
type Service struct {
	repo     ClaimRepository
	policies PolicyReader
}

// NewService creates a new claims service
func NewService(repo ClaimRepository, policies PolicyReader) *Service {
	return &Service{repo: repo, policies: policies}
}

// CreateClaim opens a new DRAFT claim against one of the user's policies
func (s *Service) CreateClaim(ctx context.Context, userID uuid.UUID, req *CreateClaimRequest) (*Claim, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewBadRequestError(err.Error(), nil)
	}

	policy, err := s.policies.GetByID(ctx, req.PolicyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Policy not found or does not belong to user", nil)
		}
		logger.WithContext(ctx).Error("failed to load policy", zap.Error(err))
		return nil, common.NewInternalServerError("failed to create claim")
	}
	if policy.UserID != userID {
		return nil, common.NewNotFoundError("Policy not found or does not belong to user", nil)
	}

	claimNumber, err := s.nextClaimNumber(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("failed to generate claim number", zap.Error(err))
		return nil, common.NewInternalServerError("failed to create claim")
	}

	now := time.Now().UTC()
	claim := &Claim{
		ID:                  uuid.New(),
		ClaimNumber:         claimNumber,
		UserID:              userID,
		PolicyID:            req.PolicyID,
		ClaimType:           req.ClaimType,
		IncidentDate:        req.IncidentDate,
		IncidentLocation:    req.IncidentLocation,
		IncidentDescription: req.IncidentDescription,
		ClaimedAmountCents:  req.ClaimedAmountCents,
		Status:              StatusDraft,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, claim); err != nil {
		logger.WithContext(ctx).Error("failed to create claim", zap.Error(err))
		return nil, common.NewInternalServerError("failed to create claim")
	}

	return claim, nil
}

// nextClaimNumber produces CLM-<year>-<6 digit sequence>, resetting the
// sequence each calendar year.
func (s *Service) nextClaimNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("CLM-%d-", time.Now().UTC().Year())

	latest, err := s.repo.LatestClaimNumber(ctx, prefix)
	if err != nil {
		return "", err
	}

	seq := 1
	if latest != "" {
		parts := strings.Split(latest, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s%06d", prefix, seq), nil
}

// ListClaims returns the user's claims and the total count, optionally
// filtered by status.
func (s *Service) ListClaims(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Claim, int64, error) {
	result, err := s.repo.ListByUser(ctx, userID, status, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list claims")
	}

	total, err := s.repo.CountByUser(ctx, userID, status)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to count claims")
	}

	return result, total, nil
}

// GetClaim returns a single claim, scoped to its owner
func (s *Service) GetClaim(ctx context.Context, userID, claimID uuid.UUID) (*Claim, error) {
	claim, err := s.repo.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Claim not found", nil)
		}
		return nil, common.NewInternalServerError("failed to get claim")
	}
	if claim.UserID != userID {
		return nil, common.NewNotFoundError("Claim not found", nil)
	}

	return claim, nil
}

// UpdateClaim edits a DRAFT claim. Submitted claims are immutable through
// this path.
func (s *Service) UpdateClaim(ctx context.Context, userID, claimID uuid.UUID, req *UpdateClaimRequest) (*Claim, error) {
	claim, err := s.GetClaim(ctx, userID, claimID)
	if err != nil {
		return nil, err
	}

	if claim.Status != StatusDraft {
		return nil, common.NewBadRequestError("Only DRAFT claims can be updated", nil)
	}

	if req.IncidentDate != nil {
		claim.IncidentDate = *req.IncidentDate
	}
	if req.IncidentLocation != nil {
		claim.IncidentLocation = req.IncidentLocation
	}
	if req.IncidentDescription != nil {
		claim.IncidentDescription = req.IncidentDescription
	}
	if req.ClaimedAmountCents != nil {
		claim.ClaimedAmountCents = *req.ClaimedAmountCents
	}

	if err := s.repo.Update(ctx, claim); err != nil {
		logger.WithContext(ctx).Error("failed to update claim", zap.Error(err))
		return nil, common.NewInternalServerError("failed to update claim")
	}

	return claim, nil
}
