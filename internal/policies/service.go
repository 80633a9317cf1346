package policies

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/validation"
	"go.uber.org/zap"
)

// Service handles policy business logic
type Service struct {
	repo PolicyRepository
}

// NewService creates a new policies service
func NewService(repo PolicyRepository) *Service {
	return &Service{repo: repo}
}

// LinkPolicy links a policy to the authenticated user. Policy numbers are
// globally unique; a new policy always starts active.
func (s *Service) LinkPolicy(ctx context.Context, userID uuid.UUID, req *LinkPolicyRequest) (*Policy, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewBadRequestError(err.Error(), nil)
	}

	existing, err := s.repo.GetByNumber(ctx, req.PolicyNumber)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.WithContext(ctx).Error("failed to check policy number", zap.Error(err))
		return nil, common.NewInternalServerError("failed to link policy")
	}
	if existing != nil {
		return nil, common.NewBadRequestError("Policy number already exists", nil)
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, common.NewBadRequestError("invalid start_date", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, common.NewBadRequestError("invalid end_date", err)
	}
	if endDate.Before(startDate) {
		return nil, common.NewBadRequestError("end_date must not be before start_date", nil)
	}

	policy := &Policy{
		ID:              uuid.New(),
		UserID:          userID,
		PolicyNumber:    req.PolicyNumber,
		PolicyType:      req.PolicyType,
		InsurerName:     req.InsurerName,
		SumInsuredCents: req.SumInsuredCents,
		PremiumCents:    req.PremiumCents,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          StatusActive,
		CoverageDetails: req.CoverageDetails,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, policy); err != nil {
		logger.WithContext(ctx).Error("failed to create policy", zap.Error(err))
		return nil, common.NewInternalServerError("failed to link policy")
	}

	return policy, nil
}

// ListPolicies returns the user's policies and total count
func (s *Service) ListPolicies(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Policy, int64, error) {
	policies, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list policies")
	}

	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to count policies")
	}

	return policies, total, nil
}

// GetPolicy returns a single policy, scoped to its owner
func (s *Service) GetPolicy(ctx context.Context, userID, policyID uuid.UUID) (*Policy, error) {
	policy, err := s.repo.GetByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Policy not found", nil)
		}
		return nil, common.NewInternalServerError("failed to get policy")
	}
	if policy.UserID != userID {
		return nil, common.NewNotFoundError("Policy not found", nil)
	}

	return policy, nil
}
