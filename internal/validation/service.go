package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/policies"
	"github.com/smartclaim/backend/internal/readiness"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"go.uber.org/zap"
)

// Result is the outcome of running every validation rule against a claim
type Result struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons"`
}

// PolicyReader is the slice of the policies repository the engine needs
type PolicyReader interface {
	GetByID(ctx context.Context, policyID uuid.UUID) (*policies.Policy, error)
}

// DocumentTypeLister lists the distinct non-duplicate document types on a claim
type DocumentTypeLister interface {
	ListNonDuplicateTypes(ctx context.Context, claimID uuid.UUID) ([]string, error)
}

// Service evaluates claims against the submission business rules
type Service struct {
	policies PolicyReader
	docs     DocumentTypeLister
	now      func() time.Time
}

// NewService creates a new validation service
func NewService(policyReader PolicyReader, docs DocumentTypeLister) *Service {
	return &Service{policies: policyReader, docs: docs, now: time.Now}
}

// WithNow overrides the clock, for tests
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Validate runs all rules against a claim. A missing policy or one owned by
// another user fails immediately; every other rule is evaluated independently
// so the caller sees all failures at once.
func (s *Service) Validate(ctx context.Context, claim *claims.Claim) (*Result, error) {
	reasons := []string{}

	policy, err := s.policies.GetByID(ctx, claim.PolicyID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.WithContext(ctx).Error("failed to load policy for validation", zap.Error(err))
		return nil, common.NewInternalServerError("failed to validate claim")
	}

	if policy == nil {
		reasons = append(reasons, "Policy not found")
		return &Result{Passed: false, Reasons: reasons}, nil
	}
	if policy.UserID != claim.UserID {
		reasons = append(reasons, "Policy does not belong to the user")
		return &Result{Passed: false, Reasons: reasons}, nil
	}

	if policy.Status != policies.StatusActive {
		reasons = append(reasons, fmt.Sprintf("Policy status is %s", policy.Status))
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := policy.StartDate.UTC().Truncate(24 * time.Hour)
	end := policy.EndDate.UTC().Truncate(24 * time.Hour)
	if today.Before(start) || today.After(end) {
		reasons = append(reasons, "Policy is not currently active (date mismatch)")
	}

	if claim.ClaimedAmountCents > policy.SumInsuredCents {
		reasons = append(reasons, fmt.Sprintf("Claimed amount (%s) exceeds sum insured (%s)",
			claims.FormatCents(claim.ClaimedAmountCents), claims.FormatCents(policy.SumInsuredCents)))
	}

	if required := readiness.RequiredDocuments[claim.ClaimType]; len(required) > 0 {
		types, err := s.docs.ListNonDuplicateTypes(ctx, claim.ID)
		if err != nil {
			logger.WithContext(ctx).Error("failed to list document types for validation", zap.Error(err))
			return nil, common.NewInternalServerError("failed to validate claim")
		}

		uploaded := make(map[string]bool, len(types))
		for _, t := range types {
			uploaded[t] = true
		}

		missing := make([]string, 0)
		for _, t := range required {
			if !uploaded[t] {
				missing = append(missing, t)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			reasons = append(reasons, fmt.Sprintf("Missing required documents: %s", strings.Join(missing, ", ")))
		}
	}

	return &Result{Passed: len(reasons) == 0, Reasons: reasons}, nil
}
