package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
	"github.com/smartclaim/backend/internal/fraud"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/internal/validation"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"go.uber.org/zap"
)

// ClaimStore is the slice of the claims repository the workflow needs
type ClaimStore interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
	Update(ctx context.Context, claim *claims.Claim) error
}

// DocumentLister lists a claim's documents
type DocumentLister interface {
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*documents.Document, error)
}

// ReadinessScorer recomputes a claim's readiness score
type ReadinessScorer interface {
	Recompute(ctx context.Context, claimID uuid.UUID) (int, error)
}

// Validator evaluates a claim against the submission business rules
type Validator interface {
	Validate(ctx context.Context, claim *claims.Claim) (*validation.Result, error)
}

// FraudScorer computes a claim's fraud score
type FraudScorer interface {
	Score(ctx context.Context, claim *claims.Claim) (*fraud.Result, error)
}

// TextExtractor runs OCR for a single document
type TextExtractor interface {
	ExtractForDocument(ctx context.Context, userID, documentID uuid.UUID) (*documents.Document, error)
}

// Service orchestrates claim submission: readiness, validation, OCR, fraud
// scoring and the final decision.
type Service struct {
	claims    ClaimStore
	docs      DocumentLister
	readiness ReadinessScorer
	validator Validator
	scorer    FraudScorer
	extractor TextExtractor
	timeline  timeline.Recorder
}

// NewService creates a new workflow service
func NewService(claimStore ClaimStore, docs DocumentLister, readiness ReadinessScorer, validator Validator, scorer FraudScorer, extractor TextExtractor, recorder timeline.Recorder) *Service {
	return &Service{
		claims:    claimStore,
		docs:      docs,
		readiness: readiness,
		validator: validator,
		scorer:    scorer,
		extractor: extractor,
		timeline:  recorder,
	}
}

// Submit runs the decision pipeline for a DRAFT claim. Validation failures
// reject the claim without fraud scoring; otherwise the fraud score and
// claimed amount pick between auto-approval, auto-rejection and human review.
func (s *Service) Submit(ctx context.Context, userID, claimID uuid.UUID) (*DecisionResult, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Claim not found", nil)
		}
		logger.WithContext(ctx).Error("failed to load claim for submission", zap.Error(err))
		return nil, common.NewInternalServerError("failed to submit claim")
	}
	if claim.UserID != userID {
		return nil, common.NewNotFoundError("Claim not found", nil)
	}

	if claim.Status != claims.StatusDraft {
		return nil, common.NewBadRequestError(fmt.Sprintf("Claim status is %s, cannot submit", claim.Status), nil)
	}

	claim.Status = claims.StatusSubmitted
	if err := s.claims.Update(ctx, claim); err != nil {
		logger.WithContext(ctx).Error("failed to mark claim submitted", zap.Error(err))
		return nil, common.NewInternalServerError("failed to submit claim")
	}
	if err := s.timeline.Record(ctx, claimID, timeline.EventStatusChanged, timeline.ActorSystem, "Claim submitted for processing", nil); err != nil {
		return nil, err
	}

	readinessScore, err := s.readiness.Recompute(ctx, claimID)
	if err != nil {
		return nil, err
	}
	claim.ReadinessScore = &readinessScore

	valResult, err := s.validator.Validate(ctx, claim)
	if err != nil {
		return nil, err
	}

	if !valResult.Passed {
		return s.rejectForValidation(ctx, claim, valResult.Reasons)
	}

	if err := s.timeline.Record(ctx, claimID, timeline.EventValidated, timeline.ActorSystem, "Validation passed", nil); err != nil {
		return nil, err
	}

	if err := s.runOCR(ctx, userID, claim); err != nil {
		return nil, err
	}

	fraudResult, err := s.scorer.Score(ctx, claim)
	if err != nil {
		return nil, err
	}
	claim.FraudScore = &fraudResult.FraudScore

	signalMeta := make([]interface{}, 0, len(fraudResult.Signals))
	for _, sig := range fraudResult.Signals {
		signalMeta = append(signalMeta, map[string]interface{}{
			"type":    sig.Type,
			"score":   sig.Score,
			"message": sig.Message,
		})
	}
	if err := s.timeline.Record(ctx, claimID, timeline.EventFraudScored, timeline.ActorSystem,
		fmt.Sprintf("Fraud score calculated: %d", fraudResult.FraudScore),
		map[string]interface{}{"signals": signalMeta},
	); err != nil {
		return nil, err
	}

	s.decide(claim, fraudResult.FraudScore)

	if err := s.claims.Update(ctx, claim); err != nil {
		logger.WithContext(ctx).Error("failed to persist claim decision", zap.Error(err))
		return nil, common.NewInternalServerError("failed to submit claim")
	}

	if err := s.timeline.Record(ctx, claimID, timeline.EventStatusChanged, timeline.ActorSystem,
		fmt.Sprintf("Claim %s by decision engine (%s)", claim.Status, *claim.DecisionType), nil,
	); err != nil {
		return nil, err
	}

	result := buildResult(claim)
	result.Signals = fraudResult.Signals
	return result, nil
}

// Assess reports a claim's current readiness and fraud scores without
// changing its status or stored fraud score. Readiness recomputation follows
// its usual idempotent persist-on-change rule.
func (s *Service) Assess(ctx context.Context, userID, claimID uuid.UUID) (*RiskAssessment, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Claim not found", nil)
		}
		logger.WithContext(ctx).Error("failed to load claim for risk assessment", zap.Error(err))
		return nil, common.NewInternalServerError("failed to assess claim")
	}
	if claim.UserID != userID {
		return nil, common.NewNotFoundError("Claim not found", nil)
	}

	readinessScore, err := s.readiness.Recompute(ctx, claimID)
	if err != nil {
		return nil, err
	}

	fraudResult, err := s.scorer.Score(ctx, claim)
	if err != nil {
		return nil, err
	}

	return &RiskAssessment{
		ClaimID:        claimID,
		ReadinessScore: readinessScore,
		FraudScore:     fraudResult.FraudScore,
		Signals:        fraudResult.Signals,
	}, nil
}

// rejectForValidation finalizes a claim that failed the business rules.
// Fraud scoring is skipped entirely, so the fraud score stays unset.
func (s *Service) rejectForValidation(ctx context.Context, claim *claims.Claim, reasons []string) (*DecisionResult, error) {
	decision := claims.DecisionAutoRejected
	reason := strings.Join(reasons, "; ")

	claim.Status = claims.StatusRejected
	claim.DecisionType = &decision
	claim.RejectionReason = &reason

	if err := s.claims.Update(ctx, claim); err != nil {
		logger.WithContext(ctx).Error("failed to persist validation rejection", zap.Error(err))
		return nil, common.NewInternalServerError("failed to submit claim")
	}

	reasonMeta := make([]interface{}, 0, len(reasons))
	for _, r := range reasons {
		reasonMeta = append(reasonMeta, r)
	}
	if err := s.timeline.Record(ctx, claim.ID, timeline.EventValidated, timeline.ActorSystem, "validation_failed",
		map[string]interface{}{"reasons": reasonMeta},
	); err != nil {
		return nil, err
	}
	if err := s.timeline.Record(ctx, claim.ID, timeline.EventStatusChanged, timeline.ActorSystem, "Claim rejected due to validation failure", nil); err != nil {
		return nil, err
	}

	return buildResult(claim), nil
}

// runOCR extracts text for the claim type's key document. Only documents
// that have never been attempted (nil text) are processed; an empty string
// is a completed attempt and is not retried.
func (s *Service) runOCR(ctx context.Context, userID uuid.UUID, claim *claims.Claim) error {
	targetType := documents.TypeRepairEstimate
	if claim.ClaimType == claims.TypeHealth {
		targetType = documents.TypeHospitalBill
	}

	docs, err := s.docs.ListByClaim(ctx, claim.ID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list documents for OCR", zap.Error(err))
		return common.NewInternalServerError("failed to submit claim")
	}

	for _, doc := range docs {
		if doc.DocumentType != targetType || doc.OCRText != nil {
			continue
		}
		if _, err := s.extractor.ExtractForDocument(ctx, userID, doc.ID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Service) decide(claim *claims.Claim, score int) {
	switch {
	case score < AutoApproveMaxScore && claim.ClaimedAmountCents <= AutoApproveMaxAmountCents:
		decision := claims.DecisionAutoApproved
		approved := claim.ClaimedAmountCents
		claim.Status = claims.StatusApproved
		claim.DecisionType = &decision
		claim.ApprovedAmountCents = &approved
	case score > AutoRejectMinScore:
		decision := claims.DecisionAutoRejected
		reason := HighRiskRejectionReason
		claim.Status = claims.StatusRejected
		claim.DecisionType = &decision
		claim.RejectionReason = &reason
	default:
		decision := claims.DecisionHumanReviewed
		claim.Status = claims.StatusUnderReview
		claim.DecisionType = &decision
	}
}

func buildResult(claim *claims.Claim) *DecisionResult {
	return &DecisionResult{
		ClaimID:             claim.ID,
		ClaimNumber:         claim.ClaimNumber,
		Status:              claim.Status,
		ReadinessScore:      claim.ReadinessScore,
		FraudScore:          claim.FraudScore,
		DecisionType:        claim.DecisionType,
		RejectionReason:     claim.RejectionReason,
		ApprovedAmountCents: claim.ApprovedAmountCents,
		Signals:             []fraud.Signal{},
	}
}
