package fraud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
	"github.com/smartclaim/backend/internal/policies"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"go.uber.org/zap"
)

// Signal weights. Signals are additive and the total is capped at MaxScore.
const (
	WeightDocumentAnomaly  = 40
	WeightAmountAnomaly    = 20
	WeightFrequencyAnomaly = 15
	WeightQualityAnomaly   = 15
	WeightOCRAnomaly       = 10

	MaxScore = 100

	// FrequencyClaimThreshold is the number of claims in the trailing year
	// above which frequency becomes a signal.
	FrequencyClaimThreshold = 3

	lowQualityThreshold    = 50
	lowConfidenceThreshold = 50
)

// Signal is a single contribution to the fraud score
type Signal struct {
	Type    string `json:"type"`
	Score   int    `json:"score"`
	Message string `json:"message"`
}

// Result is the outcome of scoring a claim
type Result struct {
	FraudScore int      `json:"fraud_score"`
	Signals    []Signal `json:"signals"`
}

// PolicyReader is the slice of the policies repository the scorer needs
type PolicyReader interface {
	GetByID(ctx context.Context, policyID uuid.UUID) (*policies.Policy, error)
}

// DocumentLister lists a claim's documents
type DocumentLister interface {
	ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*documents.Document, error)
}

// ClaimCounter counts a user's claims created at or after a cutoff
type ClaimCounter interface {
	CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

// Service computes a 0-100 fraud score from fixed, ordered signals
type Service struct {
	policies    PolicyReader
	docs        DocumentLister
	claimCounts ClaimCounter
	now         func() time.Time
}

// NewService creates a new fraud scoring service
func NewService(policyReader PolicyReader, docs DocumentLister, claimCounts ClaimCounter) *Service {
	return &Service{policies: policyReader, docs: docs, claimCounts: claimCounts, now: time.Now}
}

// WithNow overrides the clock, for tests
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Score evaluates a claim's fraud signals in a fixed order: duplicate
// documents, claimed amount versus coverage, claim frequency, document
// quality, and OCR confidence on the hospital bill. Each signal is additive
// and the total is capped at 100.
func (s *Service) Score(ctx context.Context, claim *claims.Claim) (*Result, error) {
	score := 0
	signals := []Signal{}

	docs, err := s.docs.ListByClaim(ctx, claim.ID)
	if err != nil {
		logger.WithContext(ctx).Error("failed to list documents for fraud scoring", zap.Error(err))
		return nil, common.NewInternalServerError("failed to score claim")
	}

	// 1. Duplicate documents
	for _, doc := range docs {
		if doc.IsDuplicate {
			score += WeightDocumentAnomaly
			signals = append(signals, Signal{
				Type:    "document_anomaly",
				Score:   WeightDocumentAnomaly,
				Message: "Duplicate documents detected",
			})
			break
		}
	}

	// 2. Claimed amount above 80% of the sum insured. The comparison is
	// integer-exact: claimed > 0.8*sum  <=>  5*claimed > 4*sum.
	policy, err := s.policies.GetByID(ctx, claim.PolicyID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.WithContext(ctx).Error("failed to load policy for fraud scoring", zap.Error(err))
		return nil, common.NewInternalServerError("failed to score claim")
	}
	if policy != nil && 5*claim.ClaimedAmountCents > 4*policy.SumInsuredCents {
		score += WeightAmountAnomaly
		signals = append(signals, Signal{
			Type:    "amount_anomaly",
			Score:   WeightAmountAnomaly,
			Message: "Claim amount > 80% of sum insured",
		})
	}

	// 3. Claim frequency over the trailing year
	oneYearAgo := s.now().UTC().AddDate(0, 0, -365)
	claimCount, err := s.claimCounts.CountByUserSince(ctx, claim.UserID, oneYearAgo)
	if err != nil {
		logger.WithContext(ctx).Error("failed to count claims for fraud scoring", zap.Error(err))
		return nil, common.NewInternalServerError("failed to score claim")
	}
	if claimCount > FrequencyClaimThreshold {
		score += WeightFrequencyAnomaly
		signals = append(signals, Signal{
			Type:    "frequency_anomaly",
			Score:   WeightFrequencyAnomaly,
			Message: fmt.Sprintf("High claim frequency (%d in last year)", claimCount),
		})
	}

	// 4. Low mean document quality
	if len(docs) > 0 {
		total := 0
		for _, doc := range docs {
			total += doc.QualityScore
		}
		if float64(total)/float64(len(docs)) < lowQualityThreshold {
			score += WeightQualityAnomaly
			signals = append(signals, Signal{
				Type:    "quality_anomaly",
				Score:   WeightQualityAnomaly,
				Message: "Low average document quality",
			})
		}
	}

	// 5. Low OCR confidence on a health claim's hospital bill
	if claim.ClaimType == claims.TypeHealth {
		for _, doc := range docs {
			if doc.DocumentType != documents.TypeHospitalBill {
				continue
			}
			confidence := 0
			if doc.OCRConfidence != nil {
				confidence = *doc.OCRConfidence
			}
			if confidence < lowConfidenceThreshold {
				score += WeightOCRAnomaly
				signals = append(signals, Signal{
					Type:    "ocr_anomaly",
					Score:   WeightOCRAnomaly,
					Message: "Low OCR confidence for hospital bill",
				})
			}
			break
		}
	}

	if score > MaxScore {
		score = MaxScore
	}

	return &Result{FraudScore: score, Signals: signals}, nil
}
