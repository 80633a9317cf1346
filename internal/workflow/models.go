package workflow

import (
	"github.com/google/uuid"
	"github.com/smartclaim/backend/internal/fraud"
)

// Decision thresholds. Fraud scores below the approve cutoff combined with a
// small claimed amount approve automatically; scores above the reject cutoff
// reject automatically; everything in between goes to a human.
const (
	AutoApproveMaxScore       = 30
	AutoRejectMinScore        = 60
	AutoApproveMaxAmountCents = 1_000_000
)

// HighRiskRejectionReason is stored when the score alone rejects a claim
const HighRiskRejectionReason = "High fraud risk detected based on scoring model."

// RiskAssessment is a read-only snapshot of a claim's scores. The fraud
// score is computed on the fly and never persisted here.
type RiskAssessment struct {
	ClaimID        uuid.UUID      `json:"claim_id"`
	ReadinessScore int            `json:"readiness_score"`
	FraudScore     int            `json:"fraud_score"`
	Signals        []fraud.Signal `json:"signals"`
}

// DecisionResult summarizes a claim after the submit pipeline has run
type DecisionResult struct {
	ClaimID             uuid.UUID      `json:"claim_id"`
	ClaimNumber         string         `json:"claim_number"`
	Status              string         `json:"status"`
	ReadinessScore      *int           `json:"readiness_score,omitempty"`
	FraudScore          *int           `json:"fraud_score,omitempty"`
	DecisionType        *string        `json:"decision_type,omitempty"`
	RejectionReason     *string        `json:"rejection_reason,omitempty"`
	ApprovedAmountCents *int64         `json:"approved_amount_cents,omitempty"`
	Signals             []fraud.Signal `json:"signals"`
}
