package claims

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Claim statuses
const (
	StatusDraft       = "DRAFT"
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
	StatusPaid        = "PAID"
)

// Decision types
const (
	DecisionAutoApproved  = "auto_approved"
	DecisionAutoRejected  = "auto_rejected"
	DecisionHumanReviewed = "human_reviewed"
)

// Claim types
const (
	TypeHealth = "health"
	TypeMotor  = "motor"
)

// Claim represents an insurance claim against a policy.
// Monetary amounts are stored in cents.
type Claim struct {
	ID                  uuid.UUID `json:"id"`
	ClaimNumber         string    `json:"claim_number"`
	UserID              uuid.UUID `json:"user_id"`
	PolicyID            uuid.UUID `json:"policy_id"`
	ClaimType           string    `json:"claim_type"`
	IncidentDate        time.Time `json:"incident_date"`
	IncidentLocation    *string   `json:"incident_location,omitempty"`
	IncidentDescription *string   `json:"incident_description,omitempty"`
	ClaimedAmountCents  int64     `json:"claimed_amount_cents"`
	ApprovedAmountCents *int64    `json:"approved_amount_cents,omitempty"`
	Status              string    `json:"status"`
	ReadinessScore      *int      `json:"readiness_score,omitempty"`
	FraudScore          *int      `json:"fraud_score,omitempty"`
	DecisionType        *string   `json:"decision_type,omitempty"`
	RejectionReason     *string   `json:"rejection_reason,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateClaimRequest is the payload for opening a new claim
type CreateClaimRequest struct {
	PolicyID            uuid.UUID `json:"policy_id" binding:"required" validate:"required"`
	ClaimType           string    `json:"claim_type" binding:"required" validate:"required,claim_type"`
	IncidentDate        time.Time `json:"incident_date" binding:"required" validate:"required"`
	IncidentLocation    *string   `json:"incident_location,omitempty"`
	IncidentDescription *string   `json:"incident_description,omitempty"`
	ClaimedAmountCents  int64     `json:"claimed_amount_cents" binding:"required" validate:"required,gt=0"`
}

// UpdateClaimRequest is the payload for editing a claim; only DRAFT claims
// accept edits and only set fields change.
type UpdateClaimRequest struct {
	IncidentDate        *time.Time `json:"incident_date,omitempty"`
	IncidentLocation    *string    `json:"incident_location,omitempty"`
	IncidentDescription *string    `json:"incident_description,omitempty"`
	ClaimedAmountCents  *int64     `json:"claimed_amount_cents,omitempty" validate:"omitempty,gt=0"`
}

// FormatCents renders a cent amount as a decimal currency string, e.g.
// 123450 -> "1234.50". Used in human-facing messages.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
