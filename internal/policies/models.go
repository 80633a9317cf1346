package policies

import (
	"time"

	"github.com/google/uuid"
)

// Policy statuses
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Policy types
const (
	TypeHealth = "health"
	TypeMotor  = "motor"
)

// Policy represents an insurance policy linked to a user.
// Monetary amounts are stored in cents to keep arithmetic exact.
type Policy struct {
	ID              uuid.UUID              `json:"id"`
	UserID          uuid.UUID              `json:"user_id"`
	PolicyNumber    string                 `json:"policy_number"`
	PolicyType      string                 `json:"policy_type"`
	InsurerName     string                 `json:"insurer_name"`
	SumInsuredCents int64                  `json:"sum_insured_cents"`
	PremiumCents    *int64                 `json:"premium_cents,omitempty"`
	StartDate       time.Time              `json:"start_date"`
	EndDate         time.Time              `json:"end_date"`
	Status          string                 `json:"status"`
	CoverageDetails map[string]interface{} `json:"coverage_details,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// LinkPolicyRequest is the payload for linking an existing policy to the
// authenticated user. Dates use YYYY-MM-DD.
type LinkPolicyRequest struct {
	PolicyNumber    string                 `json:"policy_number" binding:"required" validate:"required"`
	PolicyType      string                 `json:"policy_type" binding:"required" validate:"required,claim_type"`
	InsurerName     string                 `json:"insurer_name" binding:"required" validate:"required"`
	SumInsuredCents int64                  `json:"sum_insured_cents" binding:"required" validate:"required,gt=0"`
	PremiumCents    *int64                 `json:"premium_cents,omitempty"`
	StartDate       string                 `json:"start_date" binding:"required" validate:"required,datetime=2006-01-02"`
	EndDate         string                 `json:"end_date" binding:"required" validate:"required,datetime=2006-01-02"`
	CoverageDetails map[string]interface{} `json:"coverage_details,omitempty"`
}
