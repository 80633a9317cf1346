package claims

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles claim data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ ClaimRepository = (*Repository)(nil)

// NewRepository creates a new claims repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const claimColumns = `
	id, claim_number, user_id, policy_id, claim_type,
	incident_date, incident_location, incident_description,
	claimed_amount_cents, approved_amount_cents, status,
	readiness_score, fraud_score, decision_type, rejection_reason,
	created_at, updated_at
`

// Create inserts a new claim
func (r *Repository) Create(ctx context.Context, claim *Claim) error {
	query := `
		INSERT INTO claims (
			id, claim_number, user_id, policy_id, claim_type,
			incident_date, incident_location, incident_description,
			claimed_amount_cents, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		claim.ID,
		claim.ClaimNumber,
		claim.UserID,
		claim.PolicyID,
		claim.ClaimType,
		claim.IncidentDate,
		claim.IncidentLocation,
		claim.IncidentDescription,
		claim.ClaimedAmountCents,
		claim.Status,
		claim.CreatedAt,
		claim.UpdatedAt,
	)

	return err
}

// GetByID retrieves a claim by ID
func (r *Repository) GetByID(ctx context.Context, claimID uuid.UUID) (*Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	return scanClaim(r.db.QueryRow(ctx, query, claimID))
}

// Update persists a claim's mutable fields
func (r *Repository) Update(ctx context.Context, claim *Claim) error {
	query := `
		UPDATE claims SET
			incident_date = $2,
			incident_location = $3,
			incident_description = $4,
			claimed_amount_cents = $5,
			approved_amount_cents = $6,
			status = $7,
			readiness_score = $8,
			fraud_score = $9,
			decision_type = $10,
			rejection_reason = $11,
			updated_at = $12
		WHERE id = $1
	`

	claim.UpdatedAt = time.Now().UTC()
	tag, err := r.db.Exec(ctx, query,
		claim.ID,
		claim.IncidentDate,
		claim.IncidentLocation,
		claim.IncidentDescription,
		claim.ClaimedAmountCents,
		claim.ApprovedAmountCents,
		claim.Status,
		claim.ReadinessScore,
		claim.FraudScore,
		claim.DecisionType,
		claim.RejectionReason,
		claim.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByUser retrieves a user's claims newest first, optionally filtered by status
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE user_id = $1`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, claim)
	}

	return result, rows.Err()
}

// CountByUser counts a user's claims, optionally filtered by status
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID, status string) (int64, error) {
	var count int64
	var err error
	if status != "" {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE user_id = $1 AND status = $2`, userID, status).Scan(&count)
	} else {
		err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM claims WHERE user_id = $1`, userID).Scan(&count)
	}
	return count, err
}

// CountByUserSince counts a user's claims created at or after the cutoff
func (r *Repository) CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM claims WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&count)
	return count, err
}

// LatestClaimNumber returns the lexicographically greatest claim number with
// the given prefix, or "" when none exists.
func (r *Repository) LatestClaimNumber(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.QueryRow(ctx,
		`SELECT claim_number FROM claims WHERE claim_number LIKE $1 || '%' ORDER BY claim_number DESC LIMIT 1`,
		prefix,
	).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return number, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*Claim, error) {
	var claim Claim
	var incidentLocation, incidentDescription sql.NullString
	var approvedAmount sql.NullInt64
	var readinessScore, fraudScore sql.NullInt32
	var decisionType, rejectionReason sql.NullString

	err := row.Scan(
		&claim.ID,
		&claim.ClaimNumber,
		&claim.UserID,
		&claim.PolicyID,
		&claim.ClaimType,
		&claim.IncidentDate,
		&incidentLocation,
		&incidentDescription,
		&claim.ClaimedAmountCents,
		&approvedAmount,
		&claim.Status,
		&readinessScore,
		&fraudScore,
		&decisionType,
		&rejectionReason,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if incidentLocation.Valid {
		claim.IncidentLocation = &incidentLocation.String
	}
	if incidentDescription.Valid {
		claim.IncidentDescription = &incidentDescription.String
	}
	if approvedAmount.Valid {
		claim.ApprovedAmountCents = &approvedAmount.Int64
	}
	if readinessScore.Valid {
		score := int(readinessScore.Int32)
		claim.ReadinessScore = &score
	}
	if fraudScore.Valid {
		score := int(fraudScore.Int32)
		claim.FraudScore = &score
	}
	if decisionType.Valid {
		claim.DecisionType = &decisionType.String
	}
	if rejectionReason.Valid {
		claim.RejectionReason = &rejectionReason.String
	}

	return &claim, nil
}
