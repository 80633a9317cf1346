package policies

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles policy data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ PolicyRepository = (*Repository)(nil)

// NewRepository creates a new policies repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new policy
func (r *Repository) Create(ctx context.Context, policy *Policy) error {
	coverageJSON, err := json.Marshal(policy.CoverageDetails)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO policies (
			id, user_id, policy_number, policy_type, insurer_name,
			sum_insured_cents, premium_cents, start_date, end_date,
			status, coverage_details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err = r.db.Exec(ctx, query,
		policy.ID,
		policy.UserID,
		policy.PolicyNumber,
		policy.PolicyType,
		policy.InsurerName,
		policy.SumInsuredCents,
		policy.PremiumCents,
		policy.StartDate,
		policy.EndDate,
		policy.Status,
		coverageJSON,
		policy.CreatedAt,
	)

	return err
}

// GetByID retrieves a policy by ID
func (r *Repository) GetByID(ctx context.Context, policyID uuid.UUID) (*Policy, error) {
	return r.getOne(ctx, `WHERE id = $1`, policyID)
}

// GetByNumber retrieves a policy by its policy number
func (r *Repository) GetByNumber(ctx context.Context, policyNumber string) (*Policy, error) {
	return r.getOne(ctx, `WHERE policy_number = $1`, policyNumber)
}

func (r *Repository) getOne(ctx context.Context, where string, arg interface{}) (*Policy, error) {
	query := `
		SELECT id, user_id, policy_number, policy_type, insurer_name,
		       sum_insured_cents, premium_cents, start_date, end_date,
		       status, coverage_details, created_at
		FROM policies ` + where

	policy, err := scanPolicy(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, err
	}
	return policy, nil
}

// ListByUser retrieves a user's policies newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Policy, error) {
	query := `
		SELECT id, user_id, policy_number, policy_type, insurer_name,
		       sum_insured_cents, premium_cents, start_date, end_date,
		       status, coverage_details, created_at
		FROM policies
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := make([]*Policy, 0)
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}

	return policies, rows.Err()
}

// CountByUser counts a user's policies
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM policies WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (*Policy, error) {
	var policy Policy
	var coverageJSON []byte
	var premium sql.NullInt64

	err := row.Scan(
		&policy.ID,
		&policy.UserID,
		&policy.PolicyNumber,
		&policy.PolicyType,
		&policy.InsurerName,
		&policy.SumInsuredCents,
		&premium,
		&policy.StartDate,
		&policy.EndDate,
		&policy.Status,
		&coverageJSON,
		&policy.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if premium.Valid {
		policy.PremiumCents = &premium.Int64
	}
	if len(coverageJSON) > 0 {
		if err := json.Unmarshal(coverageJSON, &policy.CoverageDetails); err != nil {
			policy.CoverageDetails = nil
		}
	}

	return &policy, nil
}
