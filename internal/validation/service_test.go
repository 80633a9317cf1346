package validation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/policies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// MOCK IMPLEMENTATIONS
// ========================================

type MockPolicyReader struct {
	GetByIDFunc func(ctx context.Context, policyID uuid.UUID) (*policies.Policy, error)
}

func (m *MockPolicyReader) GetByID(ctx context.Context, policyID uuid.UUID) (*policies.Policy, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, policyID)
	}
	return nil, pgx.ErrNoRows
}

type MockDocumentTypeLister struct {
	ListNonDuplicateTypesFunc func(ctx context.Context, claimID uuid.UUID) ([]string, error)
}

func (m *MockDocumentTypeLister) ListNonDuplicateTypes(ctx context.Context, claimID uuid.UUID) ([]string, error) {
	if m.ListNonDuplicateTypesFunc != nil {
		return m.ListNonDuplicateTypesFunc(ctx, claimID)
	}
	return nil, nil
}

// ========================================
// HELPERS
// ========================================

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func activePolicy(userID uuid.UUID) *policies.Policy {
	return &policies.Policy{
		ID:              uuid.New(),
		UserID:          userID,
		PolicyType:      policies.TypeHealth,
		SumInsuredCents: 50_000_00,
		StartDate:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:          policies.StatusActive,
	}
}

func healthClaim(userID, policyID uuid.UUID, amountCents int64) *claims.Claim {
	return &claims.Claim{
		ID:                 uuid.New(),
		UserID:             userID,
		PolicyID:           policyID,
		ClaimType:          claims.TypeHealth,
		ClaimedAmountCents: amountCents,
	}
}

func fullHealthDocs() []string {
	return []string{"hospital_bill", "discharge_summary", "prescription"}
}

func newTestService(policy *policies.Policy, docTypes []string) *Service {
	reader := &MockPolicyReader{}
	if policy != nil {
		reader.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*policies.Policy, error) {
			return policy, nil
		}
	}
	lister := &MockDocumentTypeLister{
		ListNonDuplicateTypesFunc: func(ctx context.Context, id uuid.UUID) ([]string, error) {
			return docTypes, nil
		},
	}
	return NewService(reader, lister).WithNow(func() time.Time { return testNow })
}

// ========================================
// TESTS
// ========================================

func TestValidate_Passes(t *testing.T) {
	userID := uuid.New()
	policy := activePolicy(userID)
	claim := healthClaim(userID, policy.ID, 10_000_00)

	result, err := newTestService(policy, fullHealthDocs()).Validate(context.Background(), claim)
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Empty(t, result.Reasons)
}

func TestValidate_MissingPolicyShortCircuits(t *testing.T) {
	userID := uuid.New()
	claim := healthClaim(userID, uuid.New(), 10_000_00)

	// Even with every other rule failing, a missing policy is the only reason.
	result, err := newTestService(nil, nil).Validate(context.Background(), claim)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, []string{"Policy not found"}, result.Reasons)
}

func TestValidate_ForeignPolicyShortCircuits(t *testing.T) {
	policy := activePolicy(uuid.New())
	claim := healthClaim(uuid.New(), policy.ID, 10_000_00)

	result, err := newTestService(policy, nil).Validate(context.Background(), claim)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, []string{"Policy does not belong to the user"}, result.Reasons)
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	userID := uuid.New()
	policy := activePolicy(userID)
	policy.Status = policies.StatusExpired
	policy.EndDate = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	policy.SumInsuredCents = 5_000_00

	claim := healthClaim(userID, policy.ID, 80_000_00)

	result, err := newTestService(policy, []string{"hospital_bill"}).Validate(context.Background(), claim)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, []string{
		"Policy status is expired",
		"Policy is not currently active (date mismatch)",
		"Claimed amount (80000.00) exceeds sum insured (5000.00)",
		"Missing required documents: discharge_summary, prescription",
	}, result.Reasons)
}

func TestValidate_AmountAtSumInsuredPasses(t *testing.T) {
	userID := uuid.New()
	policy := activePolicy(userID)
	claim := healthClaim(userID, policy.ID, policy.SumInsuredCents)

	result, err := newTestService(policy, fullHealthDocs()).Validate(context.Background(), claim)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestValidate_DateBoundsInclusive(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name   string
		start  time.Time
		end    time.Time
		passed bool
	}{
		{"today is start date", testNow.Truncate(24 * time.Hour), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), true},
		{"today is end date", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), testNow.Truncate(24 * time.Hour), true},
		{"starts tomorrow", testNow.AddDate(0, 0, 1), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"ended yesterday", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), testNow.AddDate(0, 0, -1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := activePolicy(userID)
			policy.StartDate = tt.start
			policy.EndDate = tt.end
			claim := healthClaim(userID, policy.ID, 10_000_00)

			result, err := newTestService(policy, fullHealthDocs()).Validate(context.Background(), claim)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, result.Passed)
		})
	}
}

func TestValidate_DuplicatesDoNotSatisfyRequirements(t *testing.T) {
	userID := uuid.New()
	policy := activePolicy(userID)
	claim := healthClaim(userID, policy.ID, 10_000_00)

	// The lister already excludes duplicates; a claim whose prescription was
	// only uploaded as a duplicate still reads as missing it.
	result, err := newTestService(policy, []string{"hospital_bill", "discharge_summary"}).Validate(context.Background(), claim)
	require.NoError(t, err)

	assert.False(t, result.Passed)
	assert.Equal(t, []string{"Missing required documents: prescription"}, result.Reasons)
}
