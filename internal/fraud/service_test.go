package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
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

type MockDocumentLister struct {
	ListByClaimFunc func(ctx context.Context, claimID uuid.UUID) ([]*documents.Document, error)
}

func (m *MockDocumentLister) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*documents.Document, error) {
	if m.ListByClaimFunc != nil {
		return m.ListByClaimFunc(ctx, claimID)
	}
	return nil, nil
}

type MockClaimCounter struct {
	CountByUserSinceFunc func(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

func (m *MockClaimCounter) CountByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	if m.CountByUserSinceFunc != nil {
		return m.CountByUserSinceFunc(ctx, userID, since)
	}
	return 0, nil
}

// ========================================
// HELPERS
// ========================================

func intPtr(v int) *int { return &v }

func newTestService(policy *policies.Policy, docs []*documents.Document, claimCount int64) *Service {
	reader := &MockPolicyReader{}
	if policy != nil {
		reader.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*policies.Policy, error) {
			return policy, nil
		}
	}
	lister := &MockDocumentLister{
		ListByClaimFunc: func(ctx context.Context, id uuid.UUID) ([]*documents.Document, error) {
			return docs, nil
		},
	}
	counter := &MockClaimCounter{
		CountByUserSinceFunc: func(ctx context.Context, id uuid.UUID, since time.Time) (int64, error) {
			return claimCount, nil
		},
	}
	return NewService(reader, lister, counter)
}

func healthClaim(amountCents int64) *claims.Claim {
	return &claims.Claim{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		PolicyID:           uuid.New(),
		ClaimType:          claims.TypeHealth,
		ClaimedAmountCents: amountCents,
	}
}

func goodBill() *documents.Document {
	return &documents.Document{
		DocumentType:  documents.TypeHospitalBill,
		QualityScore:  80,
		OCRConfidence: intPtr(85),
	}
}

// ========================================
// TESTS
// ========================================

func TestScore_CleanClaim(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 100_000_00}
	claim := healthClaim(10_000_00)

	result, err := newTestService(policy, []*documents.Document{goodBill()}, 1).Score(context.Background(), claim)
	require.NoError(t, err)

	assert.Equal(t, 0, result.FraudScore)
	assert.Empty(t, result.Signals)
}

func TestScore_DuplicateAndAmountSignals(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 10_000_00}
	claim := healthClaim(9_000_00)

	docs := []*documents.Document{
		goodBill(),
		{DocumentType: documents.TypePrescription, QualityScore: 80, IsDuplicate: true},
	}

	result, err := newTestService(policy, docs, 1).Score(context.Background(), claim)
	require.NoError(t, err)

	assert.Equal(t, 60, result.FraudScore)
	require.Len(t, result.Signals, 2)

	// Signals come out in evaluation order.
	assert.Equal(t, "document_anomaly", result.Signals[0].Type)
	assert.Equal(t, 40, result.Signals[0].Score)
	assert.Equal(t, "Duplicate documents detected", result.Signals[0].Message)

	assert.Equal(t, "amount_anomaly", result.Signals[1].Type)
	assert.Equal(t, 20, result.Signals[1].Score)
	assert.Equal(t, "Claim amount > 80% of sum insured", result.Signals[1].Message)
}

func TestScore_AmountBoundaryExact(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 10_000_00}

	// Exactly 80% of the sum insured is not an anomaly; one cent over is.
	at, err := newTestService(policy, nil, 0).Score(context.Background(), healthClaim(8_000_00))
	require.NoError(t, err)
	assert.Equal(t, 0, at.FraudScore)

	over, err := newTestService(policy, nil, 0).Score(context.Background(), healthClaim(8_000_01))
	require.NoError(t, err)
	assert.Equal(t, WeightAmountAnomaly, over.FraudScore)
}

func TestScore_FrequencyThreshold(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 100_000_00}

	atThreshold, err := newTestService(policy, []*documents.Document{goodBill()}, 3).Score(context.Background(), healthClaim(1_000_00))
	require.NoError(t, err)
	assert.Equal(t, 0, atThreshold.FraudScore)

	overThreshold, err := newTestService(policy, []*documents.Document{goodBill()}, 4).Score(context.Background(), healthClaim(1_000_00))
	require.NoError(t, err)
	assert.Equal(t, WeightFrequencyAnomaly, overThreshold.FraudScore)
	require.Len(t, overThreshold.Signals, 1)
	assert.Equal(t, "High claim frequency (4 in last year)", overThreshold.Signals[0].Message)
}

func TestScore_LowQuality(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 100_000_00}
	docs := []*documents.Document{
		{DocumentType: documents.TypeHospitalBill, QualityScore: 30, OCRConfidence: intPtr(85)},
		{DocumentType: documents.TypePrescription, QualityScore: 60},
	}

	result, err := newTestService(policy, docs, 0).Score(context.Background(), healthClaim(1_000_00))
	require.NoError(t, err)

	// Mean quality 45 < 50.
	assert.Equal(t, WeightQualityAnomaly, result.FraudScore)
	require.Len(t, result.Signals, 1)
	assert.Equal(t, "quality_anomaly", result.Signals[0].Type)
}

func TestScore_OCRConfidence(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 100_000_00}

	t.Run("nil confidence counts as zero", func(t *testing.T) {
		docs := []*documents.Document{
			{DocumentType: documents.TypeHospitalBill, QualityScore: 80},
		}
		result, err := newTestService(policy, docs, 0).Score(context.Background(), healthClaim(1_000_00))
		require.NoError(t, err)
		assert.Equal(t, WeightOCRAnomaly, result.FraudScore)
		require.Len(t, result.Signals, 1)
		assert.Equal(t, "Low OCR confidence for hospital bill", result.Signals[0].Message)
	})

	t.Run("motor claims skip the check", func(t *testing.T) {
		claim := healthClaim(1_000_00)
		claim.ClaimType = claims.TypeMotor
		docs := []*documents.Document{
			{DocumentType: documents.TypeHospitalBill, QualityScore: 80},
		}
		result, err := newTestService(policy, docs, 0).Score(context.Background(), claim)
		require.NoError(t, err)
		assert.Equal(t, 0, result.FraudScore)
	})

	t.Run("no hospital bill means no signal", func(t *testing.T) {
		docs := []*documents.Document{
			{DocumentType: documents.TypePrescription, QualityScore: 80},
		}
		result, err := newTestService(policy, docs, 0).Score(context.Background(), healthClaim(1_000_00))
		require.NoError(t, err)
		assert.Equal(t, 0, result.FraudScore)
	})
}

func TestScore_AllSignalsCapAtHundred(t *testing.T) {
	policy := &policies.Policy{SumInsuredCents: 10_000_00}
	claim := healthClaim(9_500_00)

	docs := []*documents.Document{
		{DocumentType: documents.TypeHospitalBill, QualityScore: 20, IsDuplicate: true},
		{DocumentType: documents.TypePrescription, QualityScore: 30},
	}

	result, err := newTestService(policy, docs, 10).Score(context.Background(), claim)
	require.NoError(t, err)

	assert.Equal(t, MaxScore, result.FraudScore)
	require.Len(t, result.Signals, 5)
	assert.Equal(t, []string{
		"document_anomaly", "amount_anomaly", "frequency_anomaly", "quality_anomaly", "ocr_anomaly",
	}, []string{
		result.Signals[0].Type, result.Signals[1].Type, result.Signals[2].Type,
		result.Signals[3].Type, result.Signals[4].Type,
	})
}

func TestScore_MissingPolicySkipsAmountSignal(t *testing.T) {
	result, err := newTestService(nil, nil, 0).Score(context.Background(), healthClaim(1_000_000_00))
	require.NoError(t, err)
	assert.Equal(t, 0, result.FraudScore)
}
