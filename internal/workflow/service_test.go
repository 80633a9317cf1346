package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
	"github.com/smartclaim/backend/internal/fraud"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// MOCK IMPLEMENTATIONS
// ========================================

type MockClaimStore struct {
	GetByIDFunc func(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
	UpdateFunc  func(ctx context.Context, claim *claims.Claim) error
}

func (m *MockClaimStore) GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, claimID)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockClaimStore) Update(ctx context.Context, claim *claims.Claim) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, claim)
	}
	return nil
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

type MockReadiness struct {
	RecomputeFunc func(ctx context.Context, claimID uuid.UUID) (int, error)
}

func (m *MockReadiness) Recompute(ctx context.Context, claimID uuid.UUID) (int, error) {
	if m.RecomputeFunc != nil {
		return m.RecomputeFunc(ctx, claimID)
	}
	return 100, nil
}

type MockValidator struct {
	ValidateFunc func(ctx context.Context, claim *claims.Claim) (*validation.Result, error)
}

func (m *MockValidator) Validate(ctx context.Context, claim *claims.Claim) (*validation.Result, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, claim)
	}
	return &validation.Result{Passed: true, Reasons: []string{}}, nil
}

type MockFraudScorer struct {
	ScoreFunc func(ctx context.Context, claim *claims.Claim) (*fraud.Result, error)
	Called    bool
}

func (m *MockFraudScorer) Score(ctx context.Context, claim *claims.Claim) (*fraud.Result, error) {
	m.Called = true
	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, claim)
	}
	return &fraud.Result{FraudScore: 0, Signals: []fraud.Signal{}}, nil
}

type MockExtractor struct {
	ExtractForDocumentFunc func(ctx context.Context, userID, documentID uuid.UUID) (*documents.Document, error)
	ExtractedIDs           []uuid.UUID
}

func (m *MockExtractor) ExtractForDocument(ctx context.Context, userID, documentID uuid.UUID) (*documents.Document, error) {
	m.ExtractedIDs = append(m.ExtractedIDs, documentID)
	if m.ExtractForDocumentFunc != nil {
		return m.ExtractForDocumentFunc(ctx, userID, documentID)
	}
	return nil, nil
}

type recordedEvent struct {
	EventType timeline.EventType
	Actor     string
	Message   string
}

type MockRecorder struct {
	Events []recordedEvent
}

func (m *MockRecorder) Record(ctx context.Context, claimID uuid.UUID, eventType timeline.EventType, actor, message string, metadata map[string]interface{}) error {
	m.Events = append(m.Events, recordedEvent{EventType: eventType, Actor: actor, Message: message})
	return nil
}

// ========================================
// HELPERS
// ========================================

func strPtr(s string) *string { return &s }

func draftClaim(userID uuid.UUID, amountCents int64) *claims.Claim {
	return &claims.Claim{
		ID:                 uuid.New(),
		ClaimNumber:        "CLM-2026-000042",
		UserID:             userID,
		PolicyID:           uuid.New(),
		ClaimType:          claims.TypeHealth,
		ClaimedAmountCents: amountCents,
		Status:             claims.StatusDraft,
	}
}

type pipelineFixture struct {
	claim     *claims.Claim
	store     *MockClaimStore
	scorer    *MockFraudScorer
	extractor *MockExtractor
	recorder  *MockRecorder
	service   *Service
}

func newPipeline(claim *claims.Claim, fraudScore int, docs []*documents.Document, valResult *validation.Result) *pipelineFixture {
	f := &pipelineFixture{
		claim: claim,
		store: &MockClaimStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*claims.Claim, error) {
				return claim, nil
			},
		},
		scorer: &MockFraudScorer{
			ScoreFunc: func(ctx context.Context, c *claims.Claim) (*fraud.Result, error) {
				return &fraud.Result{FraudScore: fraudScore, Signals: []fraud.Signal{}}, nil
			},
		},
		extractor: &MockExtractor{},
		recorder:  &MockRecorder{},
	}

	validator := &MockValidator{}
	if valResult != nil {
		validator.ValidateFunc = func(ctx context.Context, c *claims.Claim) (*validation.Result, error) {
			return valResult, nil
		}
	}

	f.service = NewService(
		f.store,
		&MockDocumentLister{
			ListByClaimFunc: func(ctx context.Context, id uuid.UUID) ([]*documents.Document, error) {
				return docs, nil
			},
		},
		&MockReadiness{},
		validator,
		f.scorer,
		f.extractor,
		f.recorder,
	)
	return f
}

// ========================================
// TESTS
// ========================================

func TestSubmit_DecisionThresholds(t *testing.T) {
	tests := []struct {
		name         string
		fraudScore   int
		amountCents  int64
		wantStatus   string
		wantDecision string
	}{
		{"low risk small amount approves", 29, 1_000_000, claims.StatusApproved, claims.DecisionAutoApproved},
		{"score at approve cutoff reviews", 30, 1_000_000, claims.StatusUnderReview, claims.DecisionHumanReviewed},
		{"low risk large amount reviews", 29, 1_000_001, claims.StatusUnderReview, claims.DecisionHumanReviewed},
		{"score at reject cutoff reviews", 60, 1_000_000_00, claims.StatusUnderReview, claims.DecisionHumanReviewed},
		{"score above reject cutoff rejects", 61, 1_000, claims.StatusRejected, claims.DecisionAutoRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			claim := draftClaim(userID, tt.amountCents)
			f := newPipeline(claim, tt.fraudScore, nil, nil)

			result, err := f.service.Submit(context.Background(), userID, claim.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, result.Status)
			require.NotNil(t, result.DecisionType)
			assert.Equal(t, tt.wantDecision, *result.DecisionType)
			require.NotNil(t, result.FraudScore)
			assert.Equal(t, tt.fraudScore, *result.FraudScore)

			switch tt.wantDecision {
			case claims.DecisionAutoApproved:
				require.NotNil(t, result.ApprovedAmountCents)
				assert.Equal(t, tt.amountCents, *result.ApprovedAmountCents)
				assert.Nil(t, result.RejectionReason)
			case claims.DecisionAutoRejected:
				require.NotNil(t, result.RejectionReason)
				assert.Equal(t, HighRiskRejectionReason, *result.RejectionReason)
				assert.Nil(t, result.ApprovedAmountCents)
			default:
				assert.Nil(t, result.ApprovedAmountCents)
				assert.Nil(t, result.RejectionReason)
			}
		})
	}
}

func TestSubmit_ValidationFailureSkipsFraudScoring(t *testing.T) {
	userID := uuid.New()
	claim := draftClaim(userID, 1_000_00)
	valResult := &validation.Result{
		Passed:  false,
		Reasons: []string{"Policy status is expired", "Missing required documents: prescription"},
	}
	f := newPipeline(claim, 99, nil, valResult)

	result, err := f.service.Submit(context.Background(), userID, claim.ID)
	require.NoError(t, err)

	assert.Equal(t, claims.StatusRejected, result.Status)
	require.NotNil(t, result.DecisionType)
	assert.Equal(t, claims.DecisionAutoRejected, *result.DecisionType)
	require.NotNil(t, result.RejectionReason)
	assert.Equal(t, "Policy status is expired; Missing required documents: prescription", *result.RejectionReason)

	// Fraud scoring never ran, so the score stays unset.
	assert.False(t, f.scorer.Called)
	assert.Nil(t, result.FraudScore)
	assert.Empty(t, f.extractor.ExtractedIDs)

	require.Len(t, f.recorder.Events, 3)
	assert.Equal(t, timeline.EventStatusChanged, f.recorder.Events[0].EventType)
	assert.Equal(t, "Claim submitted for processing", f.recorder.Events[0].Message)
	assert.Equal(t, timeline.EventValidated, f.recorder.Events[1].EventType)
	assert.Equal(t, "validation_failed", f.recorder.Events[1].Message)
	assert.Equal(t, timeline.EventStatusChanged, f.recorder.Events[2].EventType)
	assert.Equal(t, "Claim rejected due to validation failure", f.recorder.Events[2].Message)
}

func TestSubmit_EventSequenceOnApproval(t *testing.T) {
	userID := uuid.New()
	claim := draftClaim(userID, 5_000_00)
	f := newPipeline(claim, 10, nil, nil)

	_, err := f.service.Submit(context.Background(), userID, claim.ID)
	require.NoError(t, err)

	require.Len(t, f.recorder.Events, 4)
	assert.Equal(t, "Claim submitted for processing", f.recorder.Events[0].Message)
	assert.Equal(t, "Validation passed", f.recorder.Events[1].Message)
	assert.Equal(t, "Fraud score calculated: 10", f.recorder.Events[2].Message)
	assert.Equal(t, "Claim APPROVED by decision engine (auto_approved)", f.recorder.Events[3].Message)
	for _, event := range f.recorder.Events {
		assert.Equal(t, timeline.ActorSystem, event.Actor)
	}
}

func TestSubmit_NonDraftClaimRejected(t *testing.T) {
	userID := uuid.New()
	claim := draftClaim(userID, 1_000_00)
	claim.Status = claims.StatusSubmitted
	f := newPipeline(claim, 0, nil, nil)

	_, err := f.service.Submit(context.Background(), userID, claim.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Claim status is SUBMITTED, cannot submit")
}

func TestSubmit_ForeignClaimNotFound(t *testing.T) {
	claim := draftClaim(uuid.New(), 1_000_00)
	f := newPipeline(claim, 0, nil, nil)

	_, err := f.service.Submit(context.Background(), uuid.New(), claim.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Claim not found")
}

func TestSubmit_OCROnlyForUnattemptedKeyDocuments(t *testing.T) {
	userID := uuid.New()
	claim := draftClaim(userID, 5_000_00)

	pending := &documents.Document{ID: uuid.New(), DocumentType: documents.TypeHospitalBill}
	attempted := &documents.Document{ID: uuid.New(), DocumentType: documents.TypeHospitalBill, OCRText: strPtr("")}
	otherType := &documents.Document{ID: uuid.New(), DocumentType: documents.TypePrescription}

	f := newPipeline(claim, 10, []*documents.Document{pending, attempted, otherType}, nil)

	_, err := f.service.Submit(context.Background(), userID, claim.ID)
	require.NoError(t, err)

	// An empty extraction result is a completed attempt and is never retried;
	// non-key document types are skipped entirely.
	assert.Equal(t, []uuid.UUID{pending.ID}, f.extractor.ExtractedIDs)
}

func TestSubmit_MotorClaimTargetsRepairEstimate(t *testing.T) {
	userID := uuid.New()
	claim := draftClaim(userID, 5_000_00)
	claim.ClaimType = claims.TypeMotor

	bill := &documents.Document{ID: uuid.New(), DocumentType: documents.TypeHospitalBill}
	estimate := &documents.Document{ID: uuid.New(), DocumentType: documents.TypeRepairEstimate}

	f := newPipeline(claim, 10, []*documents.Document{bill, estimate}, nil)

	_, err := f.service.Submit(context.Background(), userID, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{estimate.ID}, f.extractor.ExtractedIDs)
}

func TestAssess_ReturnsScoresWithoutDeciding(t *testing.T) {
	userID := uuid.New()
	claim := draftClaim(userID, 5_000_00)

	f := newPipeline(claim, 55, nil, nil)
	f.scorer.ScoreFunc = func(ctx context.Context, c *claims.Claim) (*fraud.Result, error) {
		return &fraud.Result{FraudScore: 55, Signals: []fraud.Signal{
			{Type: "document_anomaly", Score: 40, Message: "Duplicate documents detected"},
			{Type: "frequency_anomaly", Score: 15, Message: "High claim frequency (4 in last year)"},
		}}, nil
	}
	updates := 0
	f.store.UpdateFunc = func(ctx context.Context, c *claims.Claim) error {
		updates++
		return nil
	}

	assessment, err := f.service.Assess(context.Background(), userID, claim.ID)

	require.NoError(t, err)
	assert.Equal(t, claim.ID, assessment.ClaimID)
	assert.Equal(t, 100, assessment.ReadinessScore)
	assert.Equal(t, 55, assessment.FraudScore)
	require.Len(t, assessment.Signals, 2)
	assert.Equal(t, "document_anomaly", assessment.Signals[0].Type)

	// read-only: the claim keeps its status and stored scores
	assert.Equal(t, 0, updates)
	assert.Equal(t, claims.StatusDraft, claim.Status)
	assert.Nil(t, claim.FraudScore)
	assert.Empty(t, f.recorder.Events)
}

func TestAssess_ForeignClaimNotFound(t *testing.T) {
	claim := draftClaim(uuid.New(), 1_000_00)
	f := newPipeline(claim, 0, nil, nil)

	_, err := f.service.Assess(context.Background(), uuid.New(), claim.ID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Claim not found")
	assert.False(t, f.scorer.Called)
}
