package ocr

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ========================================
// MOCK IMPLEMENTATIONS
// ========================================

type MockDocumentStore struct {
	GetByIDFunc   func(ctx context.Context, docID uuid.UUID) (*documents.Document, error)
	UpdateOCRFunc func(ctx context.Context, docID uuid.UUID, text string, confidence int) error
}

func (m *MockDocumentStore) GetByID(ctx context.Context, docID uuid.UUID) (*documents.Document, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, docID)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockDocumentStore) UpdateOCR(ctx context.Context, docID uuid.UUID, text string, confidence int) error {
	if m.UpdateOCRFunc != nil {
		return m.UpdateOCRFunc(ctx, docID, text, confidence)
	}
	return nil
}

type MockClaimReader struct {
	GetByIDFunc func(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
}

func (m *MockClaimReader) GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, claimID)
	}
	return nil, pgx.ErrNoRows
}

type MockStorage struct {
	DownloadFunc func(ctx context.Context, key string) (io.ReadCloser, error)
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (*storage.UploadResult, error) {
	return nil, errors.New("not implemented")
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, key)
	}
	return nil, errors.New("not found")
}

func (m *MockStorage) Delete(ctx context.Context, key string) error { return nil }

func (m *MockStorage) GetURL(key string) string { return "" }

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) { return false, nil }

type MockRecorder struct {
	RecordFunc func(ctx context.Context, claimID uuid.UUID, eventType timeline.EventType, actor, message string, metadata map[string]interface{}) error
}

func (m *MockRecorder) Record(ctx context.Context, claimID uuid.UUID, eventType timeline.EventType, actor, message string, metadata map[string]interface{}) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, claimID, eventType, actor, message, metadata)
	}
	return nil
}

// ========================================
// TESTS
// ========================================

func imageDocument(claimID uuid.UUID) *documents.Document {
	return &documents.Document{
		ID:           uuid.New(),
		ClaimID:      claimID,
		DocumentType: documents.TypeHospitalBill,
		FileName:     "bill.png",
		FileKey:      "claims/x/documents/hospital_bill/bill.png",
		MimeType:     "image/png",
	}
}

func TestExtractForDocument_RecordsResult(t *testing.T) {
	userID := uuid.New()
	claim := &claims.Claim{ID: uuid.New(), UserID: userID}
	doc := imageDocument(claim.ID)

	var storedText string
	var storedConfidence int
	var recordedType timeline.EventType
	var recordedMeta map[string]interface{}

	extractor := NewHeuristicExtractor(func(ctx context.Context, data []byte) (string, error) {
		return "Hospital invoice total amount due 12,340.00 thank you for your visit", nil
	})

	svc := NewService(
		&MockDocumentStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
				return doc, nil
			},
			UpdateOCRFunc: func(ctx context.Context, id uuid.UUID, text string, confidence int) error {
				storedText = text
				storedConfidence = confidence
				return nil
			},
		},
		&MockClaimReader{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*claims.Claim, error) {
				return claim, nil
			},
		},
		&MockStorage{
			DownloadFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("png bytes")), nil
			},
		},
		extractor,
		&MockRecorder{
			RecordFunc: func(ctx context.Context, id uuid.UUID, eventType timeline.EventType, actor, message string, metadata map[string]interface{}) error {
				recordedType = eventType
				recordedMeta = metadata
				return nil
			},
		},
	)

	result, err := svc.ExtractForDocument(context.Background(), userID, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, ConfidenceHigh, storedConfidence)
	assert.Contains(t, storedText, "Hospital invoice")
	require.NotNil(t, result.OCRConfidence)
	assert.Equal(t, ConfidenceHigh, *result.OCRConfidence)

	assert.Equal(t, timeline.EventOCRExtracted, recordedType)
	assert.Equal(t, doc.ID.String(), recordedMeta["document_id"])
	assert.Equal(t, ConfidenceHigh, recordedMeta["confidence"])
	assert.Equal(t, len(storedText), recordedMeta["text_length"])
}

func TestExtractForDocument_ForeignDocumentNotFound(t *testing.T) {
	claim := &claims.Claim{ID: uuid.New(), UserID: uuid.New()}
	doc := imageDocument(claim.ID)

	svc := NewService(
		&MockDocumentStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
				return doc, nil
			},
		},
		&MockClaimReader{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*claims.Claim, error) {
				return claim, nil
			},
		},
		&MockStorage{},
		NewHeuristicExtractor(nil),
		&MockRecorder{},
	)

	_, err := svc.ExtractForDocument(context.Background(), uuid.New(), doc.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Document not found or access denied")
}

func TestExtractForDocument_StorageFailureDegrades(t *testing.T) {
	userID := uuid.New()
	claim := &claims.Claim{ID: uuid.New(), UserID: userID}
	doc := imageDocument(claim.ID)

	var storedText string
	var storedConfidence int

	svc := NewService(
		&MockDocumentStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*documents.Document, error) {
				return doc, nil
			},
			UpdateOCRFunc: func(ctx context.Context, id uuid.UUID, text string, confidence int) error {
				storedText = text
				storedConfidence = confidence
				return nil
			},
		},
		&MockClaimReader{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*claims.Claim, error) {
				return claim, nil
			},
		},
		&MockStorage{
			DownloadFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
				return nil, errors.New("object missing")
			},
		},
		NewHeuristicExtractor(nil),
		&MockRecorder{},
	)

	result, err := svc.ExtractForDocument(context.Background(), userID, doc.ID)
	require.NoError(t, err)

	// A completed attempt with nothing extracted, not a failure.
	assert.Equal(t, "", storedText)
	assert.Equal(t, 0, storedConfidence)
	require.NotNil(t, result.OCRText)
	assert.Equal(t, "", *result.OCRText)
}
