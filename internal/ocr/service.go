package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/storage"
	"go.uber.org/zap"
)

// DocumentStore is the slice of the documents repository the service needs
type DocumentStore interface {
	GetByID(ctx context.Context, docID uuid.UUID) (*documents.Document, error)
	UpdateOCR(ctx context.Context, docID uuid.UUID, text string, confidence int) error
}

// ClaimReader is the slice of the claims repository used for ownership checks
type ClaimReader interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
}

// Service runs text extraction over stored documents and records the outcome
type Service struct {
	docs      DocumentStore
	claims    ClaimReader
	storage   storage.Storage
	extractor Extractor
	timeline  timeline.Recorder
}

// NewService creates a new OCR service
func NewService(docs DocumentStore, claimReader ClaimReader, store storage.Storage, extractor Extractor, recorder timeline.Recorder) *Service {
	return &Service{
		docs:      docs,
		claims:    claimReader,
		storage:   store,
		extractor: extractor,
		timeline:  recorder,
	}
}

// ExtractForDocument fetches a document's bytes, runs the extractor, stores
// text and confidence on the document and records an OCR_EXTRACTED event.
// Storage and extraction problems degrade to an empty result rather than
// failing the request.
func (s *Service) ExtractForDocument(ctx context.Context, userID, documentID uuid.UUID) (*documents.Document, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Document not found or access denied", nil)
		}
		logger.WithContext(ctx).Error("failed to load document for OCR", zap.Error(err))
		return nil, common.NewInternalServerError("failed to extract document text")
	}

	claim, err := s.claims.GetByID(ctx, doc.ClaimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Document not found or access denied", nil)
		}
		logger.WithContext(ctx).Error("failed to load claim for OCR", zap.Error(err))
		return nil, common.NewInternalServerError("failed to extract document text")
	}
	if claim.UserID != userID {
		return nil, common.NewNotFoundError("Document not found or access denied", nil)
	}

	text, confidence := s.extract(ctx, doc)

	if err := s.docs.UpdateOCR(ctx, doc.ID, text, confidence); err != nil {
		logger.WithContext(ctx).Error("failed to store OCR result", zap.Error(err))
		return nil, common.NewInternalServerError("failed to extract document text")
	}
	doc.OCRText = &text
	doc.OCRConfidence = &confidence

	if err := s.timeline.Record(ctx, doc.ClaimID, timeline.EventOCRExtracted, timeline.ActorSystem,
		fmt.Sprintf("OCR performed on %s", doc.FileName),
		map[string]interface{}{
			"document_id": doc.ID.String(),
			"confidence":  confidence,
			"text_length": len(text),
		},
	); err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *Service) extract(ctx context.Context, doc *documents.Document) (string, int) {
	reader, err := s.storage.Download(ctx, doc.FileKey)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to download document for OCR",
			zap.String("file_key", doc.FileKey), zap.Error(err))
		return "", 0
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to read document for OCR", zap.Error(err))
		return "", 0
	}

	return s.extractor.Extract(ctx, doc.MimeType, data)
}
