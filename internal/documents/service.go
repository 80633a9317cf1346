package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/imaging"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/storage"
	"go.uber.org/zap"
)

// Service implements the document registry: it persists uploads, derives
// quality and fingerprint signals and flags near-duplicate images across the
// whole corpus.
type Service struct {
	repo      DocumentRepository
	claims    ClaimReader
	storage   storage.Storage
	timeline  timeline.Recorder
	readiness ReadinessRecomputer
	config    ServiceConfig
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	MaxFileSizeMB    int
	AllowedMimeTypes []string
}

// NewService creates a new documents service
func NewService(repo DocumentRepository, claims ClaimReader, store storage.Storage, recorder timeline.Recorder, readiness ReadinessRecomputer, config ServiceConfig) *Service {
	if config.MaxFileSizeMB == 0 {
		config.MaxFileSizeMB = 10
	}
	if len(config.AllowedMimeTypes) == 0 {
		config.AllowedMimeTypes = []string{
			"image/jpeg", "image/png", "image/gif", "application/pdf",
		}
	}

	return &Service{
		repo:      repo,
		claims:    claims,
		storage:   store,
		timeline:  recorder,
		readiness: readiness,
		config:    config,
	}
}

// Upload stores a document for a claim, computes its image signals, runs the
// global duplicate scan and refreshes the claim's readiness score.
func (s *Service) Upload(ctx context.Context, userID, claimID uuid.UUID, documentType, fileName, contentType string, data []byte) (*Document, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Claim not found or access denied", nil)
		}
		logger.WithContext(ctx).Error("failed to load claim", zap.Error(err))
		return nil, common.NewInternalServerError("failed to upload document")
	}
	if claim.UserID != userID {
		return nil, common.NewNotFoundError("Claim not found or access denied", nil)
	}

	if !IsAllowedDocumentType(documentType) {
		return nil, common.NewBadRequestError("invalid document type", nil)
	}

	maxSize := int64(s.config.MaxFileSizeMB) * 1024 * 1024
	if int64(len(data)) > maxSize {
		return nil, common.NewBadRequestError(fmt.Sprintf("file size exceeds maximum of %d MB", s.config.MaxFileSizeMB), nil)
	}
	if !storage.ValidateMimeType(contentType, s.config.AllowedMimeTypes) {
		return nil, common.NewBadRequestError("unsupported file type", nil)
	}

	fileKey := storage.GenerateDocumentKey(claimID, documentType, fileName)
	uploadResult, err := s.storage.Upload(ctx, fileKey, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		logger.WithContext(ctx).Error("failed to upload document to storage", zap.Error(err))
		return nil, common.NewInternalServerError("failed to upload document")
	}

	// Derived signals degrade instead of failing: unreadable bytes get a
	// neutral quality and no fingerprint.
	quality := imaging.QualityScore(data)

	var fingerprint *string
	if fp, err := imaging.Fingerprint(data); err == nil {
		fingerprint = &fp
	} else {
		logger.WithContext(ctx).Debug("fingerprint unavailable for upload",
			zap.String("file_name", fileName), zap.Error(err))
	}

	isDuplicate, duplicateOf, err := s.findDuplicate(ctx, fingerprint)
	if err != nil {
		logger.WithContext(ctx).Error("duplicate scan failed", zap.Error(err))
		return nil, common.NewInternalServerError("failed to upload document")
	}

	doc := &Document{
		ID:               uuid.New(),
		ClaimID:          claimID,
		UploadedByUserID: userID,
		DocumentType:     documentType,
		FileName:         fileName,
		FileKey:          uploadResult.Key,
		MimeType:         contentType,
		FileSize:         int64(len(data)),
		QualityScore:     quality,
		Fingerprint:      fingerprint,
		IsDuplicate:      isDuplicate,
		DuplicateOfID:    duplicateOf,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		logger.WithContext(ctx).Error("failed to create document", zap.Error(err))
		return nil, common.NewInternalServerError("failed to upload document")
	}

	if err := s.timeline.Record(ctx, claimID, timeline.EventDocUploaded, timeline.ActorSystem,
		fmt.Sprintf("Uploaded %s (%s)", documentType, fileName),
		map[string]interface{}{
			"document_id":   doc.ID.String(),
			"quality_score": quality,
			"is_duplicate":  isDuplicate,
		},
	); err != nil {
		return nil, err
	}

	if _, err := s.readiness.Recompute(ctx, claimID); err != nil {
		return nil, err
	}

	return doc, nil
}

// findDuplicate walks every stored fingerprint oldest first and returns the
// first one within the distance threshold. Already-flagged documents are
// never revisited.
func (s *Service) findDuplicate(ctx context.Context, fingerprint *string) (bool, *uuid.UUID, error) {
	if fingerprint == nil {
		return false, nil, nil
	}

	records, err := s.repo.ListFingerprints(ctx)
	if err != nil {
		return false, nil, err
	}

	for _, rec := range records {
		if imaging.Distance(*fingerprint, rec.Fingerprint) <= DuplicateDistanceThreshold {
			id := rec.ID
			return true, &id, nil
		}
	}

	return false, nil, nil
}

// ListForClaim returns a claim's documents, scoped to the claim owner
func (s *Service) ListForClaim(ctx context.Context, userID, claimID uuid.UUID) ([]*Document, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("Claim not found", nil)
		}
		return nil, common.NewInternalServerError("failed to list documents")
	}
	if claim.UserID != userID {
		return nil, common.NewNotFoundError("Claim not found", nil)
	}

	docs, err := s.repo.ListByClaim(ctx, claimID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to list documents")
	}

	return docs, nil
}
