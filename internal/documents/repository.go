package documents

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles document data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ DocumentRepository = (*Repository)(nil)

// NewRepository creates a new documents repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const documentColumns = `
	id, claim_id, uploaded_by_user_id, document_type, file_name, file_key,
	mime_type, file_size, ocr_text, ocr_confidence, quality_score,
	fingerprint, is_duplicate, duplicate_of_document_id, created_at
`

// Create inserts a new document
func (r *Repository) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO documents (
			id, claim_id, uploaded_by_user_id, document_type, file_name,
			file_key, mime_type, file_size, quality_score, fingerprint,
			is_duplicate, duplicate_of_document_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		doc.ID,
		doc.ClaimID,
		doc.UploadedByUserID,
		doc.DocumentType,
		doc.FileName,
		doc.FileKey,
		doc.MimeType,
		doc.FileSize,
		doc.QualityScore,
		doc.Fingerprint,
		doc.IsDuplicate,
		doc.DuplicateOfID,
		doc.CreatedAt,
	)

	return err
}

// GetByID retrieves a document by ID
func (r *Repository) GetByID(ctx context.Context, docID uuid.UUID) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRow(ctx, query, docID))
}

// ListByClaim retrieves a claim's documents oldest first
func (r *Repository) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE claim_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// ListFingerprints returns all stored fingerprints across every claim,
// oldest document first, for the global duplicate scan.
func (r *Repository) ListFingerprints(ctx context.Context) ([]*FingerprintRecord, error) {
	query := `
		SELECT id, fingerprint
		FROM documents
		WHERE fingerprint IS NOT NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*FingerprintRecord, 0)
	for rows.Next() {
		var rec FingerprintRecord
		if err := rows.Scan(&rec.ID, &rec.Fingerprint); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// ListNonDuplicateTypes returns the distinct document types present on a
// claim, ignoring documents flagged as duplicates.
func (r *Repository) ListNonDuplicateTypes(ctx context.Context, claimID uuid.UUID) ([]string, error) {
	query := `
		SELECT DISTINCT document_type
		FROM documents
		WHERE claim_id = $1 AND is_duplicate = FALSE
	`

	rows, err := r.db.Query(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return types, rows.Err()
}

// UpdateOCR stores the extraction result on a document
func (r *Repository) UpdateOCR(ctx context.Context, docID uuid.UUID, text string, confidence int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET ocr_text = $2, ocr_confidence = $3 WHERE id = $1`,
		docID, text, confidence,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var ocrText, fingerprint sql.NullString
	var ocrConfidence sql.NullInt32
	var duplicateOf *uuid.UUID

	err := row.Scan(
		&doc.ID,
		&doc.ClaimID,
		&doc.UploadedByUserID,
		&doc.DocumentType,
		&doc.FileName,
		&doc.FileKey,
		&doc.MimeType,
		&doc.FileSize,
		&ocrText,
		&ocrConfidence,
		&doc.QualityScore,
		&fingerprint,
		&doc.IsDuplicate,
		&duplicateOf,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ocrText.Valid {
		doc.OCRText = &ocrText.String
	}
	if ocrConfidence.Valid {
		conf := int(ocrConfidence.Int32)
		doc.OCRConfidence = &conf
	}
	if fingerprint.Valid {
		doc.Fingerprint = &fingerprint.String
	}
	doc.DuplicateOfID = duplicateOf

	return &doc, nil
}
