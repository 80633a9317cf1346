package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document types accepted by the pipeline
const (
	TypeHospitalBill     = "hospital_bill"
	TypeDischargeSummary = "discharge_summary"
	TypePrescription     = "prescription"
	TypeRCBook           = "rc_book"
	TypeRepairEstimate   = "repair_estimate"
	TypeFIR              = "fir"
	TypeAccidentPhoto    = "accident_photo"
)

// DuplicateDistanceThreshold is the maximum fingerprint Hamming distance at
// which two documents are considered copies of the same image.
const DuplicateDistanceThreshold = 5

// Document represents an uploaded claim document with its derived signals
type Document struct {
	ID               uuid.UUID  `json:"id"`
	ClaimID          uuid.UUID  `json:"claim_id"`
	UploadedByUserID uuid.UUID  `json:"uploaded_by_user_id"`
	DocumentType     string     `json:"document_type"`
	FileName         string     `json:"file_name"`
	FileKey          string     `json:"file_key"`
	MimeType         string     `json:"mime_type"`
	FileSize         int64      `json:"file_size"`
	OCRText          *string    `json:"ocr_text,omitempty"`
	OCRConfidence    *int       `json:"ocr_confidence,omitempty"`
	QualityScore     int        `json:"quality_score"`
	Fingerprint      *string    `json:"fingerprint,omitempty"`
	IsDuplicate      bool       `json:"is_duplicate"`
	DuplicateOfID    *uuid.UUID `json:"duplicate_of_document_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// FingerprintRecord is the slim projection the duplicate scan walks
type FingerprintRecord struct {
	ID          uuid.UUID
	Fingerprint string
}

// AllowedDocumentTypes lists every document type the API accepts
var AllowedDocumentTypes = []string{
	TypeHospitalBill,
	TypeDischargeSummary,
	TypePrescription,
	TypeRCBook,
	TypeRepairEstimate,
	TypeFIR,
	TypeAccidentPhoto,
}

// IsAllowedDocumentType reports whether the given type is accepted
func IsAllowedDocumentType(documentType string) bool {
	for _, t := range AllowedDocumentTypes {
		if t == documentType {
			return true
		}
	}
	return false
}
