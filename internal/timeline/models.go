package timeline

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened to a claim at a point in time
type EventType string

const (
	EventDocUploaded      EventType = "DOC_UPLOADED"
	EventReadinessUpdated EventType = "READINESS_UPDATED"
	EventValidated        EventType = "VALIDATED"
	EventOCRExtracted     EventType = "OCR_EXTRACTED"
	EventFraudScored      EventType = "FRAUD_SCORED"
	EventStatusChanged    EventType = "STATUS_CHANGED"
)

// ActorSystem is the actor recorded for events the pipeline emits on its own
const ActorSystem = "system"

// Event is a single append-only entry in a claim's audit trail
type Event struct {
	ID        uuid.UUID              `json:"id"`
	ClaimID   uuid.UUID              `json:"claim_id"`
	EventType EventType              `json:"event_type"`
	Actor     string                 `json:"actor"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
