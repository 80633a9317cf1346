package timeline

import (
	"context"

	"github.com/google/uuid"
)

// EventRepository defines data access for timeline events
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	ListByClaim(ctx context.Context, claimID uuid.UUID, limit, offset int) ([]*Event, error)
	CountByClaim(ctx context.Context, claimID uuid.UUID) (int64, error)
}

// Recorder is the write-side contract other services use to append events
// without depending on the full repository surface.
type Recorder interface {
	Record(ctx context.Context, claimID uuid.UUID, eventType EventType, actor, message string, metadata map[string]interface{}) error
}
