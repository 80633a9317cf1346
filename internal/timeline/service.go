package timeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/logger"
	"go.uber.org/zap"
)

// Service handles the claim audit trail
type Service struct {
	repo EventRepository
}

var _ Recorder = (*Service)(nil)

// NewService creates a new timeline service
func NewService(repo EventRepository) *Service {
	return &Service{repo: repo}
}

// Record appends an event to a claim's timeline. An empty actor is recorded
// as the system.
func (s *Service) Record(ctx context.Context, claimID uuid.UUID, eventType EventType, actor, message string, metadata map[string]interface{}) error {
	if actor == "" {
		actor = ActorSystem
	}

	event := &Event{
		ID:        uuid.New(),
		ClaimID:   claimID,
		EventType: eventType,
		Actor:     actor,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		logger.WithContext(ctx).Error("failed to record timeline event",
			zap.String("claim_id", claimID.String()),
			zap.String("event_type", string(eventType)),
			zap.Error(err))
		return common.NewInternalServerError("failed to record timeline event")
	}

	return nil
}

// ListEvents returns a claim's events newest first along with the total count
func (s *Service) ListEvents(ctx context.Context, claimID uuid.UUID, limit, offset int) ([]*Event, int64, error) {
	events, err := s.repo.ListByClaim(ctx, claimID, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list timeline events")
	}

	total, err := s.repo.CountByClaim(ctx, claimID)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to count timeline events")
	}

	return events, total, nil
}
