package timeline

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles timeline event data operations
type Repository struct {
	db *pgxpool.Pool
}

var _ EventRepository = (*Repository)(nil)

// NewRepository creates a new timeline repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create appends a timeline event
func (r *Repository) Create(ctx context.Context, event *Event) error {
	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO timeline_events (id, claim_id, event_type, actor, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Exec(ctx, query,
		event.ID,
		event.ClaimID,
		event.EventType,
		event.Actor,
		event.Message,
		metadataJSON,
		event.CreatedAt,
	)

	return err
}

// ListByClaim retrieves a claim's events newest first
func (r *Repository) ListByClaim(ctx context.Context, claimID uuid.UUID, limit, offset int) ([]*Event, error) {
	query := `
		SELECT id, claim_id, event_type, actor, message, metadata, created_at
		FROM timeline_events
		WHERE claim_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, claimID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		var event Event
		var metadataJSON []byte

		if err := rows.Scan(
			&event.ID,
			&event.ClaimID,
			&event.EventType,
			&event.Actor,
			&event.Message,
			&metadataJSON,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				event.Metadata = nil
			}
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}

// CountByClaim counts a claim's events
func (r *Repository) CountByClaim(ctx context.Context, claimID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM timeline_events WHERE claim_id = $1`, claimID).Scan(&count)
	return count, err
}
