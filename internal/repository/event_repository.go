package repository

import (
	"context"

	"github.com/YatinKare/DesignDual/internal/model"
)

// EventRepository handles the append-only grading event log.
type EventRepository struct {
	db dbtx
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db dbtx) *EventRepository {
	return &EventRepository{db: db}
}

// Append inserts one progress event. Events are never updated or deleted.
func (r *EventRepository) Append(ctx context.Context, event *model.GradingEvent) error {
	query := `
		INSERT INTO grading_events (submission_id, status, message, phase, progress, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		event.SubmissionID, event.Status, event.Message, event.Phase, event.Progress, event.CreatedAt,
	).Scan(&event.ID)
}

// ListBySubmission retrieves a submission's full event stream in creation
// order. Insertion id breaks same-timestamp ties so replay order matches
// emission order.
func (r *EventRepository) ListBySubmission(ctx context.Context, submissionID string) ([]model.GradingEvent, error) {
	query := `
		SELECT id, submission_id, status, message, phase, progress, created_at
		FROM grading_events
		WHERE submission_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.GradingEvent{}
	for rows.Next() {
		var event model.GradingEvent
		if err := rows.Scan(
			&event.ID, &event.SubmissionID, &event.Status, &event.Message,
			&event.Phase, &event.Progress, &event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
