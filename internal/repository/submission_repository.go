package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YatinKare/DesignDual/internal/model"
)

// SubmissionRepository handles database operations for submissions.
type SubmissionRepository struct {
	db dbtx
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db dbtx) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *model.Submission) error {
	phaseTimes, err := json.Marshal(sub.PhaseTimes)
	if err != nil {
		return fmt.Errorf("failed to encode phase times: %w", err)
	}
	phases, err := json.Marshal(sub.Phases)
	if err != nil {
		return fmt.Errorf("failed to encode phases: %w", err)
	}

	query := `
		INSERT INTO submissions (id, problem_id, status, phase_times, phases, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.ExecContext(ctx, query,
		sub.ID, sub.ProblemID, sub.Status, phaseTimes, phases, sub.CreatedAt, sub.UpdatedAt,
	)
	return err
}

// GetSubmission retrieves one submission by id.
func (r *SubmissionRepository) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	query := `
		SELECT id, problem_id, status, phase_times, phases, created_at, updated_at, completed_at
		FROM submissions
		WHERE id = $1
	`
	var sub model.Submission
	var phaseTimes, phases []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.ProblemID, &sub.Status, &phaseTimes, &phases,
		&sub.CreatedAt, &sub.UpdatedAt, &sub.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(phaseTimes, &sub.PhaseTimes); err != nil {
		return nil, fmt.Errorf("failed to decode phase times: %w", err)
	}
	if err := json.Unmarshal(phases, &sub.Phases); err != nil {
		return nil, fmt.Errorf("failed to decode phases: %w", err)
	}
	return &sub, nil
}

// UpdateStatus advances a submission's status. Terminal rows are never
// touched, so a late writer cannot resurrect a finished submission.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, status model.SubmissionStatus) error {
	query := `
		UPDATE submissions
		SET status = $2,
		    updated_at = now(),
		    completed_at = CASE WHEN $2 IN ('complete', 'failed') THEN now() ELSE completed_at END
		WHERE id = $1 AND status NOT IN ('complete', 'failed')
	`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("submission %s is missing or already terminal", id)
	}
	return nil
}

// SaveTranscripts merges per-phase transcripts into the stored phase
// artifacts. The grading run owns its submission exclusively, so
// read-modify-write is safe here.
func (r *SubmissionRepository) SaveTranscripts(ctx context.Context, id string, transcripts map[model.PhaseName][]model.TranscriptSnippet) error {
	sub, err := r.GetSubmission(ctx, id)
	if err != nil {
		return err
	}

	for phase, snippets := range transcripts {
		artifact := sub.Phases[phase]
		artifact.Transcript = snippets
		sub.Phases[phase] = artifact
	}

	phases, err := json.Marshal(sub.Phases)
	if err != nil {
		return fmt.Errorf("failed to encode phases: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE submissions SET phases = $2, updated_at = now() WHERE id = $1`,
		id, phases,
	)
	return err
}
