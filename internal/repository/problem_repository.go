package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YatinKare/DesignDual/internal/model"
)

// ProblemRepository handles the problem catalog.
type ProblemRepository struct {
	db dbtx
}

// NewProblemRepository creates a new problem repository.
func NewProblemRepository(db dbtx) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// List returns the catalog ordered by difficulty tier, then title.
func (r *ProblemRepository) List(ctx context.Context) ([]model.ProblemSummary, error) {
	query := `
		SELECT id, slug, title, difficulty, focus_tags, estimated_time_minutes
		FROM problems
		ORDER BY CASE difficulty
			WHEN 'apprentice' THEN 1
			WHEN 'sorcerer' THEN 2
			ELSE 3
		END, title
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	problems := []model.ProblemSummary{}
	for rows.Next() {
		var p model.ProblemSummary
		var focusTags []byte
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Difficulty, &focusTags, &p.EstimatedTimeMinutes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(focusTags, &p.FocusTags); err != nil {
			return nil, fmt.Errorf("failed to decode focus tags: %w", err)
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

// GetProblem retrieves one problem with its full rubric definition.
func (r *ProblemRepository) GetProblem(ctx context.Context, id string) (*model.Problem, error) {
	query := `
		SELECT id, slug, title, difficulty, focus_tags, estimated_time_minutes,
		       prompt, constraints, phase_time_minutes, rubric_definition, sample_solution_outline
		FROM problems
		WHERE id = $1
	`
	var p model.Problem
	var focusTags, constraints, phaseTimes, rubric []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Slug, &p.Title, &p.Difficulty, &focusTags, &p.EstimatedTimeMinutes,
		&p.Prompt, &constraints, &phaseTimes, &rubric, &p.SampleSolutionOutline,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("problem %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(focusTags, &p.FocusTags); err != nil {
		return nil, fmt.Errorf("failed to decode focus tags: %w", err)
	}
	if err := json.Unmarshal(constraints, &p.Constraints); err != nil {
		return nil, fmt.Errorf("failed to decode constraints: %w", err)
	}
	if err := json.Unmarshal(phaseTimes, &p.PhaseTimeMinutes); err != nil {
		return nil, fmt.Errorf("failed to decode phase times: %w", err)
	}
	if err := json.Unmarshal(rubric, &p.RubricDefinition); err != nil {
		return nil, fmt.Errorf("failed to decode rubric definition: %w", err)
	}
	return &p, nil
}

// Seed inserts catalog problems, leaving already-present rows untouched.
func (r *ProblemRepository) Seed(ctx context.Context, problems []model.Problem) error {
	query := `
		INSERT INTO problems (
			id, slug, title, difficulty, focus_tags, estimated_time_minutes,
			prompt, constraints, phase_time_minutes, rubric_definition, sample_solution_outline
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	for _, p := range problems {
		focusTags, err := json.Marshal(p.FocusTags)
		if err != nil {
			return err
		}
		constraints, err := json.Marshal(p.Constraints)
		if err != nil {
			return err
		}
		phaseTimes, err := json.Marshal(p.PhaseTimeMinutes)
		if err != nil {
			return err
		}
		rubric, err := json.Marshal(p.RubricDefinition)
		if err != nil {
			return err
		}

		if _, err := r.db.ExecContext(ctx, query,
			p.ID, p.Slug, p.Title, p.Difficulty, focusTags, p.EstimatedTimeMinutes,
			p.Prompt, constraints, phaseTimes, rubric, p.SampleSolutionOutline,
		); err != nil {
			return fmt.Errorf("failed to seed problem %s: %w", p.ID, err)
		}
	}
	return nil
}
