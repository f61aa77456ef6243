package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/YatinKare/DesignDual/internal/model"
)

// ResultRepository handles stored grading results. The full contract object
// is kept as JSONB so reads return exactly what grading produced; score and
// verdict are lifted into columns for dashboard queries.
type ResultRepository struct {
	db dbtx
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db dbtx) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save upserts the result for a submission. Re-grading a submission replaces
// the previous result atomically.
func (r *ResultRepository) Save(ctx context.Context, result *model.SubmissionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	query := `
		INSERT INTO grading_results (submission_id, result, overall_score, verdict)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (submission_id) DO UPDATE
		SET result = EXCLUDED.result,
		    overall_score = EXCLUDED.overall_score,
		    verdict = EXCLUDED.verdict,
		    updated_at = now()
	`
	_, err = r.db.ExecContext(ctx, query, result.SubmissionID, raw, result.OverallScore, result.Verdict)
	return err
}

// Get retrieves the stored result for a submission.
func (r *ResultRepository) Get(ctx context.Context, submissionID string) (*model.SubmissionResult, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT result FROM grading_results WHERE submission_id = $1`,
		submissionID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("result for submission %s: %w", submissionID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var result model.SubmissionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &result, nil
}

// History lists completed submissions newest first for the dashboard.
func (r *ResultRepository) History(ctx context.Context, limit int) ([]model.ScoreHistoryEntry, error) {
	query := `
		SELECT s.id, s.problem_id, p.title, p.difficulty,
		       gr.overall_score, gr.verdict, s.created_at, gr.created_at
		FROM grading_results gr
		JOIN submissions s ON s.id = gr.submission_id
		JOIN problems p ON p.id = s.problem_id
		ORDER BY gr.created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.ScoreHistoryEntry{}
	for rows.Next() {
		var e model.ScoreHistoryEntry
		if err := rows.Scan(
			&e.SubmissionID, &e.ProblemID, &e.ProblemTitle, &e.Difficulty,
			&e.OverallScore, &e.Verdict, &e.CreatedAt, &e.CompletedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary aggregates scores and verdicts across all graded submissions.
func (r *ResultRepository) Summary(ctx context.Context) (*model.ScoreSummary, error) {
	summary := &model.ScoreSummary{VerdictBreakdown: map[model.Verdict]int{}}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(overall_score), 0),
		       COALESCE(MAX(overall_score), 0),
		       COALESCE(MIN(overall_score), 0)
		FROM grading_results
	`).Scan(&summary.TotalSubmissions, &summary.AverageScore, &summary.BestScore, &summary.WorstScore)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT verdict, COUNT(*) FROM grading_results GROUP BY verdict`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var verdict model.Verdict
		var count int
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, err
		}
		summary.VerdictBreakdown[verdict] = count
	}
	return summary, rows.Err()
}
