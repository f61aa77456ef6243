package model

import "time"

// CreateSubmissionResponse is returned by POST /api/submissions.
type CreateSubmissionResponse struct {
	SubmissionID string           `json:"submissionId"`
	Status       SubmissionStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// SubmissionStatusResponse is returned by GET /api/submissions/:id/status.
type SubmissionStatusResponse struct {
	SubmissionID string           `json:"submissionId"`
	ProblemID    string           `json:"problemId"`
	Status       SubmissionStatus `json:"status"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
}

// SubmissionEventsResponse is returned by GET /api/submissions/:id/events.
type SubmissionEventsResponse struct {
	SubmissionID string         `json:"submissionId"`
	Events       []GradingEvent `json:"events"`
}

// ScoreHistoryEntry is one row of the dashboard score history.
type ScoreHistoryEntry struct {
	SubmissionID string          `json:"submissionId"`
	ProblemID    string          `json:"problemId"`
	ProblemTitle string          `json:"problemTitle"`
	Difficulty   DifficultyLevel `json:"difficulty"`
	OverallScore float64         `json:"overallScore"`
	Verdict      Verdict         `json:"verdict"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  time.Time       `json:"completedAt"`
}

// ScoreSummary aggregates performance across completed submissions.
type ScoreSummary struct {
	TotalSubmissions int             `json:"totalSubmissions"`
	AverageScore     float64         `json:"averageScore"`
	BestScore        float64         `json:"bestScore"`
	WorstScore       float64         `json:"worstScore"`
	VerdictBreakdown map[Verdict]int `json:"verdictBreakdown"`
}
