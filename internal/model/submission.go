package model

import "time"

// PhaseArtifact holds the stored inputs for a single phase.
type PhaseArtifact struct {
	CanvasPath string              `json:"canvas_path"`
	AudioPath  string              `json:"audio_path,omitempty"`
	Transcript []TranscriptSnippet `json:"transcript,omitempty"`
}

// Submission is one candidate attempt. Created by intake; after that only the
// grading orchestrator mutates its status.
type Submission struct {
	ID          string                      `json:"id"`
	ProblemID   string                      `json:"problemId"`
	Status      SubmissionStatus            `json:"status"`
	PhaseTimes  map[PhaseName]int           `json:"phaseTimes"`
	Phases      map[PhaseName]PhaseArtifact `json:"phases"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	CompletedAt *time.Time                  `json:"completedAt,omitempty"`
}

// GradingEvent is one append-only progress record for a submission. Events
// are totally ordered by creation time; the distinct statuses observed form a
// subsequence of StatusOrder, with "failed" only ever last.
type GradingEvent struct {
	ID           int64            `json:"-"`
	SubmissionID string           `json:"submissionId"`
	Status       SubmissionStatus `json:"status"`
	Message      string           `json:"message"`
	Phase        *PhaseName       `json:"phase,omitempty"`
	Progress     *float64         `json:"progress,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// GradingJobPayload is the asynq task payload for one grading run.
type GradingJobPayload struct {
	SubmissionID string `json:"submissionId"`
}
