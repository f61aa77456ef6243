package model

import "time"

// ResultVersion is the only supported schema version for SubmissionResult.
const ResultVersion = 2

// TranscriptSnippet is a timestamped segment of transcribed speech.
type TranscriptSnippet struct {
	TimestampSec float64 `json:"timestamp_sec"`
	Text         string  `json:"text"`
}

// Noticed carries an evaluator's strength/issue observation attached to an
// evidence item. At most one of each.
type Noticed struct {
	Strength string `json:"strength,omitempty"`
	Issue    string `json:"issue,omitempty"`
}

// EvidenceItem bundles the canvas snapshot and transcript snippets backing a
// phase score.
type EvidenceItem struct {
	Phase       PhaseName           `json:"phase"`
	SnapshotURL string              `json:"snapshot_url"`
	Transcripts []TranscriptSnippet `json:"transcripts"`
	Noticed     *Noticed            `json:"noticed,omitempty"`
}

// PhaseScore is the scored feedback for a single phase.
type PhaseScore struct {
	Phase   PhaseName `json:"phase"`
	Score   float64   `json:"score"`
	Bullets []string  `json:"bullets"`
}

// StrengthWeakness is an observation optionally linked to a transcript moment.
type StrengthWeakness struct {
	Phase        PhaseName `json:"phase"`
	Text         string    `json:"text"`
	TimestampSec *float64  `json:"timestamp_sec"`
}

// RubricItem is one rubric criterion with its weighted score.
type RubricItem struct {
	Label        string       `json:"label"`
	Description  string       `json:"description"`
	Score        float64      `json:"score"`
	Status       RubricStatus `json:"status"`
	ComputedFrom []PhaseName  `json:"computed_from"`
}

// RadarDimension is one skill axis of the radar chart.
type RadarDimension struct {
	Skill SkillName `json:"skill"`
	Score float64   `json:"score"`
	Label string    `json:"label"`
}

// NextAttemptItem is one entry of the improvement plan.
type NextAttemptItem struct {
	WhatWentWrong string `json:"what_went_wrong"`
	DoNextTime    string `json:"do_next_time"`
}

// ReferenceOutlineSection is one section of the reference solution outline.
type ReferenceOutlineSection struct {
	Section string   `json:"section"`
	Bullets []string `json:"bullets"`
}

// ReferenceOutline is the structured reference solution outline.
type ReferenceOutline struct {
	Sections []ReferenceOutlineSection `json:"sections"`
}

// ProblemMetadata is the problem summary embedded in a result.
type ProblemMetadata struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Difficulty DifficultyLevel `json:"difficulty"`
}

// PhaseOutput is the typed result of evaluating a single phase. Produced once
// per phase per run, immutable after production.
type PhaseOutput struct {
	Phase      PhaseName          `json:"phase"`
	Score      float64            `json:"score"`
	Bullets    []string           `json:"bullets"`
	Evidence   EvidenceItem       `json:"evidence"`
	Strengths  []StrengthWeakness `json:"strengths"`
	Weaknesses []StrengthWeakness `json:"weaknesses"`
	Highlights []StrengthWeakness `json:"highlights"`
}

// SubmissionResult is the complete grading result contract. Assembled once at
// the end of a successful run and never mutated afterwards.
type SubmissionResult struct {
	ResultVersion int               `json:"result_version"`
	SubmissionID  string            `json:"submission_id"`
	Problem       ProblemMetadata   `json:"problem"`
	PhaseTimes    map[PhaseName]int `json:"phase_times"`
	CreatedAt     time.Time         `json:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at"`

	PhaseScores []PhaseScore   `json:"phase_scores"`
	Evidence    []EvidenceItem `json:"evidence"`

	Rubric []RubricItem     `json:"rubric"`
	Radar  []RadarDimension `json:"radar"`

	OverallScore float64 `json:"overall_score"`
	Verdict      Verdict `json:"verdict"`
	Summary      string  `json:"summary"`

	Strengths  []StrengthWeakness `json:"strengths"`
	Weaknesses []StrengthWeakness `json:"weaknesses"`
	Highlights []StrengthWeakness `json:"highlights"`

	NextAttemptPlan   []NextAttemptItem `json:"next_attempt_plan"`
	FollowUpQuestions []string          `json:"follow_up_questions"`
	ReferenceOutline  ReferenceOutline  `json:"reference_outline"`
}
