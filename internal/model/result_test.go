package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionResult_ContractKeys(t *testing.T) {
	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	result := SubmissionResult{
		ResultVersion: ResultVersion,
		SubmissionID:  "sub-1",
		Problem:       ProblemMetadata{ID: "p1", Name: "Design a URL Shortener", Difficulty: DifficultyApprentice},
		PhaseTimes:    map[PhaseName]int{PhaseClarify: 5},
		CreatedAt:     now,
		CompletedAt:   &now,
		PhaseScores:   []PhaseScore{{Phase: PhaseClarify, Score: 8, Bullets: []string{"b"}}},
		Evidence: []EvidenceItem{{
			Phase:       PhaseClarify,
			SnapshotURL: "uploads/sub-1/canvas_clarify.png",
			Transcripts: []TranscriptSnippet{{TimestampSec: 1.5, Text: "hello"}},
			Noticed:     &Noticed{Strength: "good start"},
		}},
		Rubric:            []RubricItem{{Label: "Depth", Score: 7, Status: RubricPartial, ComputedFrom: []PhaseName{PhaseDesign}}},
		Radar:             []RadarDimension{{Skill: SkillClarity, Score: 7.9, Label: "Clarity"}},
		OverallScore:      7.75,
		Verdict:           VerdictHire,
		Summary:           "solid attempt",
		NextAttemptPlan:   []NextAttemptItem{{WhatWentWrong: "w", DoNextTime: "d"}},
		FollowUpQuestions: []string{"q"},
		ReferenceOutline:  ReferenceOutline{Sections: []ReferenceOutlineSection{{Section: "s", Bullets: []string{"b"}}}},
	}

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))

	for _, key := range []string{
		"result_version", "submission_id", "problem", "phase_times",
		"created_at", "completed_at", "phase_scores", "evidence",
		"rubric", "radar", "overall_score", "verdict", "summary",
		"next_attempt_plan", "follow_up_questions", "reference_outline",
	} {
		assert.Contains(t, doc, key)
	}

	assert.Equal(t, float64(2), doc["result_version"])

	evidence := doc["evidence"].([]any)[0].(map[string]any)
	assert.Contains(t, evidence, "snapshot_url")
	transcripts := evidence["transcripts"].([]any)[0].(map[string]any)
	assert.Contains(t, transcripts, "timestamp_sec")

	plan := doc["next_attempt_plan"].([]any)[0].(map[string]any)
	assert.Contains(t, plan, "what_went_wrong")
	assert.Contains(t, plan, "do_next_time")

	var back SubmissionResult
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, result, back)
}

func TestSubmissionStatus_Terminal(t *testing.T) {
	assert.True(t, SubmissionComplete.Terminal())
	assert.True(t, SubmissionFailed.Terminal())
	for _, s := range []SubmissionStatus{SubmissionQueued, SubmissionProcessing, SubmissionTranscribing, SubmissionGrading} {
		assert.False(t, s.Terminal(), "status %s", s)
	}
}
