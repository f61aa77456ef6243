package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YatinKare/DesignDual/internal/model"
)

// messyResult is deliberately malformed in every way RepairResult must fix:
// duplicate and missing phases, out-of-range scores, unknown verdict, short
// plan and outline.
func messyResult() *model.SubmissionResult {
	now := time.Now().UTC()
	return &model.SubmissionResult{
		ResultVersion: 1,
		SubmissionID:  "sub-1",
		CreatedAt:     now,
		CompletedAt:   &now,
		PhaseScores: []model.PhaseScore{
			{Phase: model.PhaseDesign, Score: 12.0, Bullets: []string{"over the top"}},
			{Phase: model.PhaseClarify, Score: 7.0},
			{Phase: model.PhaseClarify, Score: 6.0, Bullets: []string{"asked good questions"}},
		},
		Evidence: []model.EvidenceItem{
			{Phase: model.PhaseExplain},
			{Phase: model.PhaseExplain, Transcripts: []model.TranscriptSnippet{{TimestampSec: 3, Text: "so the tradeoff is"}}},
		},
		Radar: []model.RadarDimension{
			{Skill: model.SkillWisdom, Score: -2},
			{Skill: model.SkillClarity, Score: 7.5, Label: "Clarity"},
		},
		Rubric: []model.RubricItem{
			{Label: "Depth", Score: 11, Status: "excellent"},
		},
		OverallScore:      42,
		Verdict:           "strong-hire",
		NextAttemptPlan:   []model.NextAttemptItem{{WhatWentWrong: "x", DoNextTime: "y"}},
		FollowUpQuestions: []string{"one question"},
		ReferenceOutline: model.ReferenceOutline{Sections: []model.ReferenceOutlineSection{
			{Section: "Only Section", Bullets: []string{"a", "b", "c"}},
		}},
	}
}

func TestRepairResult_ProducesValidContract(t *testing.T) {
	repaired := RepairResult(messyResult())
	require.NoError(t, ValidateResult(repaired))

	assert.Equal(t, model.ResultVersion, repaired.ResultVersion)

	require.Len(t, repaired.PhaseScores, 4)
	for i, phase := range model.PhaseOrder {
		assert.Equal(t, phase, repaired.PhaseScores[i].Phase)
	}
	// Duplicate clarify: the entry with bullets wins.
	assert.Equal(t, 6.0, repaired.PhaseScores[0].Score)
	// Out-of-range design score is clamped.
	assert.Equal(t, 10.0, repaired.PhaseScores[2].Score)
	// Missing phases get the placeholder shape.
	assert.Equal(t, 0.0, repaired.PhaseScores[1].Score)
	assert.Equal(t, placeholderScoreBullets, repaired.PhaseScores[1].Bullets)

	require.Len(t, repaired.Evidence, 4)
	// Duplicate explain: the entry with transcripts wins.
	assert.Len(t, repaired.Evidence[3].Transcripts, 1)
	require.NotNil(t, repaired.Evidence[0].Noticed)
	assert.Equal(t, "Missing evidence for this phase.", repaired.Evidence[0].Noticed.Issue)

	require.Len(t, repaired.Radar, 4)
	assert.Equal(t, model.SkillClarity, repaired.Radar[0].Skill)
	assert.Equal(t, 0.0, repaired.Radar[3].Score)
	assert.Equal(t, "Structure", repaired.Radar[1].Label)

	assert.Equal(t, 10.0, repaired.Rubric[0].Score)
	assert.Equal(t, model.RubricPass, repaired.Rubric[0].Status)
}

func TestRepairResult_DerivesOverallAndVerdict(t *testing.T) {
	repaired := RepairResult(messyResult())

	// Overall rebuilt from repaired phase scores: (6 + 0 + 10 + 0) / 4 = 4.
	assert.InDelta(t, 4.0, repaired.OverallScore, 1e-9)
	assert.Equal(t, model.VerdictNoHire, repaired.Verdict)
}

func TestRepairResult_PadsPlanQuestionsOutline(t *testing.T) {
	repaired := RepairResult(messyResult())

	require.Len(t, repaired.NextAttemptPlan, 3)
	assert.Equal(t, "x", repaired.NextAttemptPlan[0].WhatWentWrong)
	assert.Equal(t, placeholderNextAttemptItem, repaired.NextAttemptPlan[1])

	assert.GreaterOrEqual(t, len(repaired.FollowUpQuestions), 3)
	assert.Equal(t, "one question", repaired.FollowUpQuestions[0])

	assert.GreaterOrEqual(t, len(repaired.ReferenceOutline.Sections), 4)
	assert.Equal(t, "Only Section", repaired.ReferenceOutline.Sections[0].Section)
}

func TestRepairResult_Idempotent(t *testing.T) {
	once := RepairResult(messyResult())
	twice := RepairResult(once)
	assert.Equal(t, once, twice)
}

func TestRepairResult_DoesNotMutateInput(t *testing.T) {
	in := messyResult()
	_ = RepairResult(in)
	assert.Equal(t, 1, in.ResultVersion)
	assert.Len(t, in.PhaseScores, 3)
}

func TestValidateResult_Failures(t *testing.T) {
	valid := RepairResult(messyResult())

	tests := []struct {
		name   string
		modify func(*model.SubmissionResult)
	}{
		{"wrong version", func(r *model.SubmissionResult) { r.ResultVersion = 1 }},
		{"missing submission id", func(r *model.SubmissionResult) { r.SubmissionID = "" }},
		{"phase score out of range", func(r *model.SubmissionResult) { r.PhaseScores[0].Score = 10.5 }},
		{"phase out of order", func(r *model.SubmissionResult) {
			r.PhaseScores[0], r.PhaseScores[1] = r.PhaseScores[1], r.PhaseScores[0]
		}},
		{"missing evidence", func(r *model.SubmissionResult) { r.Evidence = r.Evidence[:3] }},
		{"radar skill out of order", func(r *model.SubmissionResult) {
			r.Radar[0], r.Radar[1] = r.Radar[1], r.Radar[0]
		}},
		{"bad verdict", func(r *model.SubmissionResult) { r.Verdict = "meh" }},
		{"too few plan items", func(r *model.SubmissionResult) { r.NextAttemptPlan = r.NextAttemptPlan[:2] }},
		{"too few questions", func(r *model.SubmissionResult) { r.FollowUpQuestions = r.FollowUpQuestions[:1] }},
		{"short outline", func(r *model.SubmissionResult) {
			r.ReferenceOutline.Sections = r.ReferenceOutline.Sections[:2]
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := cloneResult(valid)
			tt.modify(r)
			assert.Error(t, ValidateResult(r))
		})
	}
}
