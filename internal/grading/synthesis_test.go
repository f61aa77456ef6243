package grading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YatinKare/DesignDual/internal/model"
)

func testSubmission() *model.Submission {
	now := time.Now().UTC()
	return &model.Submission{
		ID:        "sub-1",
		ProblemID: "prob-url-shortener",
		Status:    model.SubmissionGrading,
		PhaseTimes: map[model.PhaseName]int{
			model.PhaseClarify:  5,
			model.PhaseEstimate: 5,
			model.PhaseDesign:   20,
			model.PhaseExplain:  10,
		},
		Phases:    map[model.PhaseName]model.PhaseArtifact{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func testOutputs() map[model.PhaseName]*model.PhaseOutput {
	outputs := make(map[model.PhaseName]*model.PhaseOutput)
	for phase, score := range mockPhaseScores {
		outputs[phase] = validOutput(phase, score)
	}
	return outputs
}

type funcPlanner func(ctx context.Context, problem *model.Problem, outputs map[model.PhaseName]*model.PhaseOutput, rr *RubricRadar) (*PlanOutline, error)

func (f funcPlanner) BuildPlan(ctx context.Context, problem *model.Problem, outputs map[model.PhaseName]*model.PhaseOutput, rr *RubricRadar) (*PlanOutline, error) {
	return f(ctx, problem, outputs, rr)
}

func TestSynthesisChain_ProducesValidResult(t *testing.T) {
	chain := NewSynthesisChain(MockPlanner{})
	completedAt := time.Now().UTC()

	result, err := chain.Run(context.Background(), testSubmission(), testProblem(), testOutputs(), completedAt)
	require.NoError(t, err)
	require.NoError(t, ValidateResult(result))

	assert.Equal(t, "sub-1", result.SubmissionID)
	assert.Equal(t, "Design a URL Shortener", result.Problem.Name)
	assert.InDelta(t, 7.75, result.OverallScore, 1e-9)
	assert.Equal(t, model.VerdictHire, result.Verdict)
	require.NotNil(t, result.CompletedAt)
	assert.True(t, result.CompletedAt.Equal(completedAt))

	// Per-phase lists in canonical order.
	for i, phase := range model.PhaseOrder {
		assert.Equal(t, phase, result.PhaseScores[i].Phase)
		assert.Equal(t, phase, result.Evidence[i].Phase)
	}
	assert.Len(t, result.Strengths, 4)
	assert.Len(t, result.Weaknesses, 4)
}

func TestSynthesisChain_PlannerFailureFallsBack(t *testing.T) {
	chain := NewSynthesisChain(funcPlanner(func(context.Context, *model.Problem, map[model.PhaseName]*model.PhaseOutput, *RubricRadar) (*PlanOutline, error) {
		return nil, errors.New("quota exhausted")
	}))

	result, err := chain.Run(context.Background(), testSubmission(), testProblem(), testOutputs(), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, ValidateResult(result))

	assert.Len(t, result.NextAttemptPlan, 3)
	assert.GreaterOrEqual(t, len(result.FollowUpQuestions), 3)
	assert.GreaterOrEqual(t, len(result.ReferenceOutline.Sections), 4)
}

func TestSynthesisChain_CancelledContextPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := NewSynthesisChain(funcPlanner(func(ctx context.Context, _ *model.Problem, _ map[model.PhaseName]*model.PhaseOutput, _ *RubricRadar) (*PlanOutline, error) {
		return nil, ctx.Err()
	}))

	_, err := chain.Run(ctx, testSubmission(), testProblem(), testOutputs(), time.Now().UTC())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthesisChain_SkimpyPlanNormalized(t *testing.T) {
	chain := NewSynthesisChain(funcPlanner(func(context.Context, *model.Problem, map[model.PhaseName]*model.PhaseOutput, *RubricRadar) (*PlanOutline, error) {
		return &PlanOutline{
			NextAttemptPlan:   []model.NextAttemptItem{{WhatWentWrong: "rushed the estimate", DoNextTime: "write the math down"}},
			FollowUpQuestions: []string{"what breaks at 10x?"},
			ReferenceOutline: model.ReferenceOutline{Sections: []model.ReferenceOutlineSection{
				{Section: "Design", Bullets: []string{"one bullet"}},
			}},
		}, nil
	}))

	result, err := chain.Run(context.Background(), testSubmission(), testProblem(), testOutputs(), time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, ValidateResult(result))

	// Planner content is kept in front of the padding.
	assert.Equal(t, "rushed the estimate", result.NextAttemptPlan[0].WhatWentWrong)
	assert.Equal(t, "what breaks at 10x?", result.FollowUpQuestions[0])
	assert.Equal(t, "Design", result.ReferenceOutline.Sections[0].Section)
	assert.GreaterOrEqual(t, len(result.ReferenceOutline.Sections[0].Bullets), 3)
	assert.Len(t, result.NextAttemptPlan, 3)
}

func TestFallbackPlan_PrioritizesLowestRubric(t *testing.T) {
	outputs := testOutputs()
	scores := phaseScoreMap(outputs)
	rr := ComputeRubricRadar(testProblem(), scores)

	plan := FallbackPlan(testProblem(), outputs, rr)

	require.Len(t, plan.NextAttemptPlan, 3)
	// Capacity Planning (7.8) is the lowest rubric item.
	assert.Contains(t, plan.NextAttemptPlan[0].WhatWentWrong, "Capacity Planning")
	assert.GreaterOrEqual(t, len(plan.FollowUpQuestions), 3)
	require.GreaterOrEqual(t, len(plan.ReferenceOutline.Sections), 4)
	for _, sec := range plan.ReferenceOutline.Sections {
		assert.GreaterOrEqual(t, len(sec.Bullets), 3)
	}
}
