package grading

import (
	"context"
	"fmt"

	"github.com/YatinKare/DesignDual/internal/model"
)

// Deterministic stand-ins used when no Gemini API key is configured. They
// produce contract-valid output so the full pipeline, persistence, and
// frontend can be exercised without an LLM.

var mockPhaseScores = map[model.PhaseName]float64{
	model.PhaseClarify:  8.0,
	model.PhaseEstimate: 7.5,
	model.PhaseDesign:   8.5,
	model.PhaseExplain:  7.0,
}

type MockEvaluator struct{}

func (MockEvaluator) EvaluatePhase(ctx context.Context, problem *model.Problem, input PhaseInput) (*model.PhaseOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phase := input.Phase
	ts := float64(5)
	out := &model.PhaseOutput{
		Phase: phase,
		Score: mockPhaseScores[phase],
		Bullets: []string{
			fmt.Sprintf("Covered the core goals of the %s phase for %q.", phase, problem.Title),
			"Used the whiteboard to anchor the verbal explanation.",
			"Stayed within the allotted phase time.",
		},
		Evidence: model.EvidenceItem{
			Phase:       phase,
			SnapshotURL: input.SnapshotPath,
			Transcripts: firstSnippets(input.Transcripts, 2),
			Noticed:     &model.Noticed{Strength: fmt.Sprintf("Clear progression through the %s phase.", phase)},
		},
		Strengths: []model.StrengthWeakness{
			{Phase: phase, Text: fmt.Sprintf("Methodical approach to the %s phase.", phase), TimestampSec: &ts},
		},
		Weaknesses: []model.StrengthWeakness{
			{Phase: phase, Text: "Some statements lacked concrete numbers."},
		},
	}
	return out, nil
}

type MockPlanner struct{}

func (MockPlanner) BuildPlan(ctx context.Context, problem *model.Problem, outputs map[model.PhaseName]*model.PhaseOutput, rr *RubricRadar) (*PlanOutline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FallbackPlan(problem, outputs, rr), nil
}

type MockTranscriber struct{}

func (MockTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSnippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []model.TranscriptSnippet{
		{TimestampSec: 0, Text: "Let me start by restating the problem in my own words."},
		{TimestampSec: 14.5, Text: "I want to confirm the scale we are designing for before going further."},
	}, nil
}

func firstSnippets(snippets []model.TranscriptSnippet, n int) []model.TranscriptSnippet {
	if len(snippets) > n {
		snippets = snippets[:n]
	}
	out := make([]model.TranscriptSnippet, len(snippets))
	copy(out, snippets)
	return out
}
