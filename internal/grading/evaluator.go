package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/YatinKare/DesignDual/internal/model"
)

// ErrInvalidPhaseOutput marks an evaluator response that failed schema
// validation at the boundary. It is treated as that phase's failure, never
// coerced into a usable output.
var ErrInvalidPhaseOutput = errors.New("invalid phase output")

// PhaseInput is everything an evaluator sees for one phase.
type PhaseInput struct {
	Phase        model.PhaseName
	SnapshotPath string
	Transcripts  []model.TranscriptSnippet
}

// PlanOutline is the output of the second synthesis step.
type PlanOutline struct {
	NextAttemptPlan   []model.NextAttemptItem `json:"next_attempt_plan"`
	FollowUpQuestions []string                `json:"follow_up_questions"`
	ReferenceOutline  model.ReferenceOutline  `json:"reference_outline"`
}

// PhaseEvaluator produces a scored report for one phase of a submission.
// Implementations may take minutes per call; callers bound them with a
// context deadline.
type PhaseEvaluator interface {
	EvaluatePhase(ctx context.Context, problem *model.Problem, input PhaseInput) (*model.PhaseOutput, error)
}

// Planner produces the improvement plan, follow-up questions, and reference
// outline from the phase outputs and computed rubric.
type Planner interface {
	BuildPlan(ctx context.Context, problem *model.Problem, outputs map[model.PhaseName]*model.PhaseOutput, rr *RubricRadar) (*PlanOutline, error)
}

// Transcriber converts one recorded audio clip into timestamped snippets.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]model.TranscriptSnippet, error)
}

// ValidatePhaseOutput enforces the PhaseOutput schema before an evaluator
// response is accepted: score bounded, bullet and observation counts bounded,
// phase fields matching the requested phase.
func ValidatePhaseOutput(out *model.PhaseOutput, expected model.PhaseName) error {
	if out == nil {
		return fmt.Errorf("%w: no output for phase %q", ErrInvalidPhaseOutput, expected)
	}
	if out.Phase != expected {
		return fmt.Errorf("%w: phase mismatch, requested %q got %q", ErrInvalidPhaseOutput, expected, out.Phase)
	}
	if out.Score < 0 || out.Score > 10 {
		return fmt.Errorf("%w: score %.2f out of [0,10] for phase %q", ErrInvalidPhaseOutput, out.Score, expected)
	}
	if n := len(out.Bullets); n < 3 || n > 6 {
		return fmt.Errorf("%w: expected 3-6 bullets for phase %q, got %d", ErrInvalidPhaseOutput, expected, n)
	}
	if out.Evidence.Phase != expected {
		return fmt.Errorf("%w: evidence phase mismatch for %q", ErrInvalidPhaseOutput, expected)
	}
	if n := len(out.Strengths); n < 1 || n > 3 {
		return fmt.Errorf("%w: expected 1-3 strengths for phase %q, got %d", ErrInvalidPhaseOutput, expected, n)
	}
	if n := len(out.Weaknesses); n < 1 || n > 2 {
		return fmt.Errorf("%w: expected 1-2 weaknesses for phase %q, got %d", ErrInvalidPhaseOutput, expected, n)
	}
	if n := len(out.Highlights); n > 2 {
		return fmt.Errorf("%w: expected at most 2 highlights for phase %q, got %d", ErrInvalidPhaseOutput, expected, n)
	}
	return nil
}
