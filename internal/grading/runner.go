package grading

import (
	"context"
	"fmt"
	"sync"

	"github.com/YatinKare/DesignDual/internal/model"
)

// PhaseResult is one phase's evaluation outcome: a validated output or an
// explicit failure marker. Exactly one of Output/Err is set.
type PhaseResult struct {
	Output *model.PhaseOutput
	Err    error
}

// PhaseRunner fans the 4 phase evaluations out concurrently and joins them.
// Each evaluation writes to its own slot, so the join needs no locking; a
// failure in one phase never aborts its siblings.
type PhaseRunner struct {
	evaluator PhaseEvaluator
}

func NewPhaseRunner(evaluator PhaseEvaluator) *PhaseRunner {
	return &PhaseRunner{evaluator: evaluator}
}

// Run evaluates all 4 phases and returns a result per phase. Outputs are
// schema-validated before acceptance; malformed ones become that phase's
// failure. The caller bounds total latency through ctx.
func (r *PhaseRunner) Run(ctx context.Context, problem *model.Problem, inputs map[model.PhaseName]PhaseInput) map[model.PhaseName]PhaseResult {
	slots := make([]PhaseResult, len(model.PhaseOrder))

	var wg sync.WaitGroup
	for i, phase := range model.PhaseOrder {
		input, ok := inputs[phase]
		if !ok {
			slots[i] = PhaseResult{Err: fmt.Errorf("no input bundle for phase %q", phase)}
			continue
		}

		wg.Add(1)
		go func(i int, phase model.PhaseName, input PhaseInput) {
			defer wg.Done()
			out, err := r.evaluator.EvaluatePhase(ctx, problem, input)
			if err == nil {
				err = ValidatePhaseOutput(out, phase)
			}
			if err != nil {
				slots[i] = PhaseResult{Err: fmt.Errorf("phase %q evaluation failed: %w", phase, err)}
				return
			}
			slots[i] = PhaseResult{Output: out}
		}(i, phase, input)
	}
	wg.Wait()

	results := make(map[model.PhaseName]PhaseResult, len(model.PhaseOrder))
	for i, phase := range model.PhaseOrder {
		results[phase] = slots[i]
	}
	return results
}
