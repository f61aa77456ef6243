package grading

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/YatinKare/DesignDual/internal/model"
)

// SynthesisChain runs the three strictly sequential synthesis steps over the
// 4 phase outputs: rubric/radar computation, plan/outline generation, and
// final assembly, followed by the contract repair pass.
type SynthesisChain struct {
	planner Planner
}

func NewSynthesisChain(planner Planner) *SynthesisChain {
	return &SynthesisChain{planner: planner}
}

// Run produces the final SubmissionResult. The rubric/radar step is pure
// arithmetic; the plan step goes through the Planner capability and falls
// back to a deterministic plan when the planner misbehaves; assembly always
// yields a structurally complete result, degraded content notwithstanding.
func (c *SynthesisChain) Run(
	ctx context.Context,
	sub *model.Submission,
	problem *model.Problem,
	outputs map[model.PhaseName]*model.PhaseOutput,
	completedAt time.Time,
) (*model.SubmissionResult, error) {
	scores := phaseScoreMap(outputs)

	// Step 1: rubric, radar, overall score, verdict, summary.
	rr := ComputeRubricRadar(problem, scores)

	// Step 2: improvement plan, follow-up questions, reference outline.
	fallback := FallbackPlan(problem, outputs, rr)
	plan, err := c.planner.BuildPlan(ctx, problem, outputs, rr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Planner failed for submission %s, using fallback plan: %v", sub.ID, err)
		plan = nil
	}
	plan = normalizePlan(plan, fallback)

	// Step 3: assemble the contract object, then repair residual drift.
	result := assemble(sub, problem, outputs, rr, plan, completedAt)
	result = RepairResult(result)

	if err := ValidateResult(result); err != nil {
		return nil, fmt.Errorf("assembled result violates contract: %w", err)
	}
	return result, nil
}

func phaseScoreMap(outputs map[model.PhaseName]*model.PhaseOutput) map[model.PhaseName]float64 {
	scores := make(map[model.PhaseName]float64, len(model.PhaseOrder))
	for _, phase := range model.PhaseOrder {
		if out := outputs[phase]; out != nil {
			scores[phase] = out.Score
		}
	}
	return scores
}

// FallbackPlan builds a fully deterministic plan from the lowest-scoring
// rubric items and the evaluators' weakness observations. Used whenever the
// Planner capability fails or under-delivers.
func FallbackPlan(problem *model.Problem, outputs map[model.PhaseName]*model.PhaseOutput, rr *RubricRadar) *PlanOutline {
	plan := &PlanOutline{}

	// Improvements: lowest rubric items first, weaknesses as backfill.
	for _, item := range LowestRubricItems(rr.Rubric) {
		if len(plan.NextAttemptPlan) == 3 {
			break
		}
		plan.NextAttemptPlan = append(plan.NextAttemptPlan, model.NextAttemptItem{
			WhatWentWrong: fmt.Sprintf("Scored %.1f/10 on %q: %s", item.Score, item.Label, item.Description),
			DoNextTime:    fmt.Sprintf("Rework the %s before the next attempt and verify it against the problem constraints.", item.Label),
		})
	}
	for _, phase := range weakestPhases(outputs) {
		if len(plan.NextAttemptPlan) == 3 {
			break
		}
		text := fmt.Sprintf("The %s phase lacked depth.", phase)
		if out := outputs[phase]; out != nil && len(out.Weaknesses) > 0 {
			text = out.Weaknesses[0].Text
		}
		plan.NextAttemptPlan = append(plan.NextAttemptPlan, model.NextAttemptItem{
			WhatWentWrong: text,
			DoNextTime:    fmt.Sprintf("Spend more of the %s phase on concrete, verifiable statements.", phase),
		})
	}
	for len(plan.NextAttemptPlan) < 3 {
		plan.NextAttemptPlan = append(plan.NextAttemptPlan, placeholderNextAttemptItem)
	}

	for _, phase := range weakestPhases(outputs) {
		if len(plan.FollowUpQuestions) == 3 {
			break
		}
		plan.FollowUpQuestions = append(plan.FollowUpQuestions, followUpTemplates[phase])
	}

	plan.ReferenceOutline = fallbackOutline(problem)
	return plan
}

var followUpTemplates = map[model.PhaseName]string{
	model.PhaseClarify:  "Which requirement would change your design the most if it doubled, and why?",
	model.PhaseEstimate: "Walk through your peak-load estimate again: which assumption is the weakest?",
	model.PhaseDesign:   "Which component in your design is the first to fall over at 10x traffic?",
	model.PhaseExplain:  "What tradeoff in your design would you reverse if consistency mattered more than latency?",
}

func fallbackOutline(problem *model.Problem) model.ReferenceOutline {
	title := problem.Title
	return model.ReferenceOutline{Sections: []model.ReferenceOutlineSection{
		{Section: "Requirements & Scope", Bullets: []string{
			fmt.Sprintf("Restate the goal of %q and the user-facing operations.", title),
			"Separate functional from non-functional requirements.",
			"Call out explicit out-of-scope items.",
		}},
		{Section: "Capacity Estimation", Bullets: []string{
			"Estimate daily active users and requests per second.",
			"Derive storage growth per year from write volume.",
			"Size caches from the read/write ratio.",
		}},
		{Section: "High-Level Design", Bullets: []string{
			"Sketch the request path through load balancer, service tier, and storage.",
			"Choose a primary datastore and justify the data model.",
			"Define the core API surface.",
		}},
		{Section: "Deep Dive", Bullets: []string{
			"Detail the hottest component end to end.",
			"Address partitioning and replication for the primary store.",
			"Cover failure detection and recovery.",
		}},
		{Section: "Tradeoffs & Evolution", Bullets: []string{
			"Name the consistency/availability tradeoff taken and its cost.",
			"Identify the first bottleneck at 10x scale.",
			"List what you would build differently with more time.",
		}},
	}}
}

// weakestPhases orders the 4 phases by ascending score, ties broken by
// canonical order.
func weakestPhases(outputs map[model.PhaseName]*model.PhaseOutput) []model.PhaseName {
	phases := make([]model.PhaseName, len(model.PhaseOrder))
	copy(phases, model.PhaseOrder)
	score := func(p model.PhaseName) float64 {
		if out := outputs[p]; out != nil {
			return out.Score
		}
		return 0
	}
	for i := 1; i < len(phases); i++ {
		for j := i; j > 0 && score(phases[j]) < score(phases[j-1]); j-- {
			phases[j], phases[j-1] = phases[j-1], phases[j]
		}
	}
	return phases
}

// normalizePlan enforces the plan shape: exactly 3 improvements, at least 3
// follow-up questions, and a 4-6 section outline with 3-6 bullets each,
// borrowing from the deterministic fallback wherever the planner came up
// short.
func normalizePlan(plan, fallback *PlanOutline) *PlanOutline {
	if plan == nil {
		return fallback
	}

	if len(plan.NextAttemptPlan) > 3 {
		plan.NextAttemptPlan = plan.NextAttemptPlan[:3]
	}
	for _, item := range fallback.NextAttemptPlan {
		if len(plan.NextAttemptPlan) == 3 {
			break
		}
		plan.NextAttemptPlan = append(plan.NextAttemptPlan, item)
	}

	for _, q := range fallback.FollowUpQuestions {
		if len(plan.FollowUpQuestions) >= 3 {
			break
		}
		if !containsString(plan.FollowUpQuestions, q) {
			plan.FollowUpQuestions = append(plan.FollowUpQuestions, q)
		}
	}

	sections := plan.ReferenceOutline.Sections
	if len(sections) > 6 {
		sections = sections[:6]
	}
	for _, sec := range fallback.ReferenceOutline.Sections {
		if len(sections) >= 4 {
			break
		}
		sections = append(sections, sec)
	}
	for i := range sections {
		if len(sections[i].Bullets) > 6 {
			sections[i].Bullets = sections[i].Bullets[:6]
		}
		for j := len(sections[i].Bullets); j < 3; j++ {
			sections[i].Bullets = append(sections[i].Bullets,
				fmt.Sprintf("Expand on %s with concrete numbers and named components.", sections[i].Section))
		}
	}
	plan.ReferenceOutline.Sections = sections

	return plan
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// assemble builds the full contract object from all prior outputs. Missing
// upstream pieces become documented placeholders so the shape is always
// complete even when content is degraded.
func assemble(
	sub *model.Submission,
	problem *model.Problem,
	outputs map[model.PhaseName]*model.PhaseOutput,
	rr *RubricRadar,
	plan *PlanOutline,
	completedAt time.Time,
) *model.SubmissionResult {
	result := &model.SubmissionResult{
		ResultVersion: model.ResultVersion,
		SubmissionID:  sub.ID,
		Problem: model.ProblemMetadata{
			ID:         problem.ID,
			Name:       problem.Title,
			Difficulty: problem.Difficulty,
		},
		PhaseTimes:  sub.PhaseTimes,
		CreatedAt:   sub.CreatedAt,
		CompletedAt: &completedAt,

		Rubric:       rr.Rubric,
		Radar:        rr.Radar,
		OverallScore: rr.OverallScore,
		Verdict:      rr.Verdict,
		Summary:      rr.Summary,

		NextAttemptPlan:   plan.NextAttemptPlan,
		FollowUpQuestions: plan.FollowUpQuestions,
		ReferenceOutline:  plan.ReferenceOutline,
	}

	for _, phase := range model.PhaseOrder {
		out := outputs[phase]
		if out == nil {
			result.PhaseScores = append(result.PhaseScores, placeholderPhaseScore(phase))
			result.Evidence = append(result.Evidence, placeholderEvidence(phase))
			continue
		}
		result.PhaseScores = append(result.PhaseScores, model.PhaseScore{
			Phase:   phase,
			Score:   out.Score,
			Bullets: out.Bullets,
		})
		result.Evidence = append(result.Evidence, out.Evidence)
		result.Strengths = append(result.Strengths, out.Strengths...)
		result.Weaknesses = append(result.Weaknesses, out.Weaknesses...)
		result.Highlights = append(result.Highlights, out.Highlights...)
	}

	return result
}
