package grading

import (
	"encoding/json"
	"fmt"

	"github.com/YatinKare/DesignDual/internal/model"
)

// Placeholder content substituted for parts the pipeline failed to produce.
// Phrased so a reader can tell generated feedback from repaired feedback.
var (
	placeholderScoreBullets = []string{
		"Insufficient evidence to score this phase.",
		"Needs clearer structure and specificity.",
		"Provide concrete tradeoffs and calculations next time.",
	}

	placeholderNextAttemptItem = model.NextAttemptItem{
		WhatWentWrong: "Missing or incomplete phase coverage.",
		DoNextTime:    "Use a phase-by-phase checklist and validate outputs before finalizing.",
	}

	placeholderQuestions = []string{
		"Placeholder follow-up: how would your design handle 10x the expected load?",
		"Placeholder follow-up: which component would you redesign first, and why?",
		"Placeholder follow-up: what failure mode worries you most in this design?",
	}

	placeholderOutlineSections = []model.ReferenceOutlineSection{
		{Section: "Requirements", Bullets: []string{
			"Clarify functional and non-functional requirements.",
			"Enumerate the core user-facing operations.",
			"State explicit out-of-scope items.",
		}},
		{Section: "Estimation", Bullets: []string{
			"Estimate traffic, storage, and bandwidth.",
			"Derive read/write ratio from the access pattern.",
			"Size the cache tier from the hot set.",
		}},
		{Section: "High-Level Design", Bullets: []string{
			"Sketch the end-to-end request path.",
			"Choose the primary datastore and data model.",
			"Define the core API surface.",
		}},
		{Section: "Deep Dive & Tradeoffs", Bullets: []string{
			"Detail the hottest component end to end.",
			"Cover partitioning, replication, and failover.",
			"Name the consistency/availability tradeoff taken.",
		}},
	}
)

func placeholderPhaseScore(phase model.PhaseName) model.PhaseScore {
	return model.PhaseScore{
		Phase:   phase,
		Score:   0,
		Bullets: append([]string(nil), placeholderScoreBullets...),
	}
}

func placeholderEvidence(phase model.PhaseName) model.EvidenceItem {
	return model.EvidenceItem{
		Phase:       phase,
		SnapshotURL: "",
		Transcripts: []model.TranscriptSnippet{},
		Noticed:     &model.Noticed{Issue: "Missing evidence for this phase."},
	}
}

// RepairResult normalizes a result into exact contract shape: canonical
// per-phase ordering, deduplicated entries, clamped scores, derived overall
// score and verdict where the stored ones are out of range, and placeholders
// for anything missing. It never rejects; it always returns a valid result.
// Repairing an already-valid result is a no-op, so the pass is idempotent.
func RepairResult(in *model.SubmissionResult) *model.SubmissionResult {
	r := cloneResult(in)

	r.ResultVersion = model.ResultVersion

	r.PhaseScores = repairPhaseScores(r.PhaseScores)
	r.Evidence = repairEvidence(r.Evidence)
	r.Radar = repairRadar(r.Radar)

	for i := range r.Rubric {
		r.Rubric[i].Score = clampScore(r.Rubric[i].Score)
		switch r.Rubric[i].Status {
		case model.RubricPass, model.RubricPartial, model.RubricFail:
		default:
			r.Rubric[i].Status = RubricStatusFor(r.Rubric[i].Score)
		}
	}

	if r.OverallScore < 0 || r.OverallScore > 10 {
		var sum float64
		for _, ps := range r.PhaseScores {
			sum += ps.Score
		}
		r.OverallScore = round2(sum / float64(len(r.PhaseScores)))
	}
	if !model.ValidVerdicts[r.Verdict] {
		r.Verdict = VerdictFor(r.OverallScore)
	}

	if len(r.NextAttemptPlan) > 3 {
		r.NextAttemptPlan = r.NextAttemptPlan[:3]
	}
	for len(r.NextAttemptPlan) < 3 {
		r.NextAttemptPlan = append(r.NextAttemptPlan, placeholderNextAttemptItem)
	}

	for i := 0; len(r.FollowUpQuestions) < 3 && i < len(placeholderQuestions); i++ {
		q := placeholderQuestions[i]
		if !containsString(r.FollowUpQuestions, q) {
			r.FollowUpQuestions = append(r.FollowUpQuestions, q)
		}
	}

	for i := 0; len(r.ReferenceOutline.Sections) < 4 && i < len(placeholderOutlineSections); i++ {
		r.ReferenceOutline.Sections = append(r.ReferenceOutline.Sections, placeholderOutlineSections[i])
	}

	return r
}

// repairPhaseScores rebuilds the phase score list in canonical order. For
// each phase the first entry with non-empty bullets wins, then any entry,
// then the placeholder.
func repairPhaseScores(scores []model.PhaseScore) []model.PhaseScore {
	byPhase := make(map[model.PhaseName]model.PhaseScore, len(model.PhaseOrder))
	for _, ps := range scores {
		existing, seen := byPhase[ps.Phase]
		if !seen || (len(existing.Bullets) == 0 && len(ps.Bullets) > 0) {
			byPhase[ps.Phase] = ps
		}
	}

	out := make([]model.PhaseScore, 0, len(model.PhaseOrder))
	for _, phase := range model.PhaseOrder {
		ps, ok := byPhase[phase]
		if !ok {
			out = append(out, placeholderPhaseScore(phase))
			continue
		}
		ps.Score = clampScore(ps.Score)
		if len(ps.Bullets) == 0 {
			ps.Bullets = append([]string(nil), placeholderScoreBullets...)
		}
		out = append(out, ps)
	}
	return out
}

func repairEvidence(items []model.EvidenceItem) []model.EvidenceItem {
	byPhase := make(map[model.PhaseName]model.EvidenceItem, len(model.PhaseOrder))
	for _, ev := range items {
		existing, seen := byPhase[ev.Phase]
		if !seen || (len(existing.Transcripts) == 0 && len(ev.Transcripts) > 0) {
			byPhase[ev.Phase] = ev
		}
	}

	out := make([]model.EvidenceItem, 0, len(model.PhaseOrder))
	for _, phase := range model.PhaseOrder {
		ev, ok := byPhase[phase]
		if !ok {
			out = append(out, placeholderEvidence(phase))
			continue
		}
		if ev.Transcripts == nil {
			ev.Transcripts = []model.TranscriptSnippet{}
		}
		out = append(out, ev)
	}
	return out
}

func repairRadar(dims []model.RadarDimension) []model.RadarDimension {
	bySkill := make(map[model.SkillName]model.RadarDimension, len(model.SkillOrder))
	for _, dim := range dims {
		if _, seen := bySkill[dim.Skill]; !seen {
			bySkill[dim.Skill] = dim
		}
	}

	out := make([]model.RadarDimension, 0, len(model.SkillOrder))
	for _, skill := range model.SkillOrder {
		dim, ok := bySkill[skill]
		if !ok {
			dim = model.RadarDimension{Skill: skill, Score: 0, Label: skillLabels[skill]}
		}
		dim.Score = clampScore(dim.Score)
		if dim.Label == "" {
			dim.Label = skillLabels[skill]
		}
		out = append(out, dim)
	}
	return out
}

func clampScore(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 10:
		return 10
	default:
		return s
	}
}

func cloneResult(in *model.SubmissionResult) *model.SubmissionResult {
	raw, err := json.Marshal(in)
	if err != nil {
		// The struct contains nothing json.Marshal can fail on.
		panic(err)
	}
	out := &model.SubmissionResult{}
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

// ValidateResult checks the full result contract. Anything it flags is a bug
// in RepairResult, which must leave nothing for it to find.
func ValidateResult(r *model.SubmissionResult) error {
	if r.ResultVersion != model.ResultVersion {
		return fmt.Errorf("result_version %d, want %d", r.ResultVersion, model.ResultVersion)
	}
	if r.SubmissionID == "" {
		return fmt.Errorf("missing submission_id")
	}

	if len(r.PhaseScores) != len(model.PhaseOrder) {
		return fmt.Errorf("expected %d phase scores, got %d", len(model.PhaseOrder), len(r.PhaseScores))
	}
	for i, phase := range model.PhaseOrder {
		ps := r.PhaseScores[i]
		if ps.Phase != phase {
			return fmt.Errorf("phase_scores[%d] is %q, want %q", i, ps.Phase, phase)
		}
		if ps.Score < 0 || ps.Score > 10 {
			return fmt.Errorf("phase_scores[%d] score %.2f out of [0,10]", i, ps.Score)
		}
		if len(ps.Bullets) == 0 {
			return fmt.Errorf("phase_scores[%d] has no bullets", i)
		}
	}

	if len(r.Evidence) != len(model.PhaseOrder) {
		return fmt.Errorf("expected %d evidence items, got %d", len(model.PhaseOrder), len(r.Evidence))
	}
	for i, phase := range model.PhaseOrder {
		if r.Evidence[i].Phase != phase {
			return fmt.Errorf("evidence[%d] is %q, want %q", i, r.Evidence[i].Phase, phase)
		}
	}

	if len(r.Radar) != len(model.SkillOrder) {
		return fmt.Errorf("expected %d radar dimensions, got %d", len(model.SkillOrder), len(r.Radar))
	}
	for i, skill := range model.SkillOrder {
		dim := r.Radar[i]
		if dim.Skill != skill {
			return fmt.Errorf("radar[%d] is %q, want %q", i, dim.Skill, skill)
		}
		if dim.Score < 0 || dim.Score > 10 {
			return fmt.Errorf("radar[%d] score %.2f out of [0,10]", i, dim.Score)
		}
	}

	for i, item := range r.Rubric {
		if item.Score < 0 || item.Score > 10 {
			return fmt.Errorf("rubric[%d] score %.2f out of [0,10]", i, item.Score)
		}
		switch item.Status {
		case model.RubricPass, model.RubricPartial, model.RubricFail:
		default:
			return fmt.Errorf("rubric[%d] has invalid status %q", i, item.Status)
		}
	}

	if r.OverallScore < 0 || r.OverallScore > 10 {
		return fmt.Errorf("overall_score %.2f out of [0,10]", r.OverallScore)
	}
	if !model.ValidVerdicts[r.Verdict] {
		return fmt.Errorf("invalid verdict %q", r.Verdict)
	}

	if len(r.NextAttemptPlan) != 3 {
		return fmt.Errorf("expected exactly 3 next_attempt_plan items, got %d", len(r.NextAttemptPlan))
	}
	if len(r.FollowUpQuestions) < 3 {
		return fmt.Errorf("expected at least 3 follow_up_questions, got %d", len(r.FollowUpQuestions))
	}
	if len(r.ReferenceOutline.Sections) < 4 {
		return fmt.Errorf("expected at least 4 reference outline sections, got %d", len(r.ReferenceOutline.Sections))
	}

	return nil
}
