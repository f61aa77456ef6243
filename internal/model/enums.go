package model

// Phase names
type PhaseName string

const (
	PhaseClarify  PhaseName = "clarify"
	PhaseEstimate PhaseName = "estimate"
	PhaseDesign   PhaseName = "design"
	PhaseExplain  PhaseName = "explain"
)

// PhaseOrder is the canonical ordering used everywhere a per-phase list is
// produced: phase_scores, evidence, progress events.
var PhaseOrder = []PhaseName{PhaseClarify, PhaseEstimate, PhaseDesign, PhaseExplain}

var ValidPhases = map[PhaseName]bool{
	PhaseClarify:  true,
	PhaseEstimate: true,
	PhaseDesign:   true,
	PhaseExplain:  true,
}

// Submission status
type SubmissionStatus string

const (
	SubmissionQueued       SubmissionStatus = "queued"
	SubmissionProcessing   SubmissionStatus = "processing"
	SubmissionTranscribing SubmissionStatus = "transcribing"
	SubmissionGrading      SubmissionStatus = "grading"
	SubmissionComplete     SubmissionStatus = "complete"
	SubmissionFailed       SubmissionStatus = "failed"
)

// StatusOrder lists the non-failure lifecycle in the only order it may
// advance. "failed" is reachable from any non-terminal state.
var StatusOrder = []SubmissionStatus{
	SubmissionQueued,
	SubmissionProcessing,
	SubmissionTranscribing,
	SubmissionGrading,
	SubmissionComplete,
}

// Terminal reports whether a status permits no further transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionComplete || s == SubmissionFailed
}

// Rubric item status
type RubricStatus string

const (
	RubricPass    RubricStatus = "pass"
	RubricPartial RubricStatus = "partial"
	RubricFail    RubricStatus = "fail"
)

// Hiring verdicts
type Verdict string

const (
	VerdictHire   Verdict = "hire"
	VerdictMaybe  Verdict = "maybe"
	VerdictNoHire Verdict = "no-hire"
)

var ValidVerdicts = map[Verdict]bool{
	VerdictHire:   true,
	VerdictMaybe:  true,
	VerdictNoHire: true,
}

// Radar chart skills
type SkillName string

const (
	SkillClarity   SkillName = "clarity"
	SkillStructure SkillName = "structure"
	SkillPower     SkillName = "power"
	SkillWisdom    SkillName = "wisdom"
)

// SkillOrder is the fixed radar ordering required by the result contract.
var SkillOrder = []SkillName{SkillClarity, SkillStructure, SkillPower, SkillWisdom}

// Problem difficulty tiers
type DifficultyLevel string

const (
	DifficultyApprentice DifficultyLevel = "apprentice"
	DifficultySorcerer   DifficultyLevel = "sorcerer"
	DifficultyArchmage   DifficultyLevel = "archmage"
)
