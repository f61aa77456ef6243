package model

// RubricDefinition declares one rubric criterion and the phase weights its
// score is computed from. Weights for a single item sum to 1.0.
type RubricDefinition struct {
	Label        string                `json:"label"`
	Description  string                `json:"description"`
	PhaseWeights map[PhaseName]float64 `json:"phase_weights"`
}

// ProblemSummary is the lightweight view used by the problem list endpoint.
type ProblemSummary struct {
	ID                   string          `json:"id"`
	Slug                 string          `json:"slug"`
	Title                string          `json:"title"`
	Difficulty           DifficultyLevel `json:"difficulty"`
	FocusTags            []string        `json:"focusTags"`
	EstimatedTimeMinutes int             `json:"estimatedTimeMinutes"`
}

// Problem is the full problem detail with the rubric definition the grading
// pipeline computes weighted scores from.
type Problem struct {
	ProblemSummary
	Prompt                string             `json:"prompt"`
	Constraints           []string           `json:"constraints"`
	PhaseTimeMinutes      map[PhaseName]int  `json:"phaseTimeMinutes"`
	RubricDefinition      []RubricDefinition `json:"rubricDefinition"`
	SampleSolutionOutline string             `json:"sampleSolutionOutline,omitempty"`
}
