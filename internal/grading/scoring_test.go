package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YatinKare/DesignDual/internal/model"
)

func testProblem() *model.Problem {
	return &model.Problem{
		ProblemSummary: model.ProblemSummary{
			ID:         "prob-url-shortener",
			Slug:       "url-shortener",
			Title:      "Design a URL Shortener",
			Difficulty: model.DifficultyApprentice,
		},
		RubricDefinition: []model.RubricDefinition{
			{
				Label:       "Requirements Coverage",
				Description: "Functional and non-functional requirements identified.",
				PhaseWeights: map[model.PhaseName]float64{
					model.PhaseClarify: 0.5,
					model.PhaseDesign:  0.3,
					model.PhaseExplain: 0.2,
				},
			},
			{
				Label:       "Capacity Planning",
				Description: "Traffic and storage estimates are sound.",
				PhaseWeights: map[model.PhaseName]float64{
					model.PhaseEstimate: 0.7,
					model.PhaseDesign:   0.3,
				},
			},
			{
				Label:       "Architecture Depth",
				Description: "Design covers the core components and their interactions.",
				PhaseWeights: map[model.PhaseName]float64{
					model.PhaseDesign:  0.6,
					model.PhaseExplain: 0.4,
				},
			},
		},
	}
}

func testPhaseScores() map[model.PhaseName]float64 {
	return map[model.PhaseName]float64{
		model.PhaseClarify:  8.0,
		model.PhaseEstimate: 7.5,
		model.PhaseDesign:   8.5,
		model.PhaseExplain:  7.0,
	}
}

func TestOverallScore(t *testing.T) {
	assert.InDelta(t, 7.75, OverallScore(testPhaseScores()), 1e-9)
	assert.Equal(t, 0.0, OverallScore(nil))
}

func TestVerdictFor_Boundaries(t *testing.T) {
	tests := []struct {
		overall float64
		want    model.Verdict
	}{
		{10.0, model.VerdictHire},
		{7.5, model.VerdictHire},
		{7.49, model.VerdictMaybe},
		{5.0, model.VerdictMaybe},
		{4.99, model.VerdictNoHire},
		{0.0, model.VerdictNoHire},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VerdictFor(tt.overall), "overall=%v", tt.overall)
	}
}

func TestRubricStatusFor_Boundaries(t *testing.T) {
	assert.Equal(t, model.RubricPass, RubricStatusFor(8.0))
	assert.Equal(t, model.RubricPartial, RubricStatusFor(7.99))
	assert.Equal(t, model.RubricPartial, RubricStatusFor(5.0))
	assert.Equal(t, model.RubricFail, RubricStatusFor(4.99))
}

func TestRubricScores_WeightedAndOrdered(t *testing.T) {
	items := RubricScores(testProblem().RubricDefinition, testPhaseScores())
	require.Len(t, items, 3)

	// 8.0*0.5 + 8.5*0.3 + 7.0*0.2 = 7.95
	assert.Equal(t, "Requirements Coverage", items[0].Label)
	assert.InDelta(t, 7.95, items[0].Score, 1e-9)
	assert.Equal(t, model.RubricPartial, items[0].Status)
	assert.Equal(t, []model.PhaseName{model.PhaseClarify, model.PhaseDesign, model.PhaseExplain}, items[0].ComputedFrom)

	// 7.5*0.7 + 8.5*0.3 = 7.8
	assert.InDelta(t, 7.8, items[1].Score, 1e-9)

	// 8.5*0.6 + 7.0*0.4 = 7.9
	assert.InDelta(t, 7.9, items[2].Score, 1e-9)
}

func TestRadarDimensions_FixedOrderAndWeights(t *testing.T) {
	dims := RadarDimensions(testPhaseScores())
	require.Len(t, dims, 4)

	for i, skill := range model.SkillOrder {
		assert.Equal(t, skill, dims[i].Skill)
		assert.GreaterOrEqual(t, dims[i].Score, 0.0)
		assert.LessOrEqual(t, dims[i].Score, 10.0)
		assert.NotEmpty(t, dims[i].Label)
	}

	// clarity = 8.0*0.5 + 7.5*0.2 + 8.5*0.2 + 7.0*0.1 = 7.9
	assert.InDelta(t, 7.9, dims[0].Score, 1e-9)
	// wisdom = 8.0*0.1 + 8.5*0.3 + 7.0*0.6 = 7.55
	assert.InDelta(t, 7.55, dims[3].Score, 1e-9)
}

func TestComputeRubricRadar(t *testing.T) {
	rr := ComputeRubricRadar(testProblem(), testPhaseScores())

	assert.InDelta(t, 7.75, rr.OverallScore, 1e-9)
	assert.Equal(t, model.VerdictHire, rr.Verdict)
	assert.Len(t, rr.Rubric, 3)
	assert.Len(t, rr.Radar, 4)
	assert.Contains(t, rr.Summary, "7.8")
	assert.Contains(t, rr.Summary, "meets the hiring bar")
}

func TestLowestRubricItems_StableAscending(t *testing.T) {
	items := []model.RubricItem{
		{Label: "a", Score: 7.0},
		{Label: "b", Score: 4.0},
		{Label: "c", Score: 7.0},
		{Label: "d", Score: 9.0},
	}
	sorted := LowestRubricItems(items)

	assert.Equal(t, "b", sorted[0].Label)
	assert.Equal(t, "a", sorted[1].Label)
	assert.Equal(t, "c", sorted[2].Label)
	assert.Equal(t, "d", sorted[3].Label)
	// input untouched
	assert.Equal(t, "a", items[0].Label)
}
