package grading

import (
	"fmt"
	"math"
	"sort"

	"github.com/YatinKare/DesignDual/internal/model"
)

// Scoring policy constants. These mirror the grading rubric and are
// configuration, not derived values.
const (
	hireThreshold   = 7.5
	noHireThreshold = 5.0

	rubricPassThreshold    = 8.0
	rubricPartialThreshold = 5.0
)

// radarWeights are the fixed per-skill phase weight tables. Each skill is a
// weighted combination of the 4 phase scores.
var radarWeights = map[model.SkillName]map[model.PhaseName]float64{
	model.SkillClarity: {
		model.PhaseClarify:  0.5,
		model.PhaseEstimate: 0.2,
		model.PhaseDesign:   0.2,
		model.PhaseExplain:  0.1,
	},
	model.SkillStructure: {
		model.PhaseClarify:  0.1,
		model.PhaseEstimate: 0.1,
		model.PhaseDesign:   0.6,
		model.PhaseExplain:  0.2,
	},
	model.SkillPower: {
		model.PhaseEstimate: 0.4,
		model.PhaseDesign:   0.4,
		model.PhaseExplain:  0.2,
	},
	model.SkillWisdom: {
		model.PhaseClarify: 0.1,
		model.PhaseDesign:  0.3,
		model.PhaseExplain: 0.6,
	},
}

var skillLabels = map[model.SkillName]string{
	model.SkillClarity:   "Clarity",
	model.SkillStructure: "Structure",
	model.SkillPower:     "Power",
	model.SkillWisdom:    "Wisdom",
}

// RubricRadar is the output of the first synthesis step.
type RubricRadar struct {
	Rubric       []model.RubricItem
	Radar        []model.RadarDimension
	OverallScore float64
	Verdict      model.Verdict
	Summary      string
}

// OverallScore is the simple mean of the 4 phase scores.
func OverallScore(scores map[model.PhaseName]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, phase := range model.PhaseOrder {
		sum += scores[phase]
	}
	return sum / float64(len(model.PhaseOrder))
}

// VerdictFor maps an overall score onto a hiring verdict.
func VerdictFor(overall float64) model.Verdict {
	switch {
	case overall >= hireThreshold:
		return model.VerdictHire
	case overall >= noHireThreshold:
		return model.VerdictMaybe
	default:
		return model.VerdictNoHire
	}
}

// RubricStatusFor maps a rubric score onto its pass/partial/fail status.
func RubricStatusFor(score float64) model.RubricStatus {
	switch {
	case score >= rubricPassThreshold:
		return model.RubricPass
	case score >= rubricPartialThreshold:
		return model.RubricPartial
	default:
		return model.RubricFail
	}
}

// RubricScores computes the weighted rubric items declared by the problem.
func RubricScores(defs []model.RubricDefinition, scores map[model.PhaseName]float64) []model.RubricItem {
	items := make([]model.RubricItem, 0, len(defs))
	for _, def := range defs {
		var weighted float64
		phases := make([]model.PhaseName, 0, len(def.PhaseWeights))
		for _, phase := range model.PhaseOrder {
			weight, ok := def.PhaseWeights[phase]
			if !ok {
				continue
			}
			weighted += scores[phase] * weight
			phases = append(phases, phase)
		}
		weighted = round2(weighted)
		items = append(items, model.RubricItem{
			Label:        def.Label,
			Description:  def.Description,
			Score:        weighted,
			Status:       RubricStatusFor(weighted),
			ComputedFrom: phases,
		})
	}
	return items
}

// RadarDimensions computes the 4 fixed skill dimensions in contract order.
func RadarDimensions(scores map[model.PhaseName]float64) []model.RadarDimension {
	dims := make([]model.RadarDimension, 0, len(model.SkillOrder))
	for _, skill := range model.SkillOrder {
		var weighted float64
		for phase, weight := range radarWeights[skill] {
			weighted += scores[phase] * weight
		}
		dims = append(dims, model.RadarDimension{
			Skill: skill,
			Score: round2(weighted),
			Label: skillLabels[skill],
		})
	}
	return dims
}

// ComputeRubricRadar runs the first synthesis step: rubric items, radar
// dimensions, overall score, verdict, and a short summary.
func ComputeRubricRadar(problem *model.Problem, scores map[model.PhaseName]float64) *RubricRadar {
	rr := &RubricRadar{
		Rubric:       RubricScores(problem.RubricDefinition, scores),
		Radar:        RadarDimensions(scores),
		OverallScore: OverallScore(scores),
	}
	rr.Verdict = VerdictFor(rr.OverallScore)
	rr.Summary = buildSummary(rr)
	return rr
}

func buildSummary(rr *RubricRadar) string {
	best, worst := rr.Radar[0], rr.Radar[0]
	for _, dim := range rr.Radar[1:] {
		if dim.Score > best.Score {
			best = dim
		}
		if dim.Score < worst.Score {
			worst = dim
		}
	}

	var verdictText string
	switch rr.Verdict {
	case model.VerdictHire:
		verdictText = "the performance meets the hiring bar"
	case model.VerdictMaybe:
		verdictText = "the performance is promising but leaves open questions"
	default:
		verdictText = "the performance falls short of the hiring bar"
	}

	return fmt.Sprintf(
		"The candidate scored %.1f/10 overall, strongest in %s (%.1f) and weakest in %s (%.1f). Taken together, %s.",
		rr.OverallScore, best.Label, best.Score, worst.Label, worst.Score, verdictText,
	)
}

// LowestRubricItems returns rubric items sorted by ascending score, ties
// broken by declaration order to keep the selection deterministic.
func LowestRubricItems(items []model.RubricItem) []model.RubricItem {
	sorted := make([]model.RubricItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })
	return sorted
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
