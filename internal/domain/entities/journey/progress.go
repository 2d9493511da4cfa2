package journey

import "math"

const (
	stepWeight    = 0.6
	substepWeight = 0.4
)

// Progress summarizes completion across a journey.
type Progress struct {
	CompletedSteps    int `json:"completedSteps"`
	TotalSteps        int `json:"totalSteps"`
	CompletedSubsteps int `json:"completedSubsteps"`
	TotalSubsteps     int `json:"totalSubsteps"`
	Percentage        int `json:"percentage"`
}

// CalculateProgress weighs step completion at 60% and substep completion at 40%.
// An empty step list contributes nothing, so the percentage stays within [0,100].
func CalculateProgress(steps []Step) Progress {
	var p Progress
	for _, step := range steps {
		p.TotalSteps++
		if step.IsCompleted {
			p.CompletedSteps++
		}
		for _, sub := range step.SubSteps {
			p.TotalSubsteps++
			if sub.IsCompleted {
				p.CompletedSubsteps++
			}
		}
	}

	var stepRatio float64
	if p.TotalSteps > 0 {
		stepRatio = float64(p.CompletedSteps) / float64(p.TotalSteps)
	}
	substepRatio := float64(p.CompletedSubsteps) / float64(max(p.TotalSubsteps, 1))

	p.Percentage = int(math.Round((stepRatio*stepWeight + substepRatio*substepWeight) * 100))
	return p
}
