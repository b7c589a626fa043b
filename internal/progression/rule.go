package progression

import (
	"github.com/claude/forge/internal/calc"
	"github.com/claude/forge/internal/models"
)

// Cycle positions. The scan week is fixed regardless of how many working
// weeks a wave config defines.
const (
	ScanWeek   = 2
	DeloadWeek = 3
)

// Progression limits.
const (
	MaxIncreaseFactor = 1.2
	FallbackIncrement = 5
)

// Rule names the branch of the progression rule that produced a new max.
type Rule string

const (
	RuleE1RM     Rule = "e1rm"
	RuleCapped   Rule = "capped"
	RuleFallback Rule = "fallback"
	RuleManual   Rule = "manual"
)

// Decision is the outcome of the progression rule for one exercise.
type Decision struct {
	Current  float64 `json:"current"`
	BestE1RM float64 `json:"best_e1rm"`
	Value    float64 `json:"value"`
	Rule     Rule    `json:"rule"`
}

// NextTrainingMax applies the block progression rule. The current max is the
// floor of the best estimate, so a poor week never lowers the max. An
// improvement is capped at MaxIncreaseFactor; no improvement adds
// FallbackIncrement.
func NextTrainingMax(current float64, sets []models.LoggedSet) Decision {
	best := current
	for _, s := range sets {
		if e := calc.EstimatedOneRepMax(s.Weight, float64(s.Reps)); e > best {
			best = e
		}
	}

	d := Decision{Current: current, BestE1RM: best}
	if best > current {
		ceiling := current * MaxIncreaseFactor
		if best > ceiling {
			d.Value = calc.RoundToNearest5(ceiling)
			d.Rule = RuleCapped
		} else {
			d.Value = calc.RoundToNearest5(best)
			d.Rule = RuleE1RM
		}
		return d
	}
	d.Value = calc.RoundToNearest5(current + FallbackIncrement)
	d.Rule = RuleFallback
	return d
}
