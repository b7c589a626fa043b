// Package wave expands a wave configuration into the concrete sets prescribed
// for one week at a given training max.
package wave

import (
	"fmt"
	"sort"

	"github.com/claude/forge/internal/calc"
	"github.com/claude/forge/internal/models"
)

// BackoffLabel is shown for backoff sets regardless of their position.
const BackoffLabel = "BO"

// PrescribedSet is one fully resolved set. Index is the slot identifier used by
// set logs and runs across warmup and working sets.
type PrescribedSet struct {
	Index     int     `json:"index"`
	Label     string  `json:"label"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	IsWarmup  bool    `json:"is_warmup"`
	IsBackoff bool    `json:"is_backoff"`
}

// Result is the prescription for one exercise-week.
type Result struct {
	Label   string          `json:"label"`
	Warmup  []PrescribedSet `json:"warmup"`
	Working []PrescribedSet `json:"working"`
	All     []PrescribedSet `json:"all"`
}

// Sets computes the prescription for weekIndex. An unknown week or a nil
// config yields an empty Result. The config is not modified.
func Sets(cfg *models.WaveConfig, weekIndex int, trainingMax float64) Result {
	week := cfg.Week(weekIndex)
	if week == nil {
		return Result{Warmup: []PrescribedSet{}, Working: []PrescribedSet{}, All: []PrescribedSet{}}
	}

	warmups := make([]models.WarmupStep, len(cfg.Warmups))
	copy(warmups, cfg.Warmups)
	sort.SliceStable(warmups, func(i, j int) bool { return warmups[i].SetIndex < warmups[j].SetIndex })

	working := make([]models.WorkingSet, len(week.Sets))
	copy(working, week.Sets)
	sort.SliceStable(working, func(i, j int) bool { return working[i].SetIndex < working[j].SetIndex })

	res := Result{
		Label:   week.Label,
		Warmup:  make([]PrescribedSet, 0, len(warmups)),
		Working: make([]PrescribedSet, 0, len(working)),
		All:     make([]PrescribedSet, 0, len(warmups)+len(working)),
	}

	idx := 0
	for i, w := range warmups {
		set := PrescribedSet{
			Index:    idx,
			Label:    fmt.Sprintf("W%d", i+1),
			Weight:   calc.RoundToNearest5(trainingMax * w.Percentage),
			Reps:     w.Reps,
			IsWarmup: true,
		}
		res.Warmup = append(res.Warmup, set)
		res.All = append(res.All, set)
		idx++
	}

	for i, s := range working {
		set := PrescribedSet{
			Index:     idx,
			Weight:    calc.RoundToNearest5(trainingMax * s.Percentage),
			Reps:      s.Reps,
			IsBackoff: s.IsBackoff,
		}
		if s.IsBackoff {
			set.Label = BackoffLabel
		} else {
			set.Label = fmt.Sprintf("S%d", i+1)
		}
		res.Working = append(res.Working, set)
		res.All = append(res.All, set)
		idx++
	}
	return res
}
