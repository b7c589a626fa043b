package models

import "time"

// Category groups exercises in the UI. It carries no training semantics.
type Category string

const (
	CategoryTech      Category = "tech"
	CategoryAbsolute  Category = "absolute"
	CategorySuperset  Category = "ss"
	CategoryAccessory Category = "acc"
)

// Valid reports whether c is one of the known category tags.
func (c Category) Valid() bool {
	switch c {
	case CategoryTech, CategoryAbsolute, CategorySuperset, CategoryAccessory:
		return true
	}
	return false
}

// Program is a user's forked training program together with its position in
// the block/week/day cycle.
type Program struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	SourceTemplateID string    `json:"source_template_id,omitempty"`
	CurrentDay       int       `json:"current_day"`
	CurrentWeek      int       `json:"current_week"`
	BlockNum         int       `json:"block_num"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	Days             []Day     `json:"days,omitempty"`
}

// WaveExercises returns every wave-loaded exercise across all days, in day order.
func (p *Program) WaveExercises() []Exercise {
	var out []Exercise
	for _, d := range p.Days {
		for _, ex := range d.Exercises {
			if ex.IsWave {
				out = append(out, ex)
			}
		}
	}
	return out
}

// Day is one training day of a program.
type Day struct {
	ID        string     `json:"id"`
	ProgramID string     `json:"program_id"`
	DayIndex  int        `json:"day_index"`
	Name      string     `json:"name"`
	Subtitle  string     `json:"subtitle"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises,omitempty"`
}

// Exercise is a named movement on a day. Wave-loaded exercises own a WaveConfig.
type Exercise struct {
	ID            string      `json:"id"`
	DayID         string      `json:"day_id"`
	ExerciseIndex int         `json:"exercise_index"`
	Key           string      `json:"key"`
	Name          string      `json:"name"`
	Category      Category    `json:"category"`
	Sets          int         `json:"sets"`
	Reps          int         `json:"reps"`
	DefaultWeight float64     `json:"default_weight"`
	Note          string      `json:"note"`
	IsWave        bool        `json:"is_wave"`
	Wave          *WaveConfig `json:"wave,omitempty"`
}

// WaveConfig is the percentage template of a wave-loaded exercise.
type WaveConfig struct {
	ID         string       `json:"id"`
	ExerciseID string       `json:"exercise_id"`
	BaseMax    float64      `json:"base_max"`
	Warmups    []WarmupStep `json:"warmups"`
	Weeks      []WeekPlan   `json:"weeks"`
}

// Week returns the plan with the given week index, or nil.
func (c *WaveConfig) Week(weekIndex int) *WeekPlan {
	if c == nil {
		return nil
	}
	for i := range c.Weeks {
		if c.Weeks[i].WeekIndex == weekIndex {
			return &c.Weeks[i]
		}
	}
	return nil
}

// WarmupStep is a warmup set expressed as a fraction of training max.
type WarmupStep struct {
	ID         string  `json:"id,omitempty"`
	SetIndex   int     `json:"set_index"`
	Reps       int     `json:"reps"`
	Percentage float64 `json:"percentage"`
}

// WeekPlan holds the working sets for one week of the wave.
type WeekPlan struct {
	ID        string       `json:"id,omitempty"`
	WeekIndex int          `json:"week_index"`
	Label     string       `json:"label"`
	Sets      []WorkingSet `json:"sets"`
}

// WorkingSet is a working or backoff set expressed as a fraction of training max.
type WorkingSet struct {
	ID         string  `json:"id,omitempty"`
	SetIndex   int     `json:"set_index"`
	Reps       int     `json:"reps"`
	Percentage float64 `json:"percentage"`
	IsBackoff  bool    `json:"is_backoff"`
}
