package models

// Template is a read-only program definition that users fork into a Program.
type Template struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Author      string        `yaml:"author" json:"author"`
	Description string        `yaml:"description" json:"description"`
	Days        []TemplateDay `yaml:"days" json:"days"`
}

// TemplateDay is one day of a template.
type TemplateDay struct {
	Name      string             `yaml:"name" json:"name"`
	Subtitle  string             `yaml:"subtitle" json:"subtitle"`
	Focus     string             `yaml:"focus" json:"focus"`
	Exercises []TemplateExercise `yaml:"exercises" json:"exercises"`
}

// TemplateExercise is an exercise definition. A non-nil Wave makes it wave-loaded.
type TemplateExercise struct {
	Key           string        `yaml:"key" json:"key"`
	Name          string        `yaml:"name" json:"name"`
	Category      Category      `yaml:"category" json:"category"`
	Sets          int           `yaml:"sets" json:"sets"`
	Reps          int           `yaml:"reps" json:"reps"`
	DefaultWeight float64       `yaml:"default_weight" json:"default_weight"`
	Note          string        `yaml:"note" json:"note"`
	Wave          *TemplateWave `yaml:"wave,omitempty" json:"wave,omitempty"`
}

// TemplateWave is the wave configuration carried by a template exercise.
type TemplateWave struct {
	BaseMax float64        `yaml:"base_max" json:"base_max"`
	Warmup  []TemplateStep `yaml:"warmup" json:"warmup"`
	Weeks   []TemplateWeek `yaml:"weeks" json:"weeks"`
}

// TemplateWeek is one week of a template wave. Its index is its position.
type TemplateWeek struct {
	Label string         `yaml:"label" json:"label"`
	Sets  []TemplateStep `yaml:"sets" json:"sets"`
}

// TemplateStep is a reps @ percentage pair.
type TemplateStep struct {
	Reps    int     `yaml:"reps" json:"reps"`
	Pct     float64 `yaml:"pct" json:"pct"`
	Backoff bool    `yaml:"backoff,omitempty" json:"backoff,omitempty"`
}
