// Package templates provides the built-in program templates and validates
// template files.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
)

// Default is the template forked when no program exists yet.
const Default = "wave-periodization"

// WeeksPerWave is the number of weeks every wave exercise must define.
const WeeksPerWave = progression.DeloadWeek + 1

// ErrUnknownTemplate is returned by Get for ids with no built-in template.
var ErrUnknownTemplate = errors.New("unknown template")

//go:embed builtin/*.yaml
var builtinFS embed.FS

var builtin map[string]*models.Template

func init() {
	var err error
	builtin, err = loadFS(builtinFS, "builtin")
	if err != nil {
		panic(fmt.Sprintf("loading built-in templates: %v", err))
	}
}

func loadFS(fsys fs.FS, dir string) (map[string]*models.Template, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Template, len(entries))
	for _, e := range entries {
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		tpl, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if _, dup := out[tpl.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate template id %q", e.Name(), tpl.ID)
		}
		out[tpl.ID] = tpl
	}
	return out, nil
}

// Parse decodes and validates a YAML template.
func Parse(data []byte) (*models.Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var tpl models.Template
	if err := dec.Decode(&tpl); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	if err := Validate(&tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// LoadFile reads and validates a template from disk.
func LoadFile(p string) (*models.Template, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", p, err)
	}
	return Parse(data)
}

// Get returns a copy of a built-in template.
func Get(id string) (*models.Template, error) {
	tpl, ok := builtin[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return clone(tpl), nil
}

// List returns the built-in templates sorted by id.
func List() []*models.Template {
	out := make([]*models.Template, 0, len(builtin))
	for _, tpl := range builtin {
		out = append(out, clone(tpl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks that a template can be forked: ids and names are set,
// categories are known, exercise keys are unique, and every wave has exactly
// WeeksPerWave weeks with positive percentages.
func Validate(tpl *models.Template) error {
	if tpl.ID == "" {
		return errors.New("template id is required")
	}
	if tpl.Name == "" {
		return fmt.Errorf("template %s: name is required", tpl.ID)
	}
	if len(tpl.Days) == 0 {
		return fmt.Errorf("template %s: at least one day is required", tpl.ID)
	}

	keys := make(map[string]bool)
	for di, d := range tpl.Days {
		for ei, ex := range d.Exercises {
			where := fmt.Sprintf("template %s day %d exercise %d", tpl.ID, di+1, ei+1)
			if ex.Key == "" || ex.Name == "" {
				return fmt.Errorf("%s: key and name are required", where)
			}
			if keys[ex.Key] {
				return fmt.Errorf("%s: duplicate key %q", where, ex.Key)
			}
			keys[ex.Key] = true
			if !ex.Category.Valid() {
				return fmt.Errorf("%s: unknown category %q", where, ex.Category)
			}
			if ex.Wave != nil {
				if err := validateWave(ex.Wave); err != nil {
					return fmt.Errorf("%s (%s): %w", where, ex.Key, err)
				}
			}
		}
	}
	return nil
}

func validateWave(w *models.TemplateWave) error {
	if w.BaseMax <= 0 {
		return fmt.Errorf("base_max must be positive, got %v", w.BaseMax)
	}
	if len(w.Weeks) != WeeksPerWave {
		return fmt.Errorf("wave needs %d weeks, got %d", WeeksPerWave, len(w.Weeks))
	}
	for i, s := range w.Warmup {
		if err := validateStep(s); err != nil {
			return fmt.Errorf("warmup %d: %w", i+1, err)
		}
	}
	for wi, wk := range w.Weeks {
		for si, s := range wk.Sets {
			if err := validateStep(s); err != nil {
				return fmt.Errorf("week %d set %d: %w", wi+1, si+1, err)
			}
		}
	}
	return nil
}

func validateStep(s models.TemplateStep) error {
	if s.Pct <= 0 {
		return fmt.Errorf("pct must be positive, got %v", s.Pct)
	}
	if s.Reps <= 0 {
		return fmt.Errorf("reps must be positive, got %d", s.Reps)
	}
	return nil
}

func clone(tpl *models.Template) *models.Template {
	c := *tpl
	c.Days = make([]models.TemplateDay, len(tpl.Days))
	for i, d := range tpl.Days {
		c.Days[i] = d
		c.Days[i].Exercises = make([]models.TemplateExercise, len(d.Exercises))
		for j, ex := range d.Exercises {
			c.Days[i].Exercises[j] = ex
			if ex.Wave != nil {
				w := *ex.Wave
				w.Warmup = append([]models.TemplateStep(nil), ex.Wave.Warmup...)
				w.Weeks = make([]models.TemplateWeek, len(ex.Wave.Weeks))
				for k, wk := range ex.Wave.Weeks {
					w.Weeks[k] = models.TemplateWeek{Label: wk.Label, Sets: append([]models.TemplateStep(nil), wk.Sets...)}
				}
				c.Days[i].Exercises[j].Wave = &w
			}
		}
	}
	return &c
}
