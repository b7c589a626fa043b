package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/claude/forge/internal/models"
)

const programColumns = `id, name, source_template_id, current_day, current_week, block_num, is_active, created_at`

func scanProgram(row rowScanner) (models.Program, error) {
	var p models.Program
	err := row.Scan(&p.ID, &p.Name, &p.SourceTemplateID, &p.CurrentDay, &p.CurrentWeek,
		&p.BlockNum, &p.IsActive, &p.CreatedAt)
	return p, err
}

// InsertProgram inserts a program row. ID and CreatedAt are filled in when empty.
func (q *Queries) InsertProgram(ctx context.Context, p *models.Program) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
	if p.BlockNum == 0 {
		p.BlockNum = 1
	}
	_, err := q.exec(ctx,
		`INSERT INTO programs (`+programColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.SourceTemplateID, p.CurrentDay, p.CurrentWeek, p.BlockNum, p.IsActive, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}
	return nil
}

// GetProgram returns the program row without its days.
func (q *Queries) GetProgram(ctx context.Context, id string) (models.Program, error) {
	p, err := scanProgram(q.queryRow(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = ?`, id))
	if err != nil {
		return models.Program{}, notFound(err, "program "+id)
	}
	return p, nil
}

// ActiveProgram returns the most recently created active program.
func (q *Queries) ActiveProgram(ctx context.Context) (models.Program, error) {
	p, err := scanProgram(q.queryRow(ctx,
		`SELECT `+programColumns+` FROM programs WHERE is_active = ? ORDER BY created_at DESC LIMIT 1`, true))
	if err != nil {
		return models.Program{}, notFound(err, "active program")
	}
	return p, nil
}

// ListPrograms returns all programs, newest first.
func (q *Queries) ListPrograms(ctx context.Context) ([]models.Program, error) {
	rows, err := q.query(ctx, `SELECT `+programColumns+` FROM programs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying programs: %w", err)
	}
	defer rows.Close()

	var out []models.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeactivatePrograms clears the active flag on every program.
func (q *Queries) DeactivatePrograms(ctx context.Context) error {
	if _, err := q.exec(ctx, `UPDATE programs SET is_active = ? WHERE is_active = ?`, false, true); err != nil {
		return fmt.Errorf("deactivating programs: %w", err)
	}
	return nil
}

// UpdateProgramState applies the non-nil fields of upd to the program.
func (q *Queries) UpdateProgramState(ctx context.Context, programID string, upd models.ProgramStateUpdate) error {
	var sets []string
	var args []any
	if upd.BlockNum != nil {
		sets = append(sets, "block_num = ?")
		args = append(args, *upd.BlockNum)
	}
	if upd.CurrentWeek != nil {
		sets = append(sets, "current_week = ?")
		args = append(args, *upd.CurrentWeek)
	}
	if upd.CurrentDay != nil {
		sets = append(sets, "current_day = ?")
		args = append(args, *upd.CurrentDay)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, programID)

	res, err := q.exec(ctx,
		`UPDATE programs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("updating program state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating program state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("program %s: %w", programID, ErrNotFound)
	}
	return nil
}

// LoadProgram returns the program with its days, exercises and wave configs,
// each level ordered by index.
func (q *Queries) LoadProgram(ctx context.Context, id string) (*models.Program, error) {
	p, err := q.GetProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	days, err := q.ListDays(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range days {
		exercises, err := q.ListExercises(ctx, days[i].ID)
		if err != nil {
			return nil, err
		}
		days[i].Exercises = exercises
	}
	p.Days = days
	return &p, nil
}
