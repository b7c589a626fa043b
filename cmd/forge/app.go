package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/claude/forge/internal/config"
	"github.com/claude/forge/internal/logging"
	"github.com/claude/forge/internal/metrics"
	"github.com/claude/forge/internal/models"
	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/templates"
	"github.com/claude/forge/internal/workout"
)

// app wires the components every command needs.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	logClose io.Closer
	db       *storage.DB
	workout  *workout.Service
	engine   *progression.Engine
	metrics  *metrics.Manager
	registry *prometheus.Registry
}

// openApp loads config, migrates and opens the database. With seed set, a
// database without an active program gets the configured template forked.
func openApp(ctx context.Context, configPath string, console io.Writer, seed bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, logClose := logging.New(cfg.Log, console)

	dialect := storage.Dialect(cfg.Database.Driver)
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dialect, dsn); err != nil {
		logClose.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := storage.Open(ctx, dialect, dsn, log)
	if err != nil {
		logClose.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	registry := metrics.NewRegistry()
	m := metrics.NewManager(registry)
	a := &app{
		cfg:      cfg,
		log:      log,
		logClose: logClose,
		db:       db,
		workout:  workout.NewService(db, log),
		engine:   progression.NewEngine(progression.FromDB(db), log, m),
		metrics:  m,
		registry: registry,
	}

	if seed {
		if err := a.ensureProgram(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) ensureProgram(ctx context.Context) error {
	_, err := a.db.ActiveProgram(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	tpl, err := templates.Get(a.cfg.Program.Template)
	if err != nil {
		return err
	}
	prog, err := a.db.ForkTemplate(ctx, tpl)
	if err != nil {
		return err
	}
	a.log.Info("program created", "program", prog.ID, "template", tpl.ID)
	return nil
}

// activeProgram returns the active program with its days loaded.
func (a *app) activeProgram(ctx context.Context) (*models.Program, error) {
	active, err := a.db.ActiveProgram(ctx)
	if err != nil {
		return nil, err
	}
	return a.db.LoadProgram(ctx, active.ID)
}

func (a *app) Close() error {
	return multierr.Combine(a.db.Close(), a.logClose.Close())
}

// findExercise looks an exercise up by key, falling back to its ID.
func findExercise(p *models.Program, ref string) (models.Exercise, error) {
	for _, d := range p.Days {
		for _, ex := range d.Exercises {
			if ex.Key == ref || ex.ID == ref {
				return ex, nil
			}
		}
	}
	return models.Exercise{}, fmt.Errorf("exercise %q: %w", ref, storage.ErrNotFound)
}
