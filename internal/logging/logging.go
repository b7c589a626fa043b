// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/claude/forge/internal/config"
)

// New returns a logger for cfg. Without a log file everything goes to
// console. With a file, output rotates through lumberjack and is copied to
// console only when cfg.Stdout is set. The returned closer releases the file.
func New(cfg config.LogConfig, console io.Writer) (*slog.Logger, io.Closer) {
	var out io.Writer = console
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:  cfg.File,
			MaxSize:   50, // megabytes
			LocalTime: false,
			Compress:  true,
		}
		closer = file
		out = file
		if cfg.Stdout {
			out = io.MultiWriter(console, file)
		}
	}

	opts := &slog.HandlerOptions{Level: Level(cfg.Level)}
	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h), closer
}

// Level maps a config level name to a slog level. Unknown names mean info.
func Level(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
