package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/forge/internal/progression"
	"github.com/claude/forge/internal/storage"
	"github.com/claude/forge/internal/workout"
)

// New creates an MCP server with all tools and resources registered.
func New(db *storage.DB, svc *workout.Service, engine *progression.Engine, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Forge", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Forge strength program tracker. Read the active program, day plans and wave prescriptions; advance weeks and blocks; set and review training maxes; leave workout and exercise notes. Weights are in pounds rounded to 5."),
	)

	h := &handlers{db: db, workout: svc, engine: engine, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetProgramState, Handler: h.getProgramState},
		server.ServerTool{Tool: toolGetDayPlan, Handler: h.getDayPlan},
		server.ServerTool{Tool: toolGetWaveSets, Handler: h.getWaveSets},
		server.ServerTool{Tool: toolAdvanceProgram, Handler: h.advanceProgram},
		server.ServerTool{Tool: toolSetTrainingMax, Handler: h.setTrainingMax},
		server.ServerTool{Tool: toolListTrainingMaxes, Handler: h.listTrainingMaxes},
		server.ServerTool{Tool: toolSaveNote, Handler: h.saveNote},
		server.ServerTool{Tool: toolListExerciseNotes, Handler: h.listExerciseNotes},
	)

	s.AddResources(
		server.ServerResource{Resource: resActiveProgram, Handler: h.activeProgram},
		server.ServerResource{Resource: resTemplates, Handler: h.templateCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	db      *storage.DB
	workout *workout.Service
	engine  *progression.Engine
	log     *slog.Logger
}

// programID returns the program_id argument, or the active program's ID.
func (h *handlers) programID(ctx context.Context, req mcp.CallToolRequest) (string, error) {
	if id := req.GetString("program_id", ""); id != "" {
		return id, nil
	}
	active, err := h.db.ActiveProgram(ctx)
	if err != nil {
		return "", err
	}
	return active.ID, nil
}

// --- Resource definitions ---

var resActiveProgram = mcp.NewResource(
	"forge://program/active",
	"Active Program",
	mcp.WithResourceDescription("The active program with its days, exercises and wave configurations"),
	mcp.WithMIMEType("application/json"),
)

var resTemplates = mcp.NewResource(
	"forge://templates",
	"Program Templates",
	mcp.WithResourceDescription("Built-in program templates that can be forked into a program"),
	mcp.WithMIMEType("application/json"),
)
