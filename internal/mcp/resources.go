package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/forge/internal/templates"
)

func (h *handlers) activeProgram(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	active, err := h.db.ActiveProgram(ctx)
	if err != nil {
		return nil, err
	}
	prog, err := h.db.LoadProgram(ctx, active.ID)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, prog)
}

func (h *handlers) templateCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	type entry struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Author      string `json:"author"`
		Description string `json:"description"`
		Days        int    `json:"days"`
	}
	var catalog []entry
	for _, tpl := range templates.List() {
		catalog = append(catalog, entry{
			ID:          tpl.ID,
			Name:        tpl.Name,
			Author:      tpl.Author,
			Description: tpl.Description,
			Days:        len(tpl.Days),
		})
	}
	return jsonContents(req.Params.URI, catalog)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
