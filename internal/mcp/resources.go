package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/periodize/internal/models"
)

func (h *handlers) programSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	prog, err := h.activeProgram(ctx)
	if err != nil {
		return nil, err
	}

	summary := map[string]any{
		"program": prog,
	}

	today, err := h.schedule.ResolveToday(ctx, prog, time.Now())
	if err != nil {
		h.log.Warn("program_summary: today resolution failed", "error", err)
	} else {
		summary["today"] = today
	}

	completed, err := h.sessions.CompletedTemplateIDs(ctx, prog.UserID, prog.ID)
	if err != nil {
		h.log.Warn("program_summary: completed templates failed", "error", err)
	} else {
		summary["completed_count"] = len(completed)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) categoryCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(models.SportCategories)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
