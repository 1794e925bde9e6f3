package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/ironcoach/internal/catalog"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) activeSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	memberID, ok := MemberIDFromContext(ctx)
	if !ok {
		return nil, errNoMember
	}

	eng, err := h.coord.ActiveEngine(memberID)
	if err != nil {
		return jsonContents(req.Params.URI, map[string]any{"active": false})
	}

	snap := eng.Snapshot()
	return jsonContents(req.Params.URI, map[string]any{
		"active":  true,
		"session": snap,
	})
}

func (h *handlers) exerciseCatalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, map[string]any{
		"exercises": catalog.Exercises(),
		"protocols": catalog.Protocols(),
	})
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
