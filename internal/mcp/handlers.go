package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for portal_list.
type ListRequest struct {
	File string `json:"file"`
}

// LookupRequest represents the arguments for portal_lookup.
type LookupRequest struct {
	File     string `json:"file"`
	PortalID string `json:"portal_id"`
}

// RemoveRequest represents the arguments for portal_remove.
type RemoveRequest struct {
	File     string `json:"file"`
	PortalID string `json:"portal_id"`
}

// PurgeRequest represents the arguments for portal_purge.
type PurgeRequest struct {
	File string `json:"file"`
}

// CheckRequest represents the arguments for portal_check.
type CheckRequest struct {
	File string `json:"file"`
}

// TypeRequest represents the arguments for portal_type.
type TypeRequest struct {
	File   string `json:"file"`
	Script string `json:"script"`
	Line   *int   `json:"line,omitempty"`
	Ch     *int   `json:"ch,omitempty"`
}

// ReviseRequest represents the arguments for portal_revise.
type ReviseRequest struct {
	File     string `json:"file"`
	PortalID string `json:"portal_id"`
	Script   string `json:"script"`
}

// Handler implementations

// HandleList handles the portal_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(h.db, h.cfg, ops.ListInput{Path: input.File})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLookup handles the portal_lookup tool call.
func (h *Handlers) HandleLookup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LookupRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Lookup(h.db, h.cfg, ops.LookupInput{
		Path:     input.File,
		PortalID: input.PortalID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRemove handles the portal_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Remove(h.db, h.cfg, ops.RemoveInput{
		Path:     input.File,
		PortalID: input.PortalID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandlePurge handles the portal_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Purge(h.db, h.cfg, ops.PurgeInput{Path: input.File})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCheck handles the portal_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CheckRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Check(h.db, h.cfg, ops.CheckInput{Path: input.File})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleType handles the portal_type tool call.
func (h *Handlers) HandleType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TypeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	replayInput := ops.ReplayInput{
		Path:   input.File,
		Script: input.Script,
	}
	if input.Line != nil {
		pos := editor.Position{Line: *input.Line}
		if input.Ch != nil {
			pos.Ch = *input.Ch
		}
		replayInput.At = &pos
	}

	result, err := ops.Replay(h.db, h.cfg, replayInput)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleRevise handles the portal_revise tool call.
func (h *Handlers) HandleRevise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReviseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Revise(h.db, h.cfg, ops.ReviseInput{
		Path:     input.File,
		PortalID: input.PortalID,
		Script:   input.Script,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pErr, ok := err.(*errors.PortalError); ok {
		errorObj := map[string]any{
			"code":    pErr.Code,
			"message": pErr.Message,
			"status":  pErr.Status,
		}
		if pErr.Code != errors.ErrInternal && pErr.Details != nil {
			errorObj["details"] = pErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
