package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("portal_list",
	mcp.WithDescription("List all annotation entries and door markers in a document."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
)

var lookupToolDef = mcp.NewTool("portal_lookup",
	mcp.WithDescription("Fetch the annotation entry for one portal identifier."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
	mcp.WithString("portal_id", mcp.Required(), mcp.Description("Portal identifier")),
)

var removeToolDef = mcp.NewTool("portal_remove",
	mcp.WithDescription("Delete a portal completely: its annotation entry and its door marker."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
	mcp.WithString("portal_id", mcp.Required(), mcp.Description("Portal identifier")),
)

var purgeToolDef = mcp.NewTool("portal_purge",
	mcp.WithDescription("Remove annotation entries left withdrawn by abandoned edit sessions."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
)

var checkToolDef = mcp.NewTool("portal_check",
	mcp.WithDescription("Audit the one-door-one-entry invariant for a document without mutating it."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
)

var typeToolDef = mcp.NewTool("portal_type",
	mcp.WithDescription("Type a script into the document through the capture pipeline; trigger sequences open and close portals."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
	mcp.WithString("script", mcp.Required(), mcp.Description("Literal text to type")),
	mcp.WithNumber("line", mcp.Description("Cursor line before typing (default: end of document)")),
	mcp.WithNumber("ch", mcp.Description("Cursor column before typing")),
)

var reviseToolDef = mcp.NewTool("portal_revise",
	mcp.WithDescription("Re-open an existing portal, type a script at the end of its content, and commit."),
	mcp.WithString("file", mcp.Required(), mcp.Description("Path to the primary document")),
	mcp.WithString("portal_id", mcp.Required(), mcp.Description("Portal identifier")),
	mcp.WithString("script", mcp.Required(), mcp.Description("Text to append to the annotation")),
)
