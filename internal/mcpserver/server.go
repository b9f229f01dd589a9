// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the profile registry to LLM front ends via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mannaz/internal/manager"
)

// Server wraps the MCP server with profile registry tools.
type Server struct {
	mcp *server.MCPServer
	mgr *manager.Manager
}

// New creates a new MCP server with all registry tools registered.
func New(mgr *manager.Manager) *Server {
	s := &Server{mgr: mgr}

	s.mcp = server.NewMCPServer(
		"Mannaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_profiles",
		mcp.WithDescription("List summaries of all loaded profiles."),
	), s.listProfiles)

	s.mcp.AddTool(mcp.NewTool("get_profile",
		mcp.WithDescription("Get the summary for a single profile."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile id (file base name without extension)")),
	), s.getProfile)

	s.mcp.AddTool(mcp.NewTool("get_profile_content",
		mcp.WithDescription("Read the full Markdown source of a profile."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile id")),
	), s.getProfileContent)

	s.mcp.AddTool(mcp.NewTool("get_profile_checklist",
		mcp.WithDescription("Get a profile's checklist items as a JSON array. "+
			"An empty array means the profile exists but has no checklist."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile id")),
	), s.getProfileChecklist)

	s.mcp.AddTool(mcp.NewTool("reload_profiles",
		mcp.WithDescription("Re-scan the profile directory, replace the loaded set, "+
			"and rewrite the persisted index."),
	), s.reloadProfiles)

	s.mcp.AddTool(mcp.NewTool("get_profile_format",
		mcp.WithDescription("Returns the canonical profile Markdown format. "+
			"Consult it before authoring new profile documents."),
	), s.getProfileFormat)

	// Resource: profile format contract.
	s.mcp.AddResource(
		mcp.NewResource("profiles://format", "Profile Format",
			mcp.WithResourceDescription("Canonical Markdown profile format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProfileFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on the given streams and blocks until
// the context is cancelled or the input stream closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.mgr.List(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, ok := s.mgr.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("profile not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getProfileContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, ok := s.mgr.Content(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("profile not found: %s", id)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) getProfileChecklist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, ok := s.mgr.Checklist(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("profile not found: %s", id)), nil
	}
	out, _ := json.Marshal(items)
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) reloadProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summaries, err := s.mgr.Reload()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("reloaded %d profiles", len(summaries))), nil
}

func (s *Server) getProfileFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ProfileFormat), nil
}

func (s *Server) readProfileFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "profiles://format",
			MIMEType: "text/markdown",
			Text:     ProfileFormat,
		},
	}, nil
}
