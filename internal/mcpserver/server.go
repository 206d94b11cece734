// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the hours search to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/hoursheet/internal/apperr"
	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/session"
)

// ColumnsURI is the resource URI of the column contract.
const ColumnsURI = "hoursheet://columns"

// Server wraps the MCP server with the hours tools.
type Server struct {
	mcp  *server.MCPServer
	sess *session.Session
}

// New creates a new MCP server with all tools registered.
func New(sess *session.Session, version string) *Server {
	s := &Server{sess: sess}

	s.mcp = server.NewMCPServer(
		"hoursheet",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Find employees whose code or name contains the term "+
			"(case-insensitive) and return the matching rows with their total hours."),
		mcp.WithString("term", mcp.Required(), mcp.Description("Employee code or name fragment")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("dataset_status",
		mcp.WithDescription("Report whether the hours sheet is loaded, how many records it has and where it comes from."),
	), s.datasetStatus)

	s.mcp.AddTool(mcp.NewTool("reload_dataset",
		mcp.WithDescription("Fetch the hours sheet again. Returns whether the data changed."),
	), s.reloadDataset)

	s.mcp.AddTool(mcp.NewTool("get_column_contract",
		mcp.WithDescription("Returns the column layout the hours sheet must follow. "+
			"Also available as the "+ColumnsURI+" resource."),
	), s.getColumnContract)

	s.mcp.AddResource(
		mcp.NewResource(ColumnsURI, "Column Contract",
			mcp.WithResourceDescription("Which sheet columns are searched and summed."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readColumnsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type searchResult struct {
	present.View
	TotalLine string `json:"total_line,omitempty"`
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	term, err := req.RequireString("term")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := s.sess.Search(term)
	if v.Status == present.StatusLoading {
		return mcp.NewToolResultError(apperr.ErrNotReady.Error() + ": " + v.Message), nil
	}
	return jsonResult(searchResult{View: v, TotalLine: v.TotalLine()})
}

func (s *Server) datasetStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sess.Snapshot())
}

func (s *Server) reloadDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	replaced, err := s.sess.Reload(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"replaced": replaced,
		"status":   s.sess.Snapshot(),
	})
}

func (s *Server) getColumnContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ColumnContract(s.sess.Columns())), nil
}

func (s *Server) readColumnsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ColumnsURI,
			MIMEType: "text/markdown",
			Text:     ColumnContract(s.sess.Columns()),
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
