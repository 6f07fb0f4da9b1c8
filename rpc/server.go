package rpc

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/docsearch/widget"
)

// ProtocolVersion is the MCP protocol revision reported by initialize.
const ProtocolVersion = "2025-06-18"

// ToolName is the name of the single search tool.
const ToolName = "search_docs"

// ServerInfo describes this MCP server for initialize responses.
type ServerInfo struct {
	Name    string
	Version string
}

// Config configures a Server.
type Config struct {
	ServerInfo ServerInfo
}

// SearchInput is the argument object of the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to search the documentation for, at least 2 characters"`
}

// SearchOutput is the structured result of the search tool. Items are
// exactly what the search box would render.
type SearchOutput struct {
	Query string        `json:"query"`
	Items []widget.Item `json:"items"`
}

// Server exposes a widget.Controller as an MCP tool.
type Server struct {
	ctrl   *widget.Controller
	config Config
}

// New creates a Server answering with ctrl.
func New(ctrl *widget.Controller, cfg Config) *Server {
	if cfg.ServerInfo.Name == "" {
		cfg.ServerInfo.Name = "docsearch"
	}
	return &Server{ctrl: ctrl, config: cfg}
}

// Tool returns the MCP definition of the search tool.
func (s *Server) Tool() *mcp.Tool {
	return &mcp.Tool{
		Name:        ToolName,
		Description: "Search the documentation index. Returns matching pages as breadcrumb labels with their relative links.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "text to search the documentation for, at least 2 characters",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Search runs one query through the controller.
func (s *Server) Search(ctx context.Context, query string) SearchOutput {
	return SearchOutput{
		Query: strings.TrimSpace(query),
		Items: s.ctrl.Evaluate(query),
	}
}

// callResult carries items as text content. The SDK server derives the
// structured content from the typed output itself.
func callResult(out SearchOutput) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatItems(out.Items)}},
	}
}

// formatItems renders items as plain text lines for MCP text content.
func formatItems(items []widget.Item) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if item.IsLink() {
			b.WriteString("- ")
			b.WriteString(item.Text)
			b.WriteString(" (")
			b.WriteString(item.Href)
			b.WriteString(")")
			continue
		}
		b.WriteString(item.Text)
	}
	return b.String()
}
