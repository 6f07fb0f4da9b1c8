package rpc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds an SDK server that offers the search tool.
func NewMCPServer(s *Server) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    s.config.ServerInfo.Name,
		Version: s.config.ServerInfo.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: s.Tool().Description,
	}, func(ctx context.Context, req *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		out := s.Search(ctx, in.Query)
		return callResult(out), out, nil
	})

	return server
}

// ServeStdio runs the search tool as an MCP server over stdin/stdout.
// Blocks until the client disconnects or ctx is cancelled.
func ServeStdio(ctx context.Context, s *Server) error {
	return NewMCPServer(s).Run(ctx, &mcp.StdioTransport{})
}

// ServeHTTP returns a handler that takes one JSON-RPC message per POST and
// answers with a JSON body. Notifications are acknowledged with 202 and no
// body.
func ServeHTTP(s *Server) http.Handler {
	return &rpcHandler{srv: s, write: writeJSON}
}

// ServeSSE is ServeHTTP with the response sent as a single "message"
// Server-Sent Event.
func ServeSSE(s *Server) http.Handler {
	return &rpcHandler{srv: s, write: writeEvent}
}

type rpcHandler struct {
	srv   *Server
	write func(http.ResponseWriter, Response)
}

func (h *rpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.write(w, errorResponse(nil, ErrCodeParseError, err.Error()))
		return
	}

	resp, reply := h.srv.HandleRequest(r.Context(), req)
	if !reply {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	h.write(w, resp)
}

func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeEvent(w http.ResponseWriter, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte("event: message\ndata: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
