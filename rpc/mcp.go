package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Request is a JSON-RPC 2.0 message. A request without an id is a
// notification and gets no response.
type Request struct {
	Version string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether req expects no response.
func (req Request) IsNotification() bool {
	return req.ID == nil
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set.
type Response struct {
	Version string         `json:"jsonrpc"`
	ID      any            `json:"id"`
	Result  any            `json:"result,omitempty"`
	Error   *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error member of a Response.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HandleRequest answers one message. The second result is false for
// notifications, whose response must not be sent.
func (s *Server) HandleRequest(ctx context.Context, req Request) (Response, bool) {
	resp := s.dispatch(ctx, req)
	return resp, !req.IsNotification()
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	if req.Version != "2.0" {
		return errorResponse(req.ID, ErrCodeInvalidRequest, fmt.Sprintf("%v: jsonrpc must be \"2.0\"", ErrInvalidRequest))
	}

	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, &mcp.InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    &mcp.ServerCapabilities{Tools: &mcp.ToolCapabilities{}},
			ServerInfo: &mcp.Implementation{
				Name:    s.config.ServerInfo.Name,
				Version: s.config.ServerInfo.Version,
			},
		})
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	case "tools/list":
		return resultResponse(req.ID, &mcp.ListToolsResult{Tools: []*mcp.Tool{s.Tool()}})
	case "tools/call":
		return s.callTool(ctx, req.ID, req.Params)
	}

	if strings.HasPrefix(req.Method, "notifications/") {
		return Response{Version: "2.0", ID: req.ID}
	}
	return errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("method %s not found", req.Method))
}

type toolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

func (s *Server) callTool(ctx context.Context, id any, raw json.RawMessage) Response {
	var params toolCall
	if err := json.Unmarshal(raw, &params); err != nil {
		return errorResponse(id, ErrCodeInvalidParams, err.Error())
	}
	if params.Name != ToolName {
		return errorResponse(id, ErrCodeToolNotFound, fmt.Sprintf("%v: %s", ErrToolNotFound, params.Name))
	}

	query, ok := params.Arguments["query"].(string)
	if !ok {
		return errorResponse(id, ErrCodeInvalidParams, "argument query must be a string")
	}

	out := s.Search(ctx, query)
	res := callResult(out)
	res.StructuredContent = out
	return resultResponse(id, res)
}

func resultResponse(id any, result any) Response {
	return Response{Version: "2.0", ID: id, Result: result}
}

func errorResponse(id any, code int, message string) Response {
	return Response{
		Version: "2.0",
		ID:      id,
		Error:   &ResponseError{Code: code, Message: message},
	}
}
