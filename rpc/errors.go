package rpc

import "errors"

// Sentinel errors for request handling.
var (
	ErrToolNotFound   = errors.New("tool not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// JSON-RPC 2.0 error codes, plus ToolNotFound from the server range.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeToolNotFound   = -32001
)
