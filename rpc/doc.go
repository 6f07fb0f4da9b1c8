// Package rpc exposes the documentation search box as an MCP tool.
//
// The tool is named "search_docs" and takes a single "query" argument. Its
// result carries the same items the search box renders: informational
// messages ("Please enter at least 2 characters.") or links labelled as
// breadcrumbs.
//
// # Transports
//
//   - [ServeStdio]: the MCP SDK server over stdin/stdout, for desktop clients
//   - [ServeHTTP]: JSON-RPC request/response over HTTP POST
//   - [ServeSSE]: the same, answered as a single Server-Sent Event
//
// Notifications (messages without an id) are processed but never answered;
// the HTTP handlers acknowledge them with 202 Accepted.
//
// # Usage
//
//	srv := rpc.New(ctrl, rpc.Config{
//	    ServerInfo: rpc.ServerInfo{Name: "docsearch", Version: "1.0.0"},
//	})
//	if err := rpc.ServeStdio(ctx, srv); err != nil {
//	    log.Fatal(err)
//	}
package rpc
