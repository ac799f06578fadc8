// Package server implements a JSON-RPC 2.0 tool server over stdio for
// reviewing and driving sheet recognition interactively.
//
// # Protocol
//
// The server communicates over stdio:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Scans:
//   - scan_info: Dimensions and file size of a scan
//   - scan_split: Split a scan into sheet regions, optionally returning one normalized sheet
//   - scan_process: Recognize and store the sheets of a list of scans
//
// Sheets:
//   - sheet_inspect: Product, sheet number, tags and boxes needing review
//   - sheet_render: Render a stored sheet with unconfident boxes tinted
//   - sheet_box: Crop one box out of a normalized scan image
//
// Candidates:
//   - text_match: Resolve a text against the candidates of a box kind
//
// # Image Caching
//
// Scans and normalized images are cached by path for the lifetime of the
// server, so splitting a scan and then cropping its boxes decodes each file
// once. scan_process evicts the scans it is given.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(p)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
