// Package server implements the MCP (Model Context Protocol) server for shot
// group analysis.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// Logs never go to stdout.
//
// # Available Tools
//
//   - target_load: Load a target image and report its size in pixels and inches
//   - target_detect_holes: Find bullet holes, optionally inside a named region
//   - target_analyze_group: Statistics for a list of shots, plus the drawing
//     commands for the annotations
//   - target_annotate: Draw the analysis onto the target image, from given
//     shots or from detected holes
//   - target_measure: Distance between two points in inches and MOA
//   - target_moa: Inches to minutes of angle at a distance
//
// Shots are circle records {id, x|cx, y|cy, r}. Records that cannot be read
// are skipped and listed under "dropped" in the result. Fewer than three
// usable shots fail the call.
//
// # Defaults
//
// Unit, dpi, distance, annotation style and detection settings default to
// the server configuration (see package config) and can be overridden per
// call. A zero or missing argument means "use the default".
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: "Tool execution failed", or "select more than 2 shots" when
//     the group is too small
//   - data: the Go error string
//
// # Usage
//
//	srv, err := server.New(cfg, logger, metrics)
//	if err != nil {
//	    return err
//	}
//	return srv.Run(ctx, os.Stdin, os.Stdout)
package server
