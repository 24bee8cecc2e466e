// Package mcp provides an MCP (Model Context Protocol) server adapter for Sercha Chat.
// It lets AI assistants search the messages and files of a chat team.
package mcp

import "errors"

// ErrMissingSearchSessions is returned when the search sessions port is not provided.
var ErrMissingSearchSessions = errors.New("mcp: search sessions are required")
