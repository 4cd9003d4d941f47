// Package cmd implements the command-line interface for voice-calendar.
//
// This package provides the following commands:
//   - serve: Start the webhook API, the MCP endpoint and the metrics server
//   - mcp: Serve the MCP tools over stdio
//   - slots: Print the free slots for a day
//   - auth: Mint a Google refresh token
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// serve is the default command when no subcommand is specified.
package cmd
