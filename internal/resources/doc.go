// Package resources provides MCP resources for the scheduling assistant.
//
// Resources are read-only data an MCP client can fetch to ground its
// prompts, such as the working day the availability tools search.
package resources
