// Package common provides helpers shared by the MCP tool packages: the
// instrumented handler wrapper and typed access to tool arguments.
package common
