package calendar_tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
)

// RegisterCalendarTools registers all appointment tools with the MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil || sc.Service() == nil {
		return fmt.Errorf("server context with an appointments service is required")
	}

	if err := RegisterAvailabilityTools(s, sc); err != nil {
		return fmt.Errorf("failed to register availability tools: %w", err)
	}
	if err := RegisterEventTools(s, sc); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}
	return nil
}

// toolError turns a service error into a tool result the agent can read.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

func timeZoneParam() mcp.ToolOption {
	return mcp.WithString("timezone",
		mcp.Description(fmt.Sprintf("IANA time zone, e.g. 'America/New_York' (default: %s)", appointments.DefaultTimeZone)),
	)
}

// numbered writes lines as a 1-based list.
func numbered(b *strings.Builder, lines []string) {
	for i, line := range lines {
		fmt.Fprintf(b, "%d. %s\n", i+1, line)
	}
}
