package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
	"github.com/hemanthvallapani/voice-calendar/internal/tools/common"
)

// RegisterAvailabilityTools registers check_availability.
func RegisterAvailabilityTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	checkAvailabilityTool := mcp.NewTool("check_availability",
		mcp.WithDescription("List the free appointment slots on a day within working hours"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Day to check: YYYY-MM-DD, 'today' or 'tomorrow'"),
		),
		timeZoneParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(checkAvailabilityTool, common.InstrumentedToolHandler("check_availability", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckAvailability(ctx, request, sc)
		}))

	return nil
}

func handleCheckAvailability(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	result, err := sc.Service().CheckAvailability(ctx, appointments.AvailabilityRequest{
		Date:     common.StringArg(args, "date"),
		TimeZone: common.StringArg(args, "timezone"),
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s on %s (%s)\n",
		result.Message(), result.Date.Format(appointments.DateLayout), result.TimeZone)
	if len(result.Slots) > 0 {
		b.WriteString("\n")
		lines := make([]string, 0, len(result.Slots))
		for _, slot := range result.Slots {
			lines = append(lines, fmt.Sprintf("%s (start_time %s, end_time %s)",
				appointments.FormatDisplay(slot.Start, slot.End),
				slot.Start.Format(appointments.SlotLayout),
				slot.End.Format(appointments.SlotLayout)))
		}
		numbered(&b, lines)
	}

	return mcp.NewToolResultText(b.String()), nil
}
