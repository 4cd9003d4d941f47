package calendar_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
	"github.com/hemanthvallapani/voice-calendar/internal/tools/batch"
	"github.com/hemanthvallapani/voice-calendar/internal/tools/common"
)

const timeFormatHint = "RFC3339 or YYYY-MM-DDTHH:MM in the given time zone"

// RegisterEventTools registers the tools that read and change appointments.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	createEventTool := mcp.NewTool("create_event",
		mcp.WithDescription("Book an appointment and email a calendar invite to the client"),
		mcp.WithString("client_name",
			mcp.Required(),
			mcp.Description("Name of the client"),
		),
		mcp.WithString("client_email",
			mcp.Required(),
			mcp.Description("Email address that receives the invite"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time ("+timeFormatHint+")"),
		),
		mcp.WithString("end_time",
			mcp.Required(),
			mcp.Description("End time ("+timeFormatHint+")"),
		),
		mcp.WithString("description",
			mcp.Description("Optional notes for the event"),
		),
		timeZoneParam(),
	)

	s.AddTool(createEventTool, common.InstrumentedToolHandler("create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	listEventsTool := mcp.NewTool("list_events",
		mcp.WithDescription("List upcoming appointments"),
		mcp.WithNumber("days_ahead",
			mcp.Description(fmt.Sprintf("How many days ahead to look (default: %d)", appointments.DefaultDaysAhead)),
		),
		mcp.WithNumber("max_results",
			mcp.Description(fmt.Sprintf("Maximum number of events (default: %d)", appointments.DefaultMaxResults)),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandler("list_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	cancelEventTool := mcp.NewTool("cancel_event",
		mcp.WithDescription("Cancel one or more appointments and notify their attendees"),
		mcp.WithString("event_id",
			mcp.Description("ID of the event to cancel"),
		),
		mcp.WithArray("event_ids",
			mcp.Description("IDs of several events to cancel; each is reported separately"),
			mcp.WithStringItems(),
		),
		mcp.WithDestructiveHintAnnotation(true),
	)

	s.AddTool(cancelEventTool, common.InstrumentedToolHandler("cancel_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCancelEvent(ctx, request, sc)
		}))

	rescheduleEventTool := mcp.NewTool("reschedule_event",
		mcp.WithDescription("Move an appointment to new times, keeping everything else"),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("ID of the event to move"),
		),
		mcp.WithString("new_start_time",
			mcp.Required(),
			mcp.Description("New start time ("+timeFormatHint+")"),
		),
		mcp.WithString("new_end_time",
			mcp.Required(),
			mcp.Description("New end time ("+timeFormatHint+")"),
		),
		timeZoneParam(),
	)

	s.AddTool(rescheduleEventTool, common.InstrumentedToolHandler("reschedule_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRescheduleEvent(ctx, request, sc)
		}))

	return nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	booking, err := sc.Service().CreateAppointment(ctx, appointments.BookingRequest{
		ClientName:  common.StringArg(args, "client_name"),
		ClientEmail: common.StringArg(args, "client_email"),
		Start:       common.StringArg(args, "start_time"),
		End:         common.StringArg(args, "end_time"),
		Description: common.StringArg(args, "description"),
		TimeZone:    common.StringArg(args, "timezone"),
	})
	if err != nil {
		return toolError(err), nil
	}

	result := fmt.Sprintf("%s\n\nEvent ID: %s\nStart: %s\nEnd: %s\nLink: %s\n",
		booking.Message(),
		booking.Event.ID,
		booking.Event.RawStart,
		booking.Event.RawEnd,
		booking.Event.HTMLLink)

	return mcp.NewToolResultText(result), nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	daysAhead, err := common.IntArg(args, "days_ahead")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	maxResults, err := common.IntArg(args, "max_results")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	list, err := sc.Service().ListAppointments(ctx, appointments.ListRequest{
		DaysAhead:  daysAhead,
		MaxResults: maxResults,
	})
	if err != nil {
		return toolError(err), nil
	}

	var b strings.Builder
	b.WriteString(list.Message())
	b.WriteString("\n")
	if len(list.Events) > 0 {
		b.WriteString("\n")
		lines := make([]string, 0, len(list.Events))
		for _, e := range list.Events {
			line := fmt.Sprintf("%s\n   ID: %s\n   Start: %s\n   End: %s", e.Title(), e.ID, e.RawStart, e.RawEnd)
			if e.Description != "" {
				line += "\n   Description: " + e.Description
			}
			lines = append(lines, line)
		}
		numbered(&b, lines)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func handleCancelEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if raw, ok := args["event_ids"]; ok && raw != nil {
		return handleCancelEvents(ctx, raw, sc)
	}

	eventID := common.StringArg(args, "event_id")

	if err := sc.Service().CancelAppointment(ctx, eventID); err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event cancelled successfully: %s", eventID)), nil
}

func handleCancelEvents(ctx context.Context, raw any, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	ids, err := batch.ParseIDs(raw, "event_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.Process(ctx, ids, func(ctx context.Context, id string) (string, error) {
		if err := sc.Service().CancelAppointment(ctx, id); err != nil {
			return "", err
		}
		return "Event cancelled successfully", nil
	})

	text := batch.FormatResults(results)
	if batch.Summarize(results).Successful == 0 {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

func handleRescheduleEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	event, err := sc.Service().RescheduleAppointment(ctx, appointments.RescheduleRequest{
		EventID:  common.StringArg(args, "event_id"),
		NewStart: common.StringArg(args, "new_start_time"),
		NewEnd:   common.StringArg(args, "new_end_time"),
		TimeZone: common.StringArg(args, "timezone"),
	})
	if err != nil {
		return toolError(err), nil
	}

	result := fmt.Sprintf("Event rescheduled successfully\n\nTitle: %s\nNew start: %s\nNew end: %s\n",
		event.Title(), event.RawStart, event.RawEnd)

	return mcp.NewToolResultText(result), nil
}
