package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hemanthvallapani/voice-calendar/internal/server"
)

// SettingsURI identifies the scheduling settings resource.
const SettingsURI = "calendar://settings"

// Settings is the JSON document served at SettingsURI.
type Settings struct {
	DefaultTimeZone     string `json:"default_timezone"`
	WorkdayStart        string `json:"workday_start"`
	WorkdayEnd          string `json:"workday_end"`
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
}

// RegisterSettingsResources registers the scheduling settings resource.
func RegisterSettingsResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc == nil || sc.Service() == nil {
		return errors.New("server context has no appointment service")
	}

	settingsResource := mcp.NewResource(
		SettingsURI,
		"Scheduling Settings",
		mcp.WithResourceDescription("Working hours, default time zone and slot length used when searching for free slots"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(settingsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSettings(ctx, request, sc)
	})

	return nil
}

func handleSettings(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Service().Config()

	data, err := json.MarshalIndent(Settings{
		DefaultTimeZone:     cfg.DefaultTimeZone,
		WorkdayStart:        clock(cfg.WorkdayStart.Minutes()),
		WorkdayEnd:          clock(cfg.WorkdayEnd.Minutes()),
		SlotDurationMinutes: int(cfg.SlotDuration.Minutes()),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// clock formats minutes after midnight as HH:MM.
func clock(minutes float64) string {
	m := int(minutes)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
