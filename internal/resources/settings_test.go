package resources

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/availability"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
)

type nopCalendar struct{}

func (nopCalendar) QueryFreeBusy(context.Context, availability.TimeWindow, string) ([]availability.BusyInterval, error) {
	return nil, nil
}

func (nopCalendar) CreateEvent(context.Context, calendar.EventInput) (*calendar.EventSummary, error) {
	return &calendar.EventSummary{}, nil
}

func (nopCalendar) ListEvents(context.Context, time.Time, time.Time, int64) ([]calendar.EventSummary, error) {
	return nil, nil
}

func (nopCalendar) RescheduleEvent(context.Context, string, time.Time, time.Time, string) (*calendar.EventSummary, error) {
	return &calendar.EventSummary{}, nil
}

func (nopCalendar) DeleteEvent(context.Context, string) error { return nil }

func newServerContext(t *testing.T, cfg appointments.Config) *server.ServerContext {
	t.Helper()

	svc, err := appointments.NewService(nopCalendar{}, cfg)
	require.NoError(t, err)

	sc, err := server.NewServerContext(context.Background(), svc,
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestRegisterSettingsResources(t *testing.T) {
	sc := newServerContext(t, appointments.DefaultConfig())
	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithResourceCapabilities(false, false))

	require.NoError(t, RegisterSettingsResources(s, sc))
	assert.Error(t, RegisterSettingsResources(s, nil))
}

func TestHandleSettings(t *testing.T) {
	sc := newServerContext(t, appointments.Config{
		DefaultTimeZone: "Europe/Berlin",
		WorkdayStart:    8*time.Hour + 30*time.Minute,
		WorkdayEnd:      17 * time.Hour,
		SlotDuration:    30 * time.Minute,
	})

	req := mcp.ReadResourceRequest{}
	req.Params.URI = SettingsURI

	contents, err := handleSettings(context.Background(), req, sc)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SettingsURI, text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var got Settings
	require.NoError(t, json.Unmarshal([]byte(text.Text), &got))
	assert.Equal(t, Settings{
		DefaultTimeZone:     "Europe/Berlin",
		WorkdayStart:        "08:30",
		WorkdayEnd:          "17:00",
		SlotDurationMinutes: 30,
	}, got)
}
