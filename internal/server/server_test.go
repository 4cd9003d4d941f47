package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/availability"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// nopCalendar satisfies appointments.CalendarAPI without doing anything.
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

func (nopCalendar) DeleteEvent(context.Context, string) error {
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServerContext(t *testing.T, opts ...ContextOption) *ServerContext {
	t.Helper()
	svc, err := appointments.NewService(nopCalendar{}, appointments.DefaultConfig())
	require.NoError(t, err)

	opts = append([]ContextOption{WithLogger(discardLogger())}, opts...)
	sc, err := NewServerContext(context.Background(), svc, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil)
	require.Error(t, err)

	sc := newTestServerContext(t)
	require.NotNil(t, sc.Service())
	require.Nil(t, sc.Metrics())
	require.Nil(t, sc.AuditLogger())
	require.False(t, sc.IsShutdown())

	require.NoError(t, sc.Shutdown())
	require.True(t, sc.IsShutdown())
	require.Error(t, sc.Context().Err(), "context is cancelled on shutdown")

	// Idempotent.
	require.NoError(t, sc.Shutdown())
}
