package appointments_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar/calendartest"
	"github.com/hemanthvallapani/voice-calendar/internal/google"
)

var _ appointments.CalendarAPI = (*calendar.Client)(nil)

func TestService_AgainstCalendarAPI(t *testing.T) {
	srv := calendartest.NewServer()
	defer srv.Close()

	ctx := context.Background()
	client, err := calendar.NewClient(ctx,
		google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: calendartest.Token}},
		calendar.WithEndpoint(srv.Endpoint()))
	require.NoError(t, err)

	now := time.Date(2025, 3, 14, 3, 0, 0, 0, time.UTC)
	svc, err := appointments.NewService(client, appointments.DefaultConfig(),
		appointments.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	// Book the first slot of the day, then check what is left.
	booking, err := svc.CreateAppointment(ctx, appointments.BookingRequest{
		ClientName:  "Asha",
		ClientEmail: "asha@example.com",
		Start:       "2025-03-14 09:00",
		End:         "2025-03-14 10:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, booking.Event.HTMLLink)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	srv.SetBusy("primary", [2]time.Time{booking.Event.Start.In(loc), booking.Event.End.In(loc)})

	result, err := svc.CheckAvailability(ctx, appointments.AvailabilityRequest{Date: "today"})
	require.NoError(t, err)
	require.Len(t, result.Slots, 8)
	assert.Equal(t, "10:00 AM to 11:00 AM", appointments.FormatDisplay(result.Slots[0].Start, result.Slots[0].End))

	list, err := svc.ListAppointments(ctx, appointments.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, "Appointment with Asha", list.Events[0].Summary)

	moved, err := svc.RescheduleAppointment(ctx, appointments.RescheduleRequest{
		EventID:  booking.Event.ID,
		NewStart: "2025-03-14 15:00",
		NewEnd:   "2025-03-14 16:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14T15:00:00+05:30", moved.RawStart)

	require.NoError(t, svc.CancelAppointment(ctx, booking.Event.ID))
	assert.ErrorIs(t, svc.CancelAppointment(ctx, booking.Event.ID), appointments.ErrNotFound)
}
