package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar/calendartest"
	"github.com/hemanthvallapani/voice-calendar/internal/google"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
)

// 08:30 on 2025-03-14 in Asia/Kolkata.
var testNow = time.Date(2025, 3, 14, 3, 0, 0, 0, time.UTC)

type testEnv struct {
	router   *gin.Engine
	calendar *calendartest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := calendartest.NewServer()
	t.Cleanup(fake.Close)

	ctx := context.Background()
	client, err := calendar.NewClient(ctx,
		google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: calendartest.Token}},
		calendar.WithEndpoint(fake.Endpoint()))
	require.NoError(t, err)

	svc, err := appointments.NewService(client, appointments.DefaultConfig(),
		appointments.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sc, err := server.NewServerContext(ctx, svc, server.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	r := server.NewRouter(sc, server.NewHealthChecker(sc, "test"), server.RouterConfig{})
	NewHandler(sc).RegisterRoutes(r)

	return &testEnv{router: r, calendar: fake}
}

func (e *testEnv) post(t *testing.T, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec.Code, out
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv(t)
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	env.calendar.SetBusy("primary", [2]time.Time{
		time.Date(2025, 3, 15, 9, 0, 0, 0, kolkata),
		time.Date(2025, 3, 15, 10, 30, 0, 0, kolkata),
	})

	code, body := env.post(t, "/webhook/check-availability", `{"date":"Tomorrow"}`)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2025-03-15", body["date"])
	assert.EqualValues(t, 7, body["count"])
	assert.Equal(t, "Found 7 free slots", body["message"])

	slots := body["free_slots"].([]any)
	require.Len(t, slots, 7)
	first := slots[0].(map[string]any)
	assert.Equal(t, "2025-03-15 11:00", first["start"])
	assert.Equal(t, "2025-03-15 12:00", first["end"])
	assert.Equal(t, "11:00 AM to 12:00 PM", first["display"])

	fb := env.calendar.LastFreeBusy()
	require.NotNil(t, fb)
	assert.Equal(t, "Asia/Kolkata", fb.TimeZone)
}

func TestCheckAvailability_NoSlots(t *testing.T) {
	env := newTestEnv(t)
	env.calendar.SetBusy("primary", [2]time.Time{
		time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	code, body := env.post(t, "/webhook/check-availability", `{"date":"2025-03-14","timezone":"UTC"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No free slots available", body["message"])
	assert.Equal(t, []any{}, body["free_slots"])
}

func TestCheckAvailability_BadInput(t *testing.T) {
	tests := map[string]struct {
		body    string
		wantMsg string
	}{
		"missing date":   {body: `{}`, wantMsg: "date parameter required"},
		"blank date":     {body: `{"date":"   "}`, wantMsg: "date parameter required"},
		"bad date":       {body: `{"date":"03/14/2025"}`, wantMsg: `Invalid date format. Use YYYY-MM-DD, "today", or "tomorrow"`},
		"bad zone":       {body: `{"date":"today","timezone":"Moon/Base"}`, wantMsg: `unknown timezone "Moon/Base"`},
		"empty body":     {body: ``, wantMsg: "request body required"},
		"malformed json": {body: `{"date":`, wantMsg: "invalid request body: unexpected EOF"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			code, body := env.post(t, "/webhook/check-availability", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestCheckAvailability_UpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	env.calendar.FailNext(http.StatusInternalServerError)

	code, body := env.post(t, "/webhook/check-availability", `{"date":"today"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "failed to query freebusy")
}

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.post(t, "/webhook/create-event", `{
		"client_name": "Asha Rao",
		"client_email": "asha@example.com",
		"start_time": "2025-03-15T11:00:00",
		"end_time": "2025-03-15T12:00:00"
	}`)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "evt001", body["event_id"])
	assert.Equal(t, "https://www.google.com/calendar/event?eid=evt001", body["event_link"])
	assert.Equal(t, "Asha Rao", body["client_name"])
	assert.Equal(t, "asha@example.com", body["client_email"])
	assert.Equal(t, "Appointment confirmed for Asha Rao. Calendar invite sent to asha@example.com", body["message"])
	assert.Equal(t, "2025-03-15T11:00:00+05:30", body["start"])
	assert.Equal(t, "2025-03-15T12:00:00+05:30", body["end"])

	events := env.calendar.Events("primary")
	require.Len(t, events, 1)
	assert.Equal(t, "Appointment with Asha Rao", events[0].Summary)
	assert.Equal(t, "Appointment booked for Asha Rao", events[0].Description)
}

func TestCreateEvent_BadInput(t *testing.T) {
	tests := map[string]struct {
		body    string
		wantMsg string
	}{
		"missing name": {
			body:    `{"client_email":"a@example.com","start_time":"2025-03-15T11:00","end_time":"2025-03-15T12:00"}`,
			wantMsg: "client_name required",
		},
		"missing email": {
			body:    `{"client_name":"A","start_time":"2025-03-15T11:00","end_time":"2025-03-15T12:00"}`,
			wantMsg: "client_email required",
		},
		"bad email": {
			body:    `{"client_name":"A","client_email":"nope","start_time":"2025-03-15T11:00","end_time":"2025-03-15T12:00"}`,
			wantMsg: "client_email must be a valid email address",
		},
		"missing start": {
			body:    `{"client_name":"A","client_email":"a@example.com","end_time":"2025-03-15T12:00"}`,
			wantMsg: "start_time required",
		},
		"missing end": {
			body:    `{"client_name":"A","client_email":"a@example.com","start_time":"2025-03-15T11:00"}`,
			wantMsg: "end_time required",
		},
		"end before start": {
			body:    `{"client_name":"A","client_email":"a@example.com","start_time":"2025-03-15T11:00","end_time":"2025-03-15T10:00"}`,
			wantMsg: "end_time must be after start_time",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t)
			code, body := env.post(t, "/webhook/create-event", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.wantMsg, body["error"])
			assert.Empty(t, env.calendar.Events("primary"))
		})
	}
}

func TestListEvents(t *testing.T) {
	env := newTestEnv(t)
	env.calendar.AddEvent("primary", &gcal.Event{
		Summary:     "Appointment with Ravi",
		Description: "Checkup",
		Start:       &gcal.EventDateTime{DateTime: "2025-03-15T10:00:00+05:30"},
		End:         &gcal.EventDateTime{DateTime: "2025-03-15T11:00:00+05:30"},
	})
	env.calendar.AddEvent("primary", &gcal.Event{
		Start: &gcal.EventDateTime{Date: "2025-03-16"},
		End:   &gcal.EventDateTime{Date: "2025-03-17"},
	})

	code, body := env.post(t, "/webhook/list-events", `{}`)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "2 upcoming events found", body["message"])

	events := body["events"].([]any)
	first := events[0].(map[string]any)
	assert.Equal(t, "evt001", first["id"])
	assert.Equal(t, "Appointment with Ravi", first["title"])
	assert.Equal(t, "Checkup", first["description"])
	assert.Equal(t, "2025-03-15T10:00:00+05:30", first["start"])
	assert.NotEmpty(t, first["link"])

	second := events[1].(map[string]any)
	assert.Equal(t, "Untitled", second["title"])
	assert.Equal(t, "2025-03-16", second["start"])
	assert.Equal(t, "2025-03-17", second["end"])
}

func TestListEvents_EmptyBodyAndLimits(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.post(t, "/webhook/list-events", ``)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "No upcoming events", body["message"])
	assert.Equal(t, []any{}, body["events"])

	code, body = env.post(t, "/webhook/list-events", `{"days_ahead":-3}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "days_ahead must be at least 0", body["error"])

	code, body = env.post(t, "/webhook/list-events", `{"max_results":1000}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "max_results must be at most 250", body["error"])
}

func TestCancelEvent(t *testing.T) {
	env := newTestEnv(t)
	ev := env.calendar.AddEvent("primary", &gcal.Event{
		Start: &gcal.EventDateTime{DateTime: "2025-03-15T10:00:00+05:30"},
		End:   &gcal.EventDateTime{DateTime: "2025-03-15T11:00:00+05:30"},
	})

	code, body := env.post(t, "/webhook/cancel-event", `{"event_id":"`+ev.Id+`"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Event cancelled successfully", body["message"])
	assert.Empty(t, env.calendar.Events("primary"))

	code, body = env.post(t, "/webhook/cancel-event", `{"event_id":"`+ev.Id+`"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])

	code, body = env.post(t, "/webhook/cancel-event", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "event_id required", body["error"])
}

func TestRescheduleEvent(t *testing.T) {
	env := newTestEnv(t)
	ev := env.calendar.AddEvent("primary", &gcal.Event{
		Summary: "Appointment with Ravi",
		Start:   &gcal.EventDateTime{DateTime: "2025-03-15T10:00:00+05:30", TimeZone: "Asia/Kolkata"},
		End:     &gcal.EventDateTime{DateTime: "2025-03-15T11:00:00+05:30", TimeZone: "Asia/Kolkata"},
	})

	code, body := env.post(t, "/webhook/reschedule-event", `{
		"event_id": "`+ev.Id+`",
		"new_start_time": "2025-03-16 15:00",
		"new_end_time": "2025-03-16 16:00"
	}`)
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, "Event rescheduled successfully", body["message"])
	assert.Equal(t, "Appointment with Ravi", body["title"])
	assert.Equal(t, "2025-03-16T15:00:00+05:30", body["new_start"])
	assert.Equal(t, "2025-03-16T16:00:00+05:30", body["new_end"])
}

func TestRescheduleEvent_Errors(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.post(t, "/webhook/reschedule-event", `{"event_id":"missing","new_start_time":"2025-03-16T15:00","new_end_time":"2025-03-16T16:00"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "event not found: missing", body["error"])

	code, body = env.post(t, "/webhook/reschedule-event", `{"event_id":"x","new_start_time":"2025-03-16T15:00"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "new_end_time required", body["error"])
}
