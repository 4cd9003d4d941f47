package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	calendar "google.golang.org/api/calendar/v3"
)

func TestToEventSummary(t *testing.T) {
	tests := map[string]struct {
		event *calendar.Event
		want  EventSummary
	}{
		"nil event": {
			event: nil,
			want:  EventSummary{},
		},
		"timed event": {
			event: &calendar.Event{
				Id:       "evt1",
				Summary:  "Appointment with Asha",
				HtmlLink: "https://calendar/evt1",
				Start:    &calendar.EventDateTime{DateTime: "2025-03-14T10:00:00+05:30"},
				End:      &calendar.EventDateTime{DateTime: "2025-03-14T11:00:00+05:30"},
				Attendees: []*calendar.EventAttendee{
					{Email: "asha@example.com", ResponseStatus: "needsAction"},
				},
			},
			want: EventSummary{
				ID:        "evt1",
				Summary:   "Appointment with Asha",
				HTMLLink:  "https://calendar/evt1",
				Start:     time.Date(2025, 3, 14, 4, 30, 0, 0, time.UTC),
				End:       time.Date(2025, 3, 14, 5, 30, 0, 0, time.UTC),
				RawStart:  "2025-03-14T10:00:00+05:30",
				RawEnd:    "2025-03-14T11:00:00+05:30",
				Attendees: []AttendeeInfo{{Email: "asha@example.com", ResponseStatus: "needsAction"}},
			},
		},
		"all-day event": {
			event: &calendar.Event{
				Id:    "evt2",
				Start: &calendar.EventDateTime{Date: "2025-03-15"},
				End:   &calendar.EventDateTime{Date: "2025-03-16"},
			},
			want: EventSummary{
				ID:       "evt2",
				Start:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
				End:      time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
				RawStart: "2025-03-15",
				RawEnd:   "2025-03-16",
				AllDay:   true,
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := toEventSummary(tt.event)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Summary, got.Summary)
			assert.Equal(t, tt.want.HTMLLink, got.HTMLLink)
			assert.True(t, tt.want.Start.Equal(got.Start), "start: want %s got %s", tt.want.Start, got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end: want %s got %s", tt.want.End, got.End)
			assert.Equal(t, tt.want.RawStart, got.RawStart)
			assert.Equal(t, tt.want.RawEnd, got.RawEnd)
			assert.Equal(t, tt.want.AllDay, got.AllDay)
			assert.Equal(t, tt.want.Attendees, got.Attendees)
		})
	}
}

func TestToEventDateTime(t *testing.T) {
	edt := toEventDateTime(time.Date(2025, 3, 14, 9, 0, 0, 0, time.FixedZone("IST", 19800)), "Asia/Kolkata")
	assert.Equal(t, "2025-03-14T09:00:00+05:30", edt.DateTime)
	assert.Equal(t, "Asia/Kolkata", edt.TimeZone)
	assert.Empty(t, edt.Date)
}

func TestEventSummaryTitle(t *testing.T) {
	assert.Equal(t, "Untitled", EventSummary{}.Title())
	assert.Equal(t, "Checkup", EventSummary{Summary: "Checkup"}.Title())
}
