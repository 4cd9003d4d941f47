package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Values for the sendUpdates parameter on insert, update and delete.
const (
	SendUpdatesAll  = "all"
	SendUpdatesNone = "none"
)

// dateLayout is the format of all-day event dates.
const dateLayout = "2006-01-02"

// EventInput represents the input for creating a calendar event
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string // IANA name sent alongside the RFC3339 times
	Attendees   []string

	// Reminders replaces the calendar's default reminders when non-empty.
	Reminders []Reminder

	// SendUpdates defaults to SendUpdatesAll.
	SendUpdates string
}

// Reminder is a reminder override on an event.
type Reminder struct {
	Method  string // "email" or "popup"
	Minutes int64
}

// EventSummary represents a simplified calendar event
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	HTMLLink    string
	Status      string
	Start       time.Time
	End         time.Time
	AllDay      bool

	// RawStart and RawEnd hold the dateTime (or date, for all-day events)
	// exactly as the API returned it.
	RawStart string
	RawEnd   string

	Attendees []AttendeeInfo
}

// Title returns the summary, or "Untitled" when the event has none.
func (e EventSummary) Title() string {
	if e.Summary == "" {
		return "Untitled"
	}
	return e.Summary
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	DisplayName    string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
}

func toEventDateTime(t time.Time, timeZone string) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: timeZone,
	}
}

// parseEventDateTime returns the instant, the raw string and whether the
// value is an all-day date.
func parseEventDateTime(edt *calendar.EventDateTime) (time.Time, string, bool) {
	if edt == nil {
		return time.Time{}, "", false
	}
	if edt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, edt.DateTime)
		return t, edt.DateTime, false
	}
	if edt.Date != "" {
		loc := time.UTC
		if edt.TimeZone != "" {
			if l, err := time.LoadLocation(edt.TimeZone); err == nil {
				loc = l
			}
		}
		t, _ := time.ParseInLocation(dateLayout, edt.Date, loc)
		return t, edt.Date, true
	}
	return time.Time{}, "", false
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		HTMLLink:    event.HtmlLink,
		Status:      event.Status,
	}

	summary.Start, summary.RawStart, summary.AllDay = parseEventDateTime(event.Start)
	summary.End, summary.RawEnd, _ = parseEventDateTime(event.End)

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
		})
	}

	return summary
}
