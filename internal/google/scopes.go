package google

import calendar "google.golang.org/api/calendar/v3"

// DefaultOAuthScopes covers free/busy queries and event insert, update and
// delete on the configured calendar.
var DefaultOAuthScopes = []string{
	calendar.CalendarScope,
}
