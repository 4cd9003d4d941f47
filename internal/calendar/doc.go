// Package calendar provides a client for a single Google Calendar.
//
// The client covers what the booking flow needs: free/busy queries, event
// insert, list, get, reschedule and delete. Every call is traced as
// google.calendar.<operation> and counted in google_api_operations_total.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, tokenProvider,
//	    calendar.WithCalendarID("primary"),
//	    calendar.WithMetrics(provider.Metrics()))
//	if err != nil {
//	    return err
//	}
//
//	busy, err := client.QueryFreeBusy(ctx, window, "Asia/Kolkata")
package calendar
