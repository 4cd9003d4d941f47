package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hemanthvallapani/voice-calendar/internal/availability"
	"github.com/hemanthvallapani/voice-calendar/internal/google"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
	"github.com/hemanthvallapani/voice-calendar/internal/logging"
)

// DefaultCalendarID is the authenticated user's primary calendar.
const DefaultCalendarID = "primary"

// ErrEventNotFound is returned when the calendar has no event with the given id,
// including events that were already deleted.
var ErrEventNotFound = errors.New("event not found")

// Client wraps the Google Calendar service for a single calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

type clientOptions struct {
	calendarID string
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	apiOptions []option.ClientOption
}

// Option configures a Client.
type Option func(*clientOptions)

// WithCalendarID selects the calendar the client operates on (default "primary").
func WithCalendarID(id string) Option {
	return func(o *clientOptions) {
		if id != "" {
			o.calendarID = id
		}
	}
}

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(o *clientOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEndpoint points the client at a different API base URL.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) {
		o.apiOptions = append(o.apiOptions, option.WithEndpoint(endpoint))
	}
}

// NewClient creates a Calendar client authenticated by tokenProvider.
func NewClient(ctx context.Context, tokenProvider google.TokenProvider, opts ...Option) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	o := clientOptions{
		calendarID: DefaultCalendarID,
		metrics:    &instrumentation.Metrics{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	ts, err := tokenProvider.TokenSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google token source: %w", err)
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}

	apiOptions := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, o.apiOptions...)
	svc, err := calendar.NewService(ctx, apiOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:        svc,
		calendarID: o.calendarID,
		metrics:    o.metrics,
		logger:     o.logger.With(logging.CalendarID(o.calendarID)),
	}, nil
}

// CalendarID returns the id of the calendar this client operates on.
func (c *Client) CalendarID() string {
	return c.calendarID
}

// observe starts a span for operation and returns a function that ends it
// and records the call.
func (c *Client) observe(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	attrs = append(attrs, attribute.String(instrumentation.SpanAttrCalendarID, c.calendarID))
	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, operation, attrs...)

	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()

		duration := time.Since(start)
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, operation, status, duration)
		c.logger.Debug("calendar api call",
			logging.Operation("calendar."+operation),
			logging.Status(status),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
	}
}

// QueryFreeBusy returns the busy intervals of the calendar inside window.
// timeZone is passed through to the API; the returned intervals are absolute
// instants expressed in the window's location.
func (c *Client) QueryFreeBusy(ctx context.Context, window availability.TimeWindow, timeZone string) (busy []availability.BusyInterval, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationFreeBusy)
	defer func() { done(err) }()

	query := &calendar.FreeBusyRequest{
		TimeMin:  window.Start.Format(time.RFC3339),
		TimeMax:  window.End.Format(time.RFC3339),
		TimeZone: timeZone,
		Items:    []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	result, err := c.svc.Freebusy.Query(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query freebusy: %w", err)
	}

	cal, ok := result.Calendars[c.calendarID]
	if !ok {
		return nil, fmt.Errorf("freebusy response has no entry for calendar %s", c.calendarID)
	}
	if len(cal.Errors) > 0 {
		reasons := make([]string, 0, len(cal.Errors))
		for _, e := range cal.Errors {
			reasons = append(reasons, e.Reason)
		}
		return nil, fmt.Errorf("freebusy query for calendar %s failed: %s", c.calendarID, strings.Join(reasons, ", "))
	}

	loc := window.Start.Location()
	busy = make([]availability.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("failed to parse busy end %q: %w", period.End, err)
		}
		busy = append(busy, availability.BusyInterval{Start: start.In(loc), End: end.In(loc)})
	}

	return busy, nil
}

// CreateEvent inserts a new event and returns it as stored by the API.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (summary *EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationCreate)
	defer func() { done(err) }()

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Start:       toEventDateTime(input.Start, input.TimeZone),
		End:         toEventDateTime(input.End, input.TimeZone),
	}

	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{
			Email:          email,
			ResponseStatus: "needsAction",
		})
	}

	if len(input.Reminders) > 0 {
		event.Reminders = &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
		}
		for _, r := range input.Reminders {
			event.Reminders.Overrides = append(event.Reminders.Overrides, &calendar.EventReminder{
				Method:  r.Method,
				Minutes: r.Minutes,
			})
		}
	}

	sendUpdates := input.SendUpdates
	if sendUpdates == "" {
		sendUpdates = SendUpdatesAll
	}

	created, err := c.svc.Events.Insert(c.calendarID, event).SendUpdates(sendUpdates).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s := toEventSummary(created)
	return &s, nil
}

// ListEvents returns single (expanded) events overlapping [timeMin, timeMax),
// ordered by start time, at most maxResults of them.
func (c *Client) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) (events []EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationList)
	defer func() { done(err) }()

	call := c.svc.Events.List(c.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	result, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events = make([]EventSummary, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, toEventSummary(item))
	}

	return events, nil
}

// RescheduleEvent moves an existing event to [start, end). All other fields
// of the event are preserved. An empty timeZone keeps the event's zone.
func (c *Client) RescheduleEvent(ctx context.Context, eventID string, start, end time.Time, timeZone string) (summary *EventSummary, err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationUpdate,
		attribute.String(instrumentation.SpanAttrEventID, eventID))
	defer func() { done(err) }()

	existing, err := c.svc.Events.Get(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, wrapEventError("failed to get existing event", eventID, err)
	}

	if timeZone == "" && existing.Start != nil {
		timeZone = existing.Start.TimeZone
	}
	existing.Start = toEventDateTime(start, timeZone)
	existing.End = toEventDateTime(end, timeZone)

	updated, err := c.svc.Events.Update(c.calendarID, eventID, existing).
		SendUpdates(SendUpdatesAll).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapEventError("failed to update event", eventID, err)
	}

	s := toEventSummary(updated)
	return &s, nil
}

// DeleteEvent deletes an event and notifies its attendees.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) (err error) {
	ctx, done := c.observe(ctx, instrumentation.OperationDelete,
		attribute.String(instrumentation.SpanAttrEventID, eventID))
	defer func() { done(err) }()

	if err := c.svc.Events.Delete(c.calendarID, eventID).SendUpdates(SendUpdatesAll).Context(ctx).Do(); err != nil {
		return wrapEventError("failed to delete event", eventID, err)
	}
	return nil
}

// wrapEventError maps 404 and 410 responses to ErrEventNotFound.
func wrapEventError(msg, eventID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return fmt.Errorf("%s %s: %w", msg, eventID, ErrEventNotFound)
	}
	return fmt.Errorf("%s %s: %w", msg, eventID, err)
}
