package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/hemanthvallapani/voice-calendar/internal/availability"
	"github.com/hemanthvallapani/voice-calendar/internal/calendar"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
	"github.com/hemanthvallapani/voice-calendar/internal/logging"
)

// Defaults applied by DefaultConfig and the list operation.
const (
	DefaultTimeZone     = "Asia/Kolkata"
	DefaultWorkdayStart = 9 * time.Hour
	DefaultWorkdayEnd   = 18 * time.Hour
	DefaultSlotDuration = time.Hour
	DefaultDaysAhead    = 7
	DefaultMaxResults   = 10

	// Upper bounds on list requests; the Calendar API caps a page at 250 events.
	MaxDaysAhead  = 365
	MaxResultsCap = 250
)

// CalendarAPI is the subset of *calendar.Client the service needs.
type CalendarAPI interface {
	QueryFreeBusy(ctx context.Context, window availability.TimeWindow, timeZone string) ([]availability.BusyInterval, error)
	CreateEvent(ctx context.Context, input calendar.EventInput) (*calendar.EventSummary, error)
	ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int64) ([]calendar.EventSummary, error)
	RescheduleEvent(ctx context.Context, eventID string, start, end time.Time, timeZone string) (*calendar.EventSummary, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// Config holds the working-day settings.
type Config struct {
	// DefaultTimeZone is used when a request names no zone.
	DefaultTimeZone string

	// WorkdayStart and WorkdayEnd are offsets from local midnight.
	WorkdayStart time.Duration
	WorkdayEnd   time.Duration

	SlotDuration time.Duration
}

// DefaultConfig returns a 09:00-18:00 working day in Asia/Kolkata with one-hour slots.
func DefaultConfig() Config {
	return Config{
		DefaultTimeZone: DefaultTimeZone,
		WorkdayStart:    DefaultWorkdayStart,
		WorkdayEnd:      DefaultWorkdayEnd,
		SlotDuration:    DefaultSlotDuration,
	}
}

// Validate checks the working day and zone.
func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.DefaultTimeZone); err != nil {
		return fmt.Errorf("invalid default timezone %q: %w", c.DefaultTimeZone, err)
	}
	if c.WorkdayStart < 0 || c.WorkdayEnd > 24*time.Hour {
		return fmt.Errorf("working hours must lie within one day")
	}
	if c.WorkdayStart >= c.WorkdayEnd {
		return fmt.Errorf("workday start %s must be before end %s", c.WorkdayStart, c.WorkdayEnd)
	}
	if c.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive, got %s", c.SlotDuration)
	}
	return nil
}

// Service implements the booking operations.
type Service struct {
	calendar CalendarAPI
	config   Config
	now      func() time.Time
	metrics  *instrumentation.Metrics
	audit    *instrumentation.AuditLogger
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records availability checks and appointment changes on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithAuditLogger writes appointment changes to al.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(s *Service) {
		s.audit = al
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service over cal.
func NewService(cal CalendarAPI, config Config, opts ...Option) (*Service, error) {
	if cal == nil {
		return nil, fmt.Errorf("calendar cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid appointments config: %w", err)
	}

	s := &Service{
		calendar: cal,
		config:   config,
		now:      time.Now,
		metrics:  &instrumentation.Metrics{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.config
}

// AvailabilityRequest asks for the free slots on one day.
type AvailabilityRequest struct {
	Date     string // "today", "tomorrow" or YYYY-MM-DD
	TimeZone string // IANA name; empty uses the configured default
}

// AvailabilityResult is the outcome of CheckAvailability.
type AvailabilityResult struct {
	Date     time.Time // midnight of the resolved day
	TimeZone string
	Window   availability.TimeWindow
	Slots    []availability.FreeSlot
}

// Message summarizes the result for a voice agent.
func (r *AvailabilityResult) Message() string {
	if len(r.Slots) == 0 {
		return "No free slots available"
	}
	return fmt.Sprintf("Found %d free slots", len(r.Slots))
}

// CheckAvailability returns the free slots of the working day named by req.
func (s *Service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (result *AvailabilityResult, err error) {
	ctx, span := instrumentation.StartSpan(ctx, "appointments.check_availability",
		attribute.String(instrumentation.SpanAttrDate, req.Date))
	defer func() {
		status := instrumentation.StatusSuccess
		slots := 0
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			slots = len(result.Slots)
			span.SetAttributes(attribute.Int(instrumentation.SpanAttrSlotCount, slots))
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
		s.metrics.RecordAvailabilityCheck(ctx, status, slots)
	}()

	loc, err := LoadZone(req.TimeZone, s.config.DefaultTimeZone)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(instrumentation.SpanAttrTimeZone, loc.String()))

	day, err := ResolveDate(req.Date, s.now(), loc)
	if err != nil {
		return nil, err
	}

	window := s.workday(day)
	busy, err := s.calendar.QueryFreeBusy(ctx, window, loc.String())
	if err != nil {
		return nil, err
	}

	slots, err := availability.ComputeFreeSlots(window, busy, s.config.SlotDuration)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error(), Err: err}
	}

	s.logger.Debug("availability computed",
		logging.Operation("appointments.check_availability"),
		slog.String("date", day.Format(DateLayout)),
		slog.Int("busy", len(busy)),
		slog.Int("free", len(slots)))

	return &AvailabilityResult{
		Date:     day,
		TimeZone: loc.String(),
		Window:   window,
		Slots:    slots,
	}, nil
}

// workday returns the working-hours window on day.
func (s *Service) workday(day time.Time) availability.TimeWindow {
	at := func(offset time.Duration) time.Time {
		h := int(offset / time.Hour)
		m := int((offset % time.Hour) / time.Minute)
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
	}
	return availability.TimeWindow{Start: at(s.config.WorkdayStart), End: at(s.config.WorkdayEnd)}
}

// BookingRequest describes a new appointment.
type BookingRequest struct {
	ClientName  string
	ClientEmail string
	Start       string
	End         string
	Description string
	TimeZone    string
}

// Booking is a created appointment.
type Booking struct {
	Event       calendar.EventSummary
	ClientName  string
	ClientEmail string
}

// Message confirms the booking for a voice agent.
func (b *Booking) Message() string {
	return fmt.Sprintf("Appointment confirmed for %s. Calendar invite sent to %s", b.ClientName, b.ClientEmail)
}

// appointmentReminders are an email the day before and a popup half an hour before.
var appointmentReminders = []calendar.Reminder{
	{Method: "email", Minutes: 24 * 60},
	{Method: "popup", Minutes: 30},
}

// CreateAppointment books req and invites the client.
func (s *Service) CreateAppointment(ctx context.Context, req BookingRequest) (booking *Booking, err error) {
	name := strings.TrimSpace(req.ClientName)
	email := strings.TrimSpace(req.ClientEmail)

	change := instrumentation.NewAppointmentChange(ctx, instrumentation.ChangeCreate, instrumentation.SourceFromContext(ctx))
	change.ClientEmail = email
	defer func() { s.recordChange(ctx, change.Complete(err)) }()

	switch {
	case name == "":
		return nil, RequiredError("client_name")
	case email == "":
		return nil, RequiredError("client_email")
	case !strings.Contains(email, "@"):
		return nil, invalidf("client_email %q is not an email address", email)
	}

	loc, err := LoadZone(req.TimeZone, s.config.DefaultTimeZone)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange("start_time", req.Start, "end_time", req.End, loc)
	if err != nil {
		return nil, err
	}
	change.Start, change.End = start, end

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Appointment booked for " + name
	}

	event, err := s.calendar.CreateEvent(ctx, calendar.EventInput{
		Summary:     "Appointment with " + name,
		Description: description,
		Start:       start,
		End:         end,
		TimeZone:    loc.String(),
		Attendees:   []string{email},
		Reminders:   appointmentReminders,
		SendUpdates: calendar.SendUpdatesAll,
	})
	if err != nil {
		return nil, err
	}
	change.EventID = event.ID

	return &Booking{Event: *event, ClientName: name, ClientEmail: email}, nil
}

// ListRequest bounds the upcoming events to return. Zero values use the
// defaults of 7 days and 10 results.
type ListRequest struct {
	DaysAhead  int
	MaxResults int
}

// ListResult holds the upcoming events in start order.
type ListResult struct {
	Events []calendar.EventSummary
}

// Message summarizes the list for a voice agent.
func (r *ListResult) Message() string {
	if len(r.Events) == 0 {
		return "No upcoming events"
	}
	return fmt.Sprintf("%d upcoming events found", len(r.Events))
}

// ListAppointments returns events between now and req.DaysAhead days from now.
func (s *Service) ListAppointments(ctx context.Context, req ListRequest) (*ListResult, error) {
	if req.DaysAhead < 0 {
		return nil, invalidf("days_ahead must not be negative")
	}
	if req.MaxResults < 0 {
		return nil, invalidf("max_results must not be negative")
	}
	if req.DaysAhead > MaxDaysAhead {
		return nil, invalidf("days_ahead must be at most %d", MaxDaysAhead)
	}
	if req.MaxResults > MaxResultsCap {
		return nil, invalidf("max_results must be at most %d", MaxResultsCap)
	}
	if req.DaysAhead == 0 {
		req.DaysAhead = DefaultDaysAhead
	}
	if req.MaxResults == 0 {
		req.MaxResults = DefaultMaxResults
	}

	now := s.now().UTC()
	events, err := s.calendar.ListEvents(ctx, now, now.AddDate(0, 0, req.DaysAhead), int64(req.MaxResults))
	if err != nil {
		return nil, err
	}
	return &ListResult{Events: events}, nil
}

// CancelAppointment deletes the event and notifies its attendees.
func (s *Service) CancelAppointment(ctx context.Context, eventID string) (err error) {
	eventID = strings.TrimSpace(eventID)

	change := instrumentation.NewAppointmentChange(ctx, instrumentation.ChangeCancel, instrumentation.SourceFromContext(ctx))
	change.EventID = eventID
	defer func() { s.recordChange(ctx, change.Complete(err)) }()

	if eventID == "" {
		return RequiredError("event_id")
	}

	if err := s.calendar.DeleteEvent(ctx, eventID); err != nil {
		return mapNotFound(eventID, err)
	}
	return nil
}

// RescheduleRequest moves an existing event.
type RescheduleRequest struct {
	EventID  string
	NewStart string
	NewEnd   string
	TimeZone string
}

// RescheduleAppointment moves the event to the new times. All other fields
// are kept.
func (s *Service) RescheduleAppointment(ctx context.Context, req RescheduleRequest) (event *calendar.EventSummary, err error) {
	eventID := strings.TrimSpace(req.EventID)

	change := instrumentation.NewAppointmentChange(ctx, instrumentation.ChangeReschedule, instrumentation.SourceFromContext(ctx))
	change.EventID = eventID
	defer func() { s.recordChange(ctx, change.Complete(err)) }()

	if eventID == "" {
		return nil, RequiredError("event_id")
	}

	loc, err := LoadZone(req.TimeZone, s.config.DefaultTimeZone)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange("new_start_time", req.NewStart, "new_end_time", req.NewEnd, loc)
	if err != nil {
		return nil, err
	}
	change.Start, change.End = start, end

	// An explicit zone replaces the event's own; otherwise the event keeps it.
	timeZone := ""
	if strings.TrimSpace(req.TimeZone) != "" {
		timeZone = loc.String()
	}

	event, err = s.calendar.RescheduleEvent(ctx, eventID, start, end, timeZone)
	if err != nil {
		return nil, mapNotFound(eventID, err)
	}
	return event, nil
}

func (s *Service) recordChange(ctx context.Context, change *instrumentation.AppointmentChange) {
	s.metrics.RecordAppointmentChange(ctx, change.Operation, change.Status(), change.ClientEmail)
	s.audit.LogAppointmentChange(change)
}

func mapNotFound(eventID string, err error) error {
	if errors.Is(err, calendar.ErrEventNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}
	return err
}
