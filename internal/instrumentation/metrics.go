package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrDomain    = "client_domain"
)

var (
	latencyBuckets  = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	upstreamBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
	slotBuckets     = []float64{0, 1, 2, 4, 8, 16, 32}
)

// Metrics records the service's counters and histograms. A zero Metrics is
// valid and records nothing.
type Metrics struct {
	httpRequests *timedCounter
	googleAPI    *timedCounter
	tools        *timedCounter

	oauthAuth    metric.Int64Counter
	oauthRefresh metric.Int64Counter

	availabilityChecks metric.Int64Counter
	freeSlots          metric.Int64Histogram
	appointmentChanges metric.Int64Counter

	// detailedLabels adds the client email domain to appointment metrics.
	detailedLabels bool
}

// timedCounter pairs a request counter with its duration histogram so both
// are always recorded with the same attributes.
type timedCounter struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

func (t *timedCounter) record(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	if t == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	t.total.Add(ctx, 1, opt)
	t.duration.Record(ctx, d.Seconds(), opt)
}

// instruments creates instruments on a meter, keeping every creation error.
type instruments struct {
	meter metric.Meter
	errs  []error
}

func (in *instruments) counter(name, description, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("failed to create %s counter: %w", name, err))
	}
	return c
}

func (in *instruments) timed(totalName, durationName, what, unit string, buckets []float64) *timedCounter {
	total := in.counter(totalName, "Total number of "+what, unit)
	d, err := in.meter.Float64Histogram(durationName,
		metric.WithDescription(what+" duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("failed to create %s histogram: %w", durationName, err))
	}
	return &timedCounter{total: total, duration: d}
}

// NewMetrics creates every instrument on meter.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	in := &instruments{meter: meter}

	m := &Metrics{
		httpRequests: in.timed("http_requests_total", "http_request_duration_seconds",
			"HTTP requests", "{request}", latencyBuckets),
		googleAPI: in.timed("google_api_operations_total", "google_api_operation_duration_seconds",
			"Google API operations", "{operation}", upstreamBuckets),
		tools: in.timed("mcp_tool_invocations_total", "mcp_tool_duration_seconds",
			"MCP tool invocations", "{invocation}", upstreamBuckets),

		oauthAuth:    in.counter("oauth_auth_total", "Total number of OAuth authorization code exchanges", "{attempt}"),
		oauthRefresh: in.counter("oauth_token_refresh_total", "Total number of OAuth token refresh attempts", "{attempt}"),

		availabilityChecks: in.counter("availability_checks_total", "Total number of availability checks", "{check}"),
		appointmentChanges: in.counter("appointment_changes_total",
			"Total number of appointment create, cancel and reschedule operations", "{change}"),

		detailedLabels: detailedLabels,
	}

	var err error
	m.freeSlots, err = meter.Int64Histogram("availability_free_slots",
		metric.WithDescription("Number of free slots returned per availability check"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(slotBuckets...),
	)
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("failed to create availability_free_slots histogram: %w", err))
	}

	if len(in.errs) > 0 {
		return nil, errors.Join(in.errs...)
	}
	return m, nil
}

// RecordHTTPRequest records a request against its route template.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	m.httpRequests.record(ctx, duration,
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
}

// RecordGoogleAPIOperation records one call to a Google API, for example
// service "calendar" and operation "freebusy".
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	m.googleAPI.record(ctx, duration,
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
}

// RecordToolInvocation records an MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.tools.record(ctx, duration,
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	)
}

// RecordOAuthAuth records an authorization code exchange.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuth != nil {
		m.oauthAuth.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	}
}

// RecordOAuthTokenRefresh records a refresh of the calendar access token.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthRefresh != nil {
		m.oauthRefresh.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
	}
}

// RecordAvailabilityCheck records one availability check and, on success,
// the number of free slots it produced.
func (m *Metrics) RecordAvailabilityCheck(ctx context.Context, status string, freeSlots int) {
	if m.availabilityChecks == nil {
		return
	}
	m.availabilityChecks.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	if status == StatusSuccess && m.freeSlots != nil {
		m.freeSlots.Record(ctx, int64(freeSlots))
	}
}

// RecordAppointmentChange records a create, cancel or reschedule.
// The client email is reduced to its domain and only attached when
// detailed labels are enabled.
func (m *Metrics) RecordAppointmentChange(ctx context.Context, operation, status, clientEmail string) {
	if m.appointmentChanges == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && clientEmail != "" {
		attrs = append(attrs, attribute.String(attrDomain, ClientDomain(clientEmail)))
	}
	m.appointmentChanges.Add(ctx, 1, metric.WithAttributes(attrs...))
}
