package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"github.com/hemanthvallapani/voice-calendar/internal/logging"
)

// AppointmentChange describes one create, cancel or reschedule for the audit log.
//
// ClientEmail is PII. AuditLogger only writes it verbatim when configured
// with IncludePII; otherwise it is replaced by a hash.
type AppointmentChange struct {
	Operation   string // ChangeCreate, ChangeCancel or ChangeReschedule
	Source      string // SourceWebhook, SourceMCP or SourceCLI
	EventID     string
	ClientEmail string
	Start       time.Time
	End         time.Time

	Success bool
	Error   string

	TraceID string
}

type sourceKey struct{}

// WithSource tags ctx with the surface a request arrived on.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFromContext returns the source set by WithSource, or "".
func SourceFromContext(ctx context.Context) string {
	source, _ := ctx.Value(sourceKey{}).(string)
	return source
}

// NewAppointmentChange starts an audit record for operation.
func NewAppointmentChange(ctx context.Context, operation, source string) *AppointmentChange {
	return &AppointmentChange{
		Operation: operation,
		Source:    source,
		TraceID:   TraceID(ctx),
	}
}

// Status returns "success" or "error".
func (c *AppointmentChange) Status() string {
	if c.Success {
		return StatusSuccess
	}
	return StatusError
}

// Complete records the outcome. A nil err marks the change successful.
func (c *AppointmentChange) Complete(err error) *AppointmentChange {
	c.Success = err == nil
	if err != nil {
		c.Error = err.Error()
	}
	return c
}

func (c *AppointmentChange) attrs(includePII bool) []any {
	attrs := []any{
		slog.String("operation", c.Operation),
		slog.Bool("success", c.Success),
	}

	if c.Source != "" {
		attrs = append(attrs, slog.String("source", c.Source))
	}
	if c.EventID != "" {
		attrs = append(attrs, logging.EventID(c.EventID))
	}
	if c.ClientEmail != "" {
		if includePII {
			attrs = append(attrs, slog.String("client_email", c.ClientEmail))
		} else {
			attrs = append(attrs, logging.UserHash(c.ClientEmail))
		}
	}
	if !c.Start.IsZero() {
		attrs = append(attrs, slog.Time("start", c.Start))
	}
	if !c.End.IsZero() {
		attrs = append(attrs, slog.Time("end", c.End))
	}
	if c.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", c.TraceID))
	}
	if c.Error != "" {
		attrs = append(attrs, slog.String("error", c.Error))
	}

	return attrs
}

// AuditLogger writes one structured line per appointment change.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger creates an AuditLogger from config. A nil logger uses slog.Default().
func NewAuditLogger(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger.With(slog.String("log_type", "audit")),
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// LogAppointmentChange writes c. Failures are logged at warn level.
// A nil receiver is a no-op.
func (al *AuditLogger) LogAppointmentChange(c *AppointmentChange) {
	if al == nil || !al.enabled || c == nil {
		return
	}

	if c.Success {
		al.logger.Info("appointment_changed", c.attrs(al.includePII)...)
	} else {
		al.logger.Warn("appointment_change_failed", c.attrs(al.includePII)...)
	}
}
