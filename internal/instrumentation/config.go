package instrumentation

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the name of the service (default: voice-calendar)
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// ServiceInstanceID is the unique instance identifier (default: hostname)
	ServiceInstanceID string

	// K8sNamespace is the Kubernetes namespace where the service is running
	K8sNamespace string

	// K8sPodName is the Kubernetes pod name
	K8sPodName string

	// Enabled determines if instrumentation is active (default: true)
	Enabled bool

	// MetricsExporter is one of "prometheus", "otlp", "stdout" (default: "prometheus")
	MetricsExporter string

	// TracingExporter is one of "otlp", "stdout", "none" (default: "none")
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint without protocol prefix,
	// e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure switches OTLP export to plain HTTP. Local development only.
	OTLPInsecure bool

	// TraceSamplingRate is the sampling rate for traces (0.0 to 1.0, default: 0.1)
	TraceSamplingRate float64

	// DetailedLabels adds high-cardinality labels such as the client email domain.
	DetailedLabels bool

	// AuditLogging configures the booking audit log.
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	// Enabled determines if audit logging is active (default: true)
	Enabled bool

	// IncludePII logs full client email addresses instead of a hashed identifier.
	IncludePII bool
}

// envDefaults holds the fallback for every environment key that has one.
// Unparseable values also fall back here.
var envDefaults = map[string]any{
	"OTEL_SERVICE_NAME":         DefaultServiceName,
	"INSTRUMENTATION_ENABLED":   true,
	"METRICS_EXPORTER":          ExporterPrometheus,
	"TRACING_EXPORTER":          ExporterNone,
	"OTEL_TRACES_SAMPLER_ARG":   0.1,
	"METRICS_DETAILED_LABELS":   false,
	"AUDIT_LOGGING_ENABLED":     true,
	"AUDIT_LOGGING_INCLUDE_PII": false,
}

// DefaultConfig reads the instrumentation settings from the environment.
func DefaultConfig() Config {
	env := viper.New()
	env.AutomaticEnv()
	for key, value := range envDefaults {
		env.SetDefault(key, value)
	}

	return Config{
		ServiceName:       env.GetString("OTEL_SERVICE_NAME"),
		ServiceVersion:    "unknown",
		ServiceInstanceID: env.GetString("OTEL_SERVICE_INSTANCE_ID"),
		K8sNamespace:      firstNonEmpty(env.GetString("K8S_NAMESPACE"), env.GetString("POD_NAMESPACE")),
		K8sPodName:        firstNonEmpty(env.GetString("K8S_POD_NAME"), env.GetString("HOSTNAME")),
		Enabled:           envBool(env, "INSTRUMENTATION_ENABLED"),
		MetricsExporter:   env.GetString("METRICS_EXPORTER"),
		TracingExporter:   env.GetString("TRACING_EXPORTER"),
		OTLPEndpoint:      env.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:      envBool(env, "OTEL_EXPORTER_OTLP_INSECURE"),
		TraceSamplingRate: envFloat(env, "OTEL_TRACES_SAMPLER_ARG"),
		DetailedLabels:    envBool(env, "METRICS_DETAILED_LABELS"),
		AuditLogging: AuditLoggingConfig{
			Enabled:    envBool(env, "AUDIT_LOGGING_ENABLED"),
			IncludePII: envBool(env, "AUDIT_LOGGING_INCLUDE_PII"),
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetricsExporters := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracingExporters := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

func envBool(env *viper.Viper, key string) bool {
	b, err := cast.ToBoolE(env.Get(key))
	if err != nil {
		return cast.ToBool(envDefaults[key])
	}
	return b
}

func envFloat(env *viper.Viper, key string) float64 {
	f, err := cast.ToFloat64E(env.Get(key))
	if err != nil {
		return cast.ToFloat64(envDefaults[key])
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Constants for metric label values.
const (
	DefaultServiceName = "voice-calendar"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// OAuth result values
	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"

	// ServiceCalendar is the only Google service this process talks to.
	ServiceCalendar = "calendar"

	// Request sources
	SourceWebhook = "webhook"
	SourceMCP     = "mcp"
	SourceCLI     = "cli"

	// Exporter types
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"

	DefaultMetricInterval = 10 * time.Second
)
