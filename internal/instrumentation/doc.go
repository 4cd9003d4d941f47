// Package instrumentation provides OpenTelemetry metrics and tracing plus the
// appointment audit log.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: webhook and MCP HTTP traffic
//   - google_api_operations_total, google_api_operation_duration_seconds: Calendar API calls
//   - oauth_auth_total, oauth_token_refresh_total: credential activity
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: MCP tool calls
//   - availability_checks_total, availability_free_slots: free-slot lookups
//   - appointment_changes_total: create, cancel and reschedule outcomes
//
// Metrics are exported to Prometheus by default and served by the dedicated
// metrics server; OTLP and stdout exporters are available for both metrics
// and traces.
//
// # Configuration
//
// DefaultConfig reads INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_TRACES_SAMPLER_ARG,
// OTEL_SERVICE_NAME, METRICS_DETAILED_LABELS and the AUDIT_LOGGING_* variables.
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar,
//		instrumentation.OperationFreeBusy, instrumentation.StatusSuccess, time.Since(start))
package instrumentation
