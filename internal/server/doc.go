// Package server assembles the HTTP side of the service.
//
// # Key Components
//
// ServerContext carries the appointments service together with the
// metrics recorder, audit logger and logger shared by the webhook handlers
// and the MCP tools.
//
// NewRouter builds the gin engine used for every inbound request. Its
// middleware chain is, in order: panic recovery, request ids, slog access
// logging with HTTP metrics, CORS and a per-IP token bucket rate limiter.
// The router also serves the health endpoints and an HTML index page.
//
// HealthChecker implements /health for the voice platform and the
// Kubernetes probes /healthz and /readyz. Readiness fails once shutdown
// begins so that load balancers drain the pod first.
//
// RegisterMCPEndpoint mounts the MCP streamable HTTP transport at /mcp on
// the same router, optionally behind a static bearer token.
//
// MetricsServer exposes Prometheus metrics on a dedicated port.
package server
