// Package calendar_tools exposes the appointment operations as MCP tools.
//
// The tools mirror the webhook endpoints: check_availability, create_event,
// list_events, cancel_event and reschedule_event. They call the same
// appointments service, so validation and messages are identical across
// both surfaces. Invalid input and upstream failures are reported as tool
// errors rather than protocol errors, letting the agent correct itself.
package calendar_tools
