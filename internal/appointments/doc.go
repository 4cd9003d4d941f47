// Package appointments implements the booking operations behind the voice
// agent webhooks and MCP tools.
//
// A Service resolves caller input (natural-language dates, local times,
// IANA zones) into typed values, asks the calendar for busy intervals and
// runs the availability engine over the configured working day. Create,
// cancel and reschedule are passed through to the calendar with invites
// sent to every attendee.
//
// Errors fall into three groups:
//
//   - ErrValidation for bad caller input, including engine rejections
//     (which also match availability.ErrInvalidArgument)
//   - ErrNotFound when the calendar has no event with the given id
//   - anything else is an upstream failure
package appointments
