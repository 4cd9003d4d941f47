package instrumentation

import "strings"

// ClientDomain reduces a client email to its lower-cased domain so metric
// labels stay bounded. Anything that is not user@domain maps to "unknown".
func ClientDomain(email string) string {
	_, domain, ok := strings.Cut(email, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return "unknown"
	}
	return strings.ToLower(domain)
}

// Google Calendar operation names used in metrics and span names.
const (
	OperationFreeBusy = "freebusy"
	OperationList     = "list"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationDelete   = "delete"
)

// Appointment change operations recorded by the booking audit log.
const (
	ChangeCreate     = "create"
	ChangeCancel     = "cancel"
	ChangeReschedule = "reschedule"
)
