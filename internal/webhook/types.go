package webhook

// CheckAvailabilityRequest is the body of POST /webhook/check-availability.
type CheckAvailabilityRequest struct {
	Date     string `json:"date" binding:"required"`
	TimeZone string `json:"timezone"`
}

// SlotResponse is one free slot.
type SlotResponse struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Display string `json:"display"`
}

// CheckAvailabilityResponse lists the free slots of a day.
type CheckAvailabilityResponse struct {
	Success   bool           `json:"success"`
	Date      string         `json:"date"`
	FreeSlots []SlotResponse `json:"free_slots"`
	Count     int            `json:"count"`
	Message   string         `json:"message"`
}

// CreateEventRequest is the body of POST /webhook/create-event.
type CreateEventRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientEmail string `json:"client_email" binding:"required,email"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	Description string `json:"description"`
	TimeZone    string `json:"timezone"`
}

// CreateEventResponse confirms a booking.
type CreateEventResponse struct {
	Success     bool   `json:"success"`
	EventID     string `json:"event_id"`
	EventLink   string `json:"event_link"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Message     string `json:"message"`
	Start       string `json:"start"`
	End         string `json:"end"`
}

// ListEventsRequest is the body of POST /webhook/list-events. Zero values
// mean 7 days and 10 results.
type ListEventsRequest struct {
	DaysAhead  int `json:"days_ahead" binding:"gte=0,lte=365"`
	MaxResults int `json:"max_results" binding:"gte=0,lte=250"`
}

// EventResponse is one upcoming event.
type EventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Link        string `json:"link"`
}

// ListEventsResponse lists upcoming events.
type ListEventsResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Events  []EventResponse `json:"events"`
	Message string          `json:"message"`
}

// CancelEventRequest is the body of POST /webhook/cancel-event.
type CancelEventRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// RescheduleEventRequest is the body of POST /webhook/reschedule-event.
type RescheduleEventRequest struct {
	EventID      string `json:"event_id" binding:"required"`
	NewStartTime string `json:"new_start_time" binding:"required"`
	NewEndTime   string `json:"new_end_time" binding:"required"`
	TimeZone     string `json:"timezone"`
}

// RescheduleEventResponse reports the new times.
type RescheduleEventResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Title    string `json:"title"`
	NewStart string `json:"new_start"`
	NewEnd   string `json:"new_end"`
}

// MessageResponse is a bare success message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is returned for every failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
