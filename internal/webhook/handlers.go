package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hemanthvallapani/voice-calendar/internal/appointments"
	"github.com/hemanthvallapani/voice-calendar/internal/instrumentation"
	"github.com/hemanthvallapani/voice-calendar/internal/logging"
	"github.com/hemanthvallapani/voice-calendar/internal/server"
)

// Handler serves the webhook endpoints.
type Handler struct {
	service *appointments.Service
	logger  *slog.Logger
}

// NewHandler creates a Handler backed by the service in sc.
func NewHandler(sc *server.ServerContext) *Handler {
	useJSONFieldNames()
	return &Handler{
		service: sc.Service(),
		logger:  sc.Logger(),
	}
}

// RegisterRoutes mounts the webhooks under /webhook.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/webhook")
	g.POST("/check-availability", h.CheckAvailability)
	g.POST("/create-event", h.CreateEvent)
	g.POST("/list-events", h.ListEvents)
	g.POST("/cancel-event", h.CancelEvent)
	g.POST("/reschedule-event", h.RescheduleEvent)
}

func requestContext(c *gin.Context) context.Context {
	return instrumentation.WithSource(c.Request.Context(), instrumentation.SourceWebhook)
}

// CheckAvailability handles POST /webhook/check-availability.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.service.CheckAvailability(requestContext(c), appointments.AvailabilityRequest{
		Date:     req.Date,
		TimeZone: req.TimeZone,
	})
	if err != nil {
		h.fail(c, "check_availability", err)
		return
	}

	slots := make([]SlotResponse, 0, len(result.Slots))
	for _, s := range result.Slots {
		slots = append(slots, SlotResponse{
			Start:   s.Start.Format(appointments.SlotLayout),
			End:     s.End.Format(appointments.SlotLayout),
			Display: appointments.FormatDisplay(s.Start, s.End),
		})
	}

	c.JSON(http.StatusOK, CheckAvailabilityResponse{
		Success:   true,
		Date:      result.Date.Format(appointments.DateLayout),
		FreeSlots: slots,
		Count:     len(slots),
		Message:   result.Message(),
	})
}

// CreateEvent handles POST /webhook/create-event.
func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	booking, err := h.service.CreateAppointment(requestContext(c), appointments.BookingRequest{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Start:       req.StartTime,
		End:         req.EndTime,
		Description: req.Description,
		TimeZone:    req.TimeZone,
	})
	if err != nil {
		h.fail(c, "create_event", err)
		return
	}

	c.JSON(http.StatusOK, CreateEventResponse{
		Success:     true,
		EventID:     booking.Event.ID,
		EventLink:   booking.Event.HTMLLink,
		ClientName:  booking.ClientName,
		ClientEmail: booking.ClientEmail,
		Message:     booking.Message(),
		Start:       booking.Event.RawStart,
		End:         booking.Event.RawEnd,
	})
}

// ListEvents handles POST /webhook/list-events. An empty body lists with
// the defaults.
func (h *Handler) ListEvents(c *gin.Context) {
	var req ListEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(c, err)
		return
	}

	result, err := h.service.ListAppointments(requestContext(c), appointments.ListRequest{
		DaysAhead:  req.DaysAhead,
		MaxResults: req.MaxResults,
	})
	if err != nil {
		h.fail(c, "list_events", err)
		return
	}

	events := make([]EventResponse, 0, len(result.Events))
	for _, e := range result.Events {
		events = append(events, EventResponse{
			ID:          e.ID,
			Title:       e.Title(),
			Description: e.Description,
			Start:       e.RawStart,
			End:         e.RawEnd,
			Link:        e.HTMLLink,
		})
	}

	c.JSON(http.StatusOK, ListEventsResponse{
		Success: true,
		Count:   len(events),
		Events:  events,
		Message: result.Message(),
	})
}

// CancelEvent handles POST /webhook/cancel-event.
func (h *Handler) CancelEvent(c *gin.Context) {
	var req CancelEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := h.service.CancelAppointment(requestContext(c), req.EventID); err != nil {
		h.fail(c, "cancel_event", err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Event cancelled successfully"})
}

// RescheduleEvent handles POST /webhook/reschedule-event.
func (h *Handler) RescheduleEvent(c *gin.Context) {
	var req RescheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	event, err := h.service.RescheduleAppointment(requestContext(c), appointments.RescheduleRequest{
		EventID:  req.EventID,
		NewStart: req.NewStartTime,
		NewEnd:   req.NewEndTime,
		TimeZone: req.TimeZone,
	})
	if err != nil {
		h.fail(c, "reschedule_event", err)
		return
	}

	c.JSON(http.StatusOK, RescheduleEventResponse{
		Success:  true,
		Message:  "Event rescheduled successfully",
		Title:    event.Summary,
		NewStart: event.RawStart,
		NewEnd:   event.RawEnd,
	})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
}

// fail maps service errors to status codes. Upstream failures are logged.
func (h *Handler) fail(c *gin.Context, operation string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, appointments.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, appointments.ErrNotFound):
		status = http.StatusNotFound
	default:
		h.logger.Error("webhook failed",
			logging.Operation("webhook."+operation),
			logging.RequestID(server.GetRequestID(c)),
			logging.Err(err))
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
