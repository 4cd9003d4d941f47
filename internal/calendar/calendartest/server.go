// Package calendartest provides an in-memory Google Calendar API v3 server
// for tests.
//
// It implements the subset of endpoints the calendar client uses:
//
//   - POST   /freeBusy
//   - POST   /calendars/{calendarId}/events
//   - GET    /calendars/{calendarId}/events
//   - GET    /calendars/{calendarId}/events/{eventId}
//   - PUT    /calendars/{calendarId}/events/{eventId}
//   - DELETE /calendars/{calendarId}/events/{eventId}
//
// Requests without a bearer token are rejected with 401.
//
//	srv := calendartest.NewServer()
//	defer srv.Close()
//	client, err := calendar.NewClient(ctx,
//	    google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: calendartest.Token}},
//	    calendar.WithEndpoint(srv.Endpoint()))
package calendartest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Token is the access token tests should present. Any non-empty bearer
// token is accepted; this one is provided for convenience.
const Token = "test-access-token"

// Call records one request received by the server.
type Call struct {
	Method      string
	Path        string
	SendUpdates string
}

// Server is a fake Calendar API.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	events       map[string][]*calendar.Event
	busy         map[string][]*calendar.TimePeriod
	freeBusyErrs map[string]string
	lastFreeBusy *calendar.FreeBusyRequest
	calls        []Call
	failNext     int
	nextID       int
}

// NewServer starts a fake Calendar API server.
func NewServer() *Server {
	s := &Server{
		events:       make(map[string][]*calendar.Event),
		busy:         make(map[string][]*calendar.TimePeriod),
		freeBusyErrs: make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /freeBusy", s.handleFreeBusy)
	mux.HandleFunc("POST /calendars/{cal}/events", s.handleInsert)
	mux.HandleFunc("GET /calendars/{cal}/events", s.handleList)
	mux.HandleFunc("GET /calendars/{cal}/events/{id}", s.handleGet)
	mux.HandleFunc("PUT /calendars/{cal}/events/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /calendars/{cal}/events/{id}", s.handleDelete)

	s.Server = httptest.NewServer(s.middleware(mux))
	return s
}

// Endpoint returns the base URL to pass to calendar.WithEndpoint.
func (s *Server) Endpoint() string {
	return s.URL + "/"
}

// AddEvent stores ev in calendarID. An empty id is assigned.
func (s *Server) AddEvent(calendarID string, ev *calendar.Event) *calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(calendarID, ev)
}

// SetBusy sets the busy periods returned for calendarID, as RFC3339 pairs.
func (s *Server) SetBusy(calendarID string, periods ...[2]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy[calendarID] = nil
	for _, p := range periods {
		s.busy[calendarID] = append(s.busy[calendarID], &calendar.TimePeriod{
			Start: p[0].UTC().Format(time.RFC3339),
			End:   p[1].UTC().Format(time.RFC3339),
		})
	}
}

// SetFreeBusyError makes free/busy report reason as a per-calendar error.
func (s *Server) SetFreeBusyError(calendarID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freeBusyErrs[calendarID] = reason
}

// FailNext makes the next request fail with status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = status
}

// Events returns a copy of the events stored in calendarID.
func (s *Server) Events(calendarID string) []*calendar.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*calendar.Event(nil), s.events[calendarID]...)
}

// LastFreeBusy returns the most recent free/busy request body.
func (s *Server) LastFreeBusy() *calendar.FreeBusyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFreeBusy
}

// Calls returns every request received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); len(auth) <= len("Bearer ") {
			writeError(w, http.StatusUnauthorized, "authError", "Login Required.")
			return
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, SendUpdates: r.URL.Query().Get("sendUpdates")})
		status := s.failNext
		s.failNext = 0
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, "backendError", http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleFreeBusy(w http.ResponseWriter, r *http.Request) {
	var req calendar.FreeBusyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "parseError", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFreeBusy = &req

	resp := calendar.FreeBusyResponse{
		Kind:      "calendar#freeBusy",
		TimeMin:   req.TimeMin,
		TimeMax:   req.TimeMax,
		Calendars: make(map[string]calendar.FreeBusyCalendar),
	}
	for _, item := range req.Items {
		if reason, ok := s.freeBusyErrs[item.Id]; ok {
			resp.Calendars[item.Id] = calendar.FreeBusyCalendar{
				Errors: []*calendar.Error{{Domain: "global", Reason: reason}},
			}
			continue
		}
		resp.Calendars[item.Id] = calendar.FreeBusyCalendar{Busy: s.busy[item.Id]}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var ev calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "parseError", err.Error())
		return
	}
	if ev.Start == nil || ev.End == nil {
		writeError(w, http.StatusBadRequest, "required", "Missing end time.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ev.Id = ""
	writeJSON(w, http.StatusOK, s.store(r.PathValue("cal"), &ev))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	timeMin, _ := time.Parse(time.RFC3339, q.Get("timeMin"))
	timeMax, _ := time.Parse(time.RFC3339, q.Get("timeMax"))
	maxResults, _ := strconv.Atoi(q.Get("maxResults"))

	s.mu.Lock()
	var items []*calendar.Event
	for _, ev := range s.events[r.PathValue("cal")] {
		start, end := bounds(ev)
		if !timeMax.IsZero() && !start.Before(timeMax) {
			continue
		}
		if !timeMin.IsZero() && !end.After(timeMin) {
			continue
		}
		items = append(items, ev)
	}
	s.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		a, _ := bounds(items[i])
		b, _ := bounds(items[j])
		return a.Before(b)
	})
	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}

	writeJSON(w, http.StatusOK, calendar.Events{Kind: "calendar#events", Items: items})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ev := s.find(r.PathValue("cal"), r.PathValue("id"))
	if ev == nil {
		writeError(w, http.StatusNotFound, "notFound", "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var ev calendar.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "parseError", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cal, id := r.PathValue("cal"), r.PathValue("id")
	i, existing := s.find(cal, id)
	if existing == nil {
		writeError(w, http.StatusNotFound, "notFound", "Not Found")
		return
	}

	ev.Id = id
	ev.HtmlLink = existing.HtmlLink
	s.events[cal][i] = &ev
	writeJSON(w, http.StatusOK, &ev)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cal := r.PathValue("cal")
	i, ev := s.find(cal, r.PathValue("id"))
	if ev == nil {
		writeError(w, http.StatusGone, "deleted", "Resource has been deleted")
		return
	}
	s.events[cal] = append(s.events[cal][:i], s.events[cal][i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// store must be called with s.mu held.
func (s *Server) store(calendarID string, ev *calendar.Event) *calendar.Event {
	if ev.Id == "" {
		s.nextID++
		ev.Id = fmt.Sprintf("evt%03d", s.nextID)
	}
	if ev.HtmlLink == "" {
		ev.HtmlLink = "https://www.google.com/calendar/event?eid=" + ev.Id
	}
	if ev.Status == "" {
		ev.Status = "confirmed"
	}
	s.events[calendarID] = append(s.events[calendarID], ev)
	return ev
}

// find must be called with s.mu held.
func (s *Server) find(calendarID, id string) (int, *calendar.Event) {
	for i, ev := range s.events[calendarID] {
		if ev.Id == id {
			return i, ev
		}
	}
	return -1, nil
}

func bounds(ev *calendar.Event) (time.Time, time.Time) {
	return parse(ev.Start), parse(ev.End)
}

func parse(edt *calendar.EventDateTime) time.Time {
	if edt == nil {
		return time.Time{}
	}
	if edt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, edt.DateTime)
		return t
	}
	t, _ := time.Parse("2006-01-02", edt.Date)
	return t
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"errors":  []map[string]string{{"domain": "global", "reason": reason, "message": message}},
		},
	})
}
