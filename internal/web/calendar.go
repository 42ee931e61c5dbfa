package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jazzy/internal/ics"
	"jazzy/internal/logger"
	"jazzy/internal/model"
)

// eventsResponse is the JSON response shape for the calendar endpoint. An
// empty day serializes as an empty list, never null.
type eventsResponse struct {
	Events []model.CalendarEvent `json:"events"`
}

// handleCalendarDay returns the agenda for one source and one local date.
//
// GET /api/calendar/{source}?date=YYYY-MM-DD
//   - source: configured feed name (e.g. "work", "family")
//   - date:   target local date; omitted means today in the reference timezone
func (s *Server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	if s.svc.Calendar == nil {
		serviceUnavailable(w)
		return
	}

	source := chi.URLParam(r, "source")

	var target *ics.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := ics.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		target = &d
	}

	events, err := s.svc.Calendar.Day(r.Context(), source, target)
	switch {
	case errors.Is(err, ics.ErrUnknownSource):
		writeError(w, http.StatusNotFound, "unknown calendar source")
		return
	case errors.Is(err, ics.ErrUpstreamUnavailable):
		logger.C(r.Context()).Error().Err(err).Str("source", source).Msg("calendar feed fetch failed")
		writeError(w, http.StatusBadGateway, "failed to fetch calendar")
		return
	case err != nil:
		logger.C(r.Context()).Error().Err(err).Str("source", source).Msg("calendar request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if events == nil {
		events = []model.CalendarEvent{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}
