package httpapi

import (
	"errors"
	"net/http"
	"time"

	"meetup/internal/store"
)

// dateLayout is the wire format for the from/to filter parameters.
const dateLayout = "2006-01-02"

type eventDetailResponse struct {
	store.Event
	SpotsLeft     int      `json:"spotsLeft"`
	AverageRating *float64 `json:"averageRating"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.EventFilter{
		Query:    query.Get("q"),
		City:     query.Get("city"),
		Category: query.Get("category"),
	}

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid from parameter, expected YYYY-MM-DD"})
			return
		}
		filter.From = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(dateLayout, toStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid to parameter, expected YYYY-MM-DD"})
			return
		}
		filter.To = &to
	}

	events, err := s.events.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Events []store.Event `json:"events"`
	}{Events: events})
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	cities, categories, err := s.events.Facets(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Cities     []string `json:"cities"`
		Categories []string `json:"categories"`
	}{Cities: cities, Categories: categories})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	event, err := s.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrEventNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	average, err := s.reviews.Average(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, eventDetailResponse{
		Event:         event,
		SpotsLeft:     event.SpotsLeft(),
		AverageRating: average,
	})
}
