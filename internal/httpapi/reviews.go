package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"meetup/internal/store"
)

type reviewRequest struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	reviews, err := s.reviews.ListByEvent(r.Context(), eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	average, err := s.reviews.Average(r.Context(), eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Reviews       []store.Review `json:"reviews"`
		AverageRating *float64       `json:"averageRating"`
	}{Reviews: reviews, AverageRating: average})
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	review, err := s.reviews.Submit(r.Context(), eventID, req.Author, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidRating), errors.Is(err, store.ErrCommentTooShort):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, store.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, review)
}
