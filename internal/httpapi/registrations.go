package httpapi

import (
	"errors"
	"net/http"

	"meetup/internal/store"
)

type registrationResponse struct {
	Message      string              `json:"message"`
	SpotsLeft    int                 `json:"spotsLeft"`
	Registration *store.Registration `json:"registration,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	reg, err := s.registrations.Register(r.Context(), token, eventID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		case errors.Is(err, store.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
		case errors.Is(err, store.ErrAlreadyRegistered):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "you are already registered for this event"})
		case errors.Is(err, store.ErrEventFull):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "event is fully booked"})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	spotsLeft, err := s.registrations.SpotsLeft(r.Context(), eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, registrationResponse{
		Message:      "registration confirmed",
		SpotsLeft:    spotsLeft,
		Registration: &reg,
	})
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	if err := s.registrations.Unregister(r.Context(), token, eventID); err != nil {
		switch {
		case errors.Is(err, store.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		case errors.Is(err, store.ErrEventNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
		case errors.Is(err, store.ErrNotRegistered):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "you are not registered for this event"})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	spotsLeft, err := s.registrations.SpotsLeft(r.Context(), eventID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, registrationResponse{
		Message:   "registration cancelled",
		SpotsLeft: spotsLeft,
	})
}

func (s *Server) handleRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	eventID, err := eventIDFromPath(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	registered, err := s.registrations.IsRegistered(r.Context(), token, eventID)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrUnauthorized) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Registered bool `json:"registered"`
	}{Registered: registered})
}
