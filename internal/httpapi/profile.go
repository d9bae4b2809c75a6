package httpapi

import (
	"errors"
	"net/http"
	"time"

	"meetup/internal/store"
)

func (s *Server) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	upcoming, past, err := s.profile.Registrations(r.Context(), token, time.Now())
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrUnauthorized) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Upcoming []store.Event `json:"upcoming"`
		Past     []store.Event `json:"past"`
	}{Upcoming: upcoming, Past: past})
}
