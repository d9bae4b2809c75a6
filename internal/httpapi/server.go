// Package httpapi wires HTTP handlers to the application services.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"meetup/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, email, password string) (store.Account, error)
	Login(ctx context.Context, email, password string) (string, store.Account, error)
	Me(ctx context.Context, token string) (store.Account, error)
}

// EventService exposes catalog browsing and filtering workflows.
type EventService interface {
	List(ctx context.Context, filter store.EventFilter) ([]store.Event, error)
	Get(ctx context.Context, id int64) (store.Event, error)
	Facets(ctx context.Context) (cities, categories []string, err error)
}

// RegistrationService describes the registration ledger workflows.
type RegistrationService interface {
	Register(ctx context.Context, token string, eventID int64) (store.Registration, error)
	Unregister(ctx context.Context, token string, eventID int64) error
	IsRegistered(ctx context.Context, token string, eventID int64) (bool, error)
	SpotsLeft(ctx context.Context, eventID int64) (int, error)
}

// ReviewService describes review submission and aggregation workflows.
type ReviewService interface {
	Submit(ctx context.Context, eventID int64, author string, rating int, comment string) (store.Review, error)
	ListByEvent(ctx context.Context, eventID int64) ([]store.Review, error)
	Average(ctx context.Context, eventID int64) (*float64, error)
}

// ProfileService derives the user's upcoming/past registration view.
type ProfileService interface {
	Registrations(ctx context.Context, token string, now time.Time) (upcoming, past []store.Event, err error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users         UserService
	events        EventService
	registrations RegistrationService
	reviews       ReviewService
	profile       ProfileService
}

// New configures a Server with the given services.
func New(
	users UserService,
	events EventService,
	registrations RegistrationService,
	reviews ReviewService,
	profile ProfileService,
) *Server {
	return &Server{
		users:         users,
		events:        events,
		registrations: registrations,
		reviews:       reviews,
		profile:       profile,
	}
}

// Routes exposes the HTTP handlers for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/auth/register", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/me", s.handleMe)
	mux.HandleFunc("GET /api/v1/me/registrations", s.handleMyRegistrations)

	mux.HandleFunc("GET /api/v1/events", s.handleListEvents)
	mux.HandleFunc("GET /api/v1/events/facets", s.handleFacets)
	mux.HandleFunc("GET /api/v1/events/{id}", s.handleGetEvent)

	mux.HandleFunc("POST /api/v1/events/{id}/registration", s.handleRegister)
	mux.HandleFunc("DELETE /api/v1/events/{id}/registration", s.handleUnregister)
	mux.HandleFunc("GET /api/v1/events/{id}/registration", s.handleRegistrationStatus)

	mux.HandleFunc("GET /api/v1/events/{id}/reviews", s.handleListReviews)
	mux.HandleFunc("POST /api/v1/events/{id}/reviews", s.handleSubmitReview)

	return mux
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    userPayload `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	account, err := s.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAccountExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "email is already registered"})
		case errors.Is(err, store.ErrInvalidAccount):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "registration successful",
		User:    userPayload{ID: account.ID, Email: account.Email},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, account, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "login successful",
		Token:   token,
		User:    userPayload{ID: account.ID, Email: account.Email},
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	account, err := s.users.Me(r.Context(), token)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrUnauthorized) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, userPayload{ID: account.ID, Email: account.Email})
}

func eventIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
