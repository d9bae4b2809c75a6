package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meetup/internal/store"
)

type stubUserService struct {
	signup func(ctx context.Context, email, password string) (store.Account, error)
	login  func(ctx context.Context, email, password string) (string, store.Account, error)
	me     func(ctx context.Context, token string) (store.Account, error)
}

func (s *stubUserService) Signup(ctx context.Context, email, password string) (store.Account, error) {
	return s.signup(ctx, email, password)
}

func (s *stubUserService) Login(ctx context.Context, email, password string) (string, store.Account, error) {
	return s.login(ctx, email, password)
}

func (s *stubUserService) Me(ctx context.Context, token string) (store.Account, error) {
	return s.me(ctx, token)
}

type stubEventService struct {
	list   func(ctx context.Context, filter store.EventFilter) ([]store.Event, error)
	get    func(ctx context.Context, id int64) (store.Event, error)
	facets func(ctx context.Context) ([]string, []string, error)
}

func (s *stubEventService) List(ctx context.Context, filter store.EventFilter) ([]store.Event, error) {
	return s.list(ctx, filter)
}

func (s *stubEventService) Get(ctx context.Context, id int64) (store.Event, error) {
	return s.get(ctx, id)
}

func (s *stubEventService) Facets(ctx context.Context) ([]string, []string, error) {
	return s.facets(ctx)
}

type stubRegistrationService struct {
	register     func(ctx context.Context, token string, eventID int64) (store.Registration, error)
	unregister   func(ctx context.Context, token string, eventID int64) error
	isRegistered func(ctx context.Context, token string, eventID int64) (bool, error)
	spotsLeft    func(ctx context.Context, eventID int64) (int, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, token string, eventID int64) (store.Registration, error) {
	return s.register(ctx, token, eventID)
}

func (s *stubRegistrationService) Unregister(ctx context.Context, token string, eventID int64) error {
	return s.unregister(ctx, token, eventID)
}

func (s *stubRegistrationService) IsRegistered(ctx context.Context, token string, eventID int64) (bool, error) {
	return s.isRegistered(ctx, token, eventID)
}

func (s *stubRegistrationService) SpotsLeft(ctx context.Context, eventID int64) (int, error) {
	return s.spotsLeft(ctx, eventID)
}

type stubReviewService struct {
	submit  func(ctx context.Context, eventID int64, author string, rating int, comment string) (store.Review, error)
	list    func(ctx context.Context, eventID int64) ([]store.Review, error)
	average func(ctx context.Context, eventID int64) (*float64, error)
}

func (s *stubReviewService) Submit(ctx context.Context, eventID int64, author string, rating int, comment string) (store.Review, error) {
	return s.submit(ctx, eventID, author, rating, comment)
}

func (s *stubReviewService) ListByEvent(ctx context.Context, eventID int64) ([]store.Review, error) {
	return s.list(ctx, eventID)
}

func (s *stubReviewService) Average(ctx context.Context, eventID int64) (*float64, error) {
	return s.average(ctx, eventID)
}

type stubProfileService struct {
	registrations func(ctx context.Context, token string, now time.Time) ([]store.Event, []store.Event, error)
}

func (s *stubProfileService) Registrations(ctx context.Context, token string, now time.Time) ([]store.Event, []store.Event, error) {
	return s.registrations(ctx, token, now)
}

func newTestServer() *Server {
	return New(
		&stubUserService{},
		&stubEventService{},
		&stubRegistrationService{},
		&stubReviewService{},
		&stubProfileService{},
	)
}

func doRequest(t *testing.T, s *Server, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, newTestServer(), http.MethodGet, "/health", "", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	decodeBody(t, rec, &body)

	if body.Status != "ok" {
		t.Fatalf("expected ok status, got %q", body.Status)
	}
	if _, err := time.Parse(time.RFC3339, body.Timestamp); err != nil {
		t.Fatalf("expected RFC3339 timestamp, got %q: %v", body.Timestamp, err)
	}
}

func TestSignupEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		signupErr  error
		wantStatus int
		wantError  string
	}{
		{
			name:       "created",
			body:       `{"email":"anna@example.se","password":"hemligt"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"anna@example.se","password":"hemligt"}`,
			signupErr:  store.ErrAccountExists,
			wantStatus: http.StatusConflict,
			wantError:  "email is already registered",
		},
		{
			name:       "invalid account",
			body:       `{"email":"anna","password":"x"}`,
			signupErr:  store.ErrInvalidAccount,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed JSON",
			body:       `{"email":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid JSON payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.users = &stubUserService{
				signup: func(_ context.Context, email, _ string) (store.Account, error) {
					if tc.signupErr != nil {
						return store.Account{}, tc.signupErr
					}
					return store.Account{ID: 1, Email: email}, nil
				},
			}

			rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/register", "", tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}

			if tc.wantError != "" {
				var body errorResponse
				decodeBody(t, rec, &body)
				if body.Error != tc.wantError {
					t.Fatalf("expected error %q, got %q", tc.wantError, body.Error)
				}
			}
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer()
	s.users = &stubUserService{
		login: func(_ context.Context, email, password string) (string, store.Account, error) {
			if email != "anna@example.se" || password != "hemligt" {
				return "", store.Account{}, store.ErrInvalidCredentials
			}
			return "session-token", store.Account{ID: 3, Email: email}, nil
		},
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", `{"email":"anna@example.se","password":"hemligt"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body authResponse
	decodeBody(t, rec, &body)
	if body.Token != "session-token" || body.User.ID != 3 {
		t.Fatalf("unexpected response: %#v", body)
	}
	if body.Message != "login successful" {
		t.Fatalf("unexpected message: %q", body.Message)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/auth/login", "", `{"email":"anna@example.se","password":"fel"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRegisterEndpointStatusMapping(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		registerErr error
		wantStatus  int
		wantError   string
	}{
		{name: "confirmed", token: "session-token", wantStatus: http.StatusCreated},
		{name: "missing token", token: "", wantStatus: http.StatusUnauthorized, wantError: "missing bearer token"},
		{name: "invalid token", token: "bad", registerErr: store.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "unknown event", token: "session-token", registerErr: store.ErrEventNotFound, wantStatus: http.StatusNotFound, wantError: "event not found"},
		{name: "already registered", token: "session-token", registerErr: store.ErrAlreadyRegistered, wantStatus: http.StatusConflict, wantError: "you are already registered for this event"},
		{name: "fully booked", token: "session-token", registerErr: store.ErrEventFull, wantStatus: http.StatusConflict, wantError: "event is fully booked"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.registrations = &stubRegistrationService{
				register: func(_ context.Context, _ string, eventID int64) (store.Registration, error) {
					if tc.registerErr != nil {
						return store.Registration{}, tc.registerErr
					}
					return store.Registration{ID: 1, EventID: eventID, UserID: 3, RegisteredAt: time.Now()}, nil
				},
				spotsLeft: func(_ context.Context, _ int64) (int, error) {
					return 4, nil
				},
			}

			rec := doRequest(t, s, http.MethodPost, "/api/v1/events/10/registration", tc.token, "")
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}

			if tc.wantError != "" {
				var body errorResponse
				decodeBody(t, rec, &body)
				if body.Error != tc.wantError {
					t.Fatalf("expected error %q, got %q", tc.wantError, body.Error)
				}
				return
			}

			var body registrationResponse
			decodeBody(t, rec, &body)
			if body.Message != "registration confirmed" || body.SpotsLeft != 4 || body.Registration == nil {
				t.Fatalf("unexpected response: %#v", body)
			}
		})
	}
}

func TestUnregisterEndpoint(t *testing.T) {
	s := newTestServer()
	s.registrations = &stubRegistrationService{
		unregister: func(_ context.Context, _ string, eventID int64) error {
			if eventID != 10 {
				return store.ErrNotRegistered
			}
			return nil
		},
		spotsLeft: func(_ context.Context, _ int64) (int, error) {
			return 5, nil
		},
	}

	rec := doRequest(t, s, http.MethodDelete, "/api/v1/events/10/registration", "session-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body registrationResponse
	decodeBody(t, rec, &body)
	if body.Message != "registration cancelled" || body.SpotsLeft != 5 {
		t.Fatalf("unexpected response: %#v", body)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/events/11/registration", "session-token", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var errBody errorResponse
	decodeBody(t, rec, &errBody)
	if errBody.Error != "you are not registered for this event" {
		t.Fatalf("unexpected error: %q", errBody.Error)
	}
}

func TestRegistrationStatusEndpoint(t *testing.T) {
	s := newTestServer()
	s.registrations = &stubRegistrationService{
		isRegistered: func(_ context.Context, _ string, eventID int64) (bool, error) {
			return eventID == 10, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/events/10/registration", "session-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Registered bool `json:"registered"`
	}
	decodeBody(t, rec, &body)
	if !body.Registered {
		t.Fatal("expected registered true")
	}
}

func TestListEventsForwardsFilter(t *testing.T) {
	var captured store.EventFilter

	s := newTestServer()
	s.events = &stubEventService{
		list: func(_ context.Context, filter store.EventFilter) ([]store.Event, error) {
			captured = filter
			return []store.Event{{ID: 1, Title: "React hooks på djupet"}}, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/events?q=hooks&city=Stockholm&category=Frontend&from=2026-09-01&to=2026-09-30", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Query != "hooks" || captured.City != "Stockholm" || captured.Category != "Frontend" {
		t.Fatalf("unexpected filter: %#v", captured)
	}
	if captured.From == nil || !captured.From.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", captured.From)
	}
	if captured.To == nil || !captured.To.Equal(time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected to: %v", captured.To)
	}

	var body struct {
		Events []store.Event `json:"events"`
	}
	decodeBody(t, rec, &body)
	if len(body.Events) != 1 {
		t.Fatalf("unexpected events: %#v", body.Events)
	}
}

func TestListEventsRejectsBadDate(t *testing.T) {
	s := newTestServer()
	s.events = &stubEventService{
		list: func(_ context.Context, _ store.EventFilter) ([]store.Event, error) {
			t.Fatal("list should not be called")
			return nil, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/events?from=september", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetEventDetail(t *testing.T) {
	avg := 4.3

	s := newTestServer()
	s.events = &stubEventService{
		get: func(_ context.Context, id int64) (store.Event, error) {
			if id != 10 {
				return store.Event{}, store.ErrEventNotFound
			}
			return store.Event{ID: 10, Title: "Go för backendutvecklare", Capacity: 30, RegisteredCount: 26}, nil
		},
	}
	s.reviews = &stubReviewService{
		average: func(_ context.Context, _ int64) (*float64, error) {
			return &avg, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/events/10", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		ID            int64    `json:"id"`
		SpotsLeft     int      `json:"spotsLeft"`
		AverageRating *float64 `json:"averageRating"`
	}
	decodeBody(t, rec, &body)
	if body.ID != 10 || body.SpotsLeft != 4 {
		t.Fatalf("unexpected response: %#v", body)
	}
	if body.AverageRating == nil || *body.AverageRating != 4.3 {
		t.Fatalf("unexpected average: %v", body.AverageRating)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/events/11", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFacetsEndpoint(t *testing.T) {
	s := newTestServer()
	s.events = &stubEventService{
		facets: func(_ context.Context) ([]string, []string, error) {
			return []string{"Göteborg", "Stockholm"}, []string{"Backend", "Frontend"}, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/events/facets", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Cities     []string `json:"cities"`
		Categories []string `json:"categories"`
	}
	decodeBody(t, rec, &body)
	if len(body.Cities) != 2 || body.Cities[1] != "Stockholm" {
		t.Fatalf("unexpected cities: %#v", body.Cities)
	}
	if len(body.Categories) != 2 || body.Categories[0] != "Backend" {
		t.Fatalf("unexpected categories: %#v", body.Categories)
	}
}

func TestSubmitReviewEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		submitErr  error
		wantStatus int
	}{
		{name: "created", body: `{"author":"Alice","rating":5,"comment":"toppenkväll"}`, wantStatus: http.StatusCreated},
		{name: "invalid rating", body: `{"rating":9,"comment":"toppenkväll"}`, submitErr: store.ErrInvalidRating, wantStatus: http.StatusBadRequest},
		{name: "short comment", body: `{"rating":4,"comment":"bra"}`, submitErr: store.ErrCommentTooShort, wantStatus: http.StatusBadRequest},
		{name: "unknown event", body: `{"rating":4,"comment":"toppenkväll"}`, submitErr: store.ErrEventNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.reviews = &stubReviewService{
				submit: func(_ context.Context, eventID int64, author string, rating int, comment string) (store.Review, error) {
					if tc.submitErr != nil {
						return store.Review{}, tc.submitErr
					}
					return store.Review{ID: 1, EventID: eventID, Author: author, Rating: rating, Comment: comment}, nil
				},
			}

			rec := doRequest(t, s, http.MethodPost, "/api/v1/events/10/reviews", "", tc.body)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListReviewsEndpoint(t *testing.T) {
	avg := 4.0

	s := newTestServer()
	s.reviews = &stubReviewService{
		list: func(_ context.Context, _ int64) ([]store.Review, error) {
			return []store.Review{
				{ID: 2, Rating: 5, Comment: "toppen"},
				{ID: 1, Rating: 3, Comment: "helt ok"},
			}, nil
		},
		average: func(_ context.Context, _ int64) (*float64, error) {
			return &avg, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/events/10/reviews", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Reviews       []store.Review `json:"reviews"`
		AverageRating *float64       `json:"averageRating"`
	}
	decodeBody(t, rec, &body)
	if len(body.Reviews) != 2 || body.Reviews[0].ID != 2 {
		t.Fatalf("unexpected reviews: %#v", body.Reviews)
	}
	if body.AverageRating == nil || *body.AverageRating != 4.0 {
		t.Fatalf("unexpected average: %v", body.AverageRating)
	}
}

func TestMyRegistrationsEndpoint(t *testing.T) {
	s := newTestServer()
	s.profile = &stubProfileService{
		registrations: func(_ context.Context, token string, _ time.Time) ([]store.Event, []store.Event, error) {
			if token != "session-token" {
				return nil, nil, store.ErrUnauthorized
			}
			return []store.Event{{ID: 3}}, []store.Event{{ID: 1}, {ID: 2}}, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/me/registrations", "session-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Upcoming []store.Event `json:"upcoming"`
		Past     []store.Event `json:"past"`
	}
	decodeBody(t, rec, &body)
	if len(body.Upcoming) != 1 || len(body.Past) != 2 {
		t.Fatalf("unexpected partitions: %#v", body)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/me/registrations", "other-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/me/registrations", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMeEndpoint(t *testing.T) {
	s := newTestServer()
	s.users = &stubUserService{
		me: func(_ context.Context, token string) (store.Account, error) {
			if token != "session-token" {
				return store.Account{}, store.ErrUnauthorized
			}
			return store.Account{ID: 3, Email: "anna@example.se"}, nil
		},
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/me", "session-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body userPayload
	decodeBody(t, rec, &body)
	if body.ID != 3 || body.Email != "anna@example.se" {
		t.Fatalf("unexpected payload: %#v", body)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "Bearer abc123", want: "abc123"},
		{header: "bearer abc123", want: "abc123"},
		{header: "Basic abc123", want: ""},
		{header: "Bearer", want: ""},
	}

	for _, tc := range tests {
		if got := parseBearerToken(tc.header); got != tc.want {
			t.Errorf("parseBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
