package main

import (
	"net/http"
	"strings"

	"meetup/internal/app/events"
	"meetup/internal/app/profile"
	"meetup/internal/app/registrations"
	"meetup/internal/app/reviews"
	"meetup/internal/app/users"
	"meetup/internal/httpapi"
	"meetup/internal/middleware"
	"meetup/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store) http.Handler {
	userSvc := users.New(dataStore)
	eventSvc := events.New(dataStore)
	registrationSvc := registrations.New(dataStore)
	reviewSvc := reviews.New(dataStore)
	profileSvc := profile.New(dataStore)

	routes := httpapi.New(userSvc, eventSvc, registrationSvc, reviewSvc, profileSvc).Routes()

	return middleware.Recovery(middleware.RequestLogging(withCORS(cfg.AllowedOrigins, routes)))
}

func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	originAllowed := func(origin string) bool {
		if len(allowedOrigins) == 0 || origin == "" {
			return false
		}
		for _, o := range allowedOrigins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
