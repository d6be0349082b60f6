package handler

import (
	"net/http"
	"time"

	"github.com/msomdec/student-portal/internal/domain"
	"github.com/msomdec/student-portal/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	profiles *service.ProfileService,
	limiter *service.LoginLimiter,
	sessions domain.SessionStore,
	cookieSecure bool,
	sessionTTL time.Duration,
) {
	authH := NewAuthHandler(auth, limiter, cookieSecure, sessionTTL)
	dashH := NewDashboardHandler(profiles, auth, cookieSecure)
	homeH := NewHomeHandler(sessions)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Anon-only pages bounce logged-in users to the dashboard.
	mux.Handle("GET /auth/signup", RedirectIfAuthenticated(sessions, http.HandlerFunc(authH.HandleSignupPage)))
	mux.Handle("POST /auth/signup", RedirectIfAuthenticated(sessions, http.HandlerFunc(authH.HandleSignup)))
	mux.Handle("GET /auth/login", RedirectIfAuthenticated(sessions, http.HandlerFunc(authH.HandleLoginPage)))
	mux.Handle("POST /auth/login", RedirectIfAuthenticated(sessions, http.HandlerFunc(authH.HandleLogin)))
	mux.HandleFunc("GET /auth/logout", authH.HandleLogout)

	mux.Handle("GET /dashboard", RequireSession(sessions, http.HandlerFunc(dashH.HandleDashboard)))
	mux.Handle("GET /dashboard/profile", RequireSession(sessions, http.HandlerFunc(dashH.HandleProfilePage)))
	mux.Handle("POST /dashboard/update", RequireSession(sessions, http.HandlerFunc(dashH.HandleUpdateProfile)))

	mux.HandleFunc("GET /", homeH.HandleHome)
}
