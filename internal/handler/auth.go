package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/msomdec/student-portal/internal/domain"
	"github.com/msomdec/student-portal/internal/service"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	auth         *service.AuthService
	limiter      *service.LoginLimiter
	cookieSecure bool
	sessionTTL   time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, limiter *service.LoginLimiter, cookieSecure bool, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		limiter:      limiter,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

// HandleSignupPage renders the signup form.
// GET /auth/signup
func (h *AuthHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "signup.html", signupPageData{})
}

type signupPageData struct {
	Error   string
	Success string
}

// HandleSignup processes a signup form post and re-renders the form with
// either an error or a success note. It never logs the user in.
// POST /auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderPage(w, http.StatusBadRequest, "signup.html", signupPageData{Error: "Invalid form submission."})
		return
	}

	_, err := h.auth.SignUp(r.Context(),
		r.PostFormValue("firstname"),
		r.PostFormValue("lastname"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
		r.PostFormValue("confirmPassword"),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			renderPage(w, http.StatusBadRequest, "signup.html", signupPageData{
				Error: "Email already registered. Please login or use a different email.",
			})
		case errors.Is(err, domain.ErrInvalidInput):
			renderPage(w, http.StatusBadRequest, "signup.html", signupPageData{Error: err.Error()})
		default:
			slog.Error("signup", "error", err)
			renderPage(w, http.StatusInternalServerError, "signup.html", signupPageData{
				Error: "An error occurred during registration. Please try again.",
			})
		}
		return
	}

	renderPage(w, http.StatusCreated, "signup.html", signupPageData{
		Success: "Registration successful! Please login.",
	})
}

// HandleLoginPage renders the login form.
// GET /auth/login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, http.StatusOK, "login.html", loginPageData{})
}

type loginPageData struct {
	Error string
}

// HandleLogin verifies credentials, establishes a session and redirects to
// the dashboard. Unknown email and wrong password produce the same message.
// POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.limiter.Allow(clientKey(r)) {
		renderPage(w, http.StatusTooManyRequests, "login.html", loginPageData{
			Error: "Too many login attempts. Please wait and try again.",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		renderPage(w, http.StatusBadRequest, "login.html", loginPageData{Error: "Invalid form submission."})
		return
	}

	sess, err := h.auth.LogIn(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			renderPage(w, http.StatusBadRequest, "login.html", loginPageData{Error: err.Error()})
		case errors.Is(err, domain.ErrUnauthorized):
			renderPage(w, http.StatusUnauthorized, "login.html", loginPageData{Error: "Invalid email or password"})
		default:
			slog.Error("login", "error", err)
			renderPage(w, http.StatusInternalServerError, "login.html", loginPageData{
				Error: "An error occurred during login. Please try again.",
			})
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL.Seconds()),
	})

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleLogout destroys the session and redirects home. It succeeds from
// the client's point of view no matter what.
// GET /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		h.auth.LogOut(r.Context(), cookie.Value)
	}
	clearSessionCookie(w, h.cookieSecure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// clientKey identifies the caller for rate limiting.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
