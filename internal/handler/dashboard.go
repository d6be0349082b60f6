package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/student-portal/internal/domain"
	"github.com/msomdec/student-portal/internal/service"
)

// DashboardHandler handles the authenticated dashboard and profile pages.
type DashboardHandler struct {
	profiles     *service.ProfileService
	auth         *service.AuthService
	cookieSecure bool
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(profiles *service.ProfileService, auth *service.AuthService, cookieSecure bool) *DashboardHandler {
	return &DashboardHandler{profiles: profiles, auth: auth, cookieSecure: cookieSecure}
}

type userPageData struct {
	User *domain.User
}

// HandleDashboard renders the dashboard for the logged-in student. A
// session whose user row has vanished is destroyed and the client is sent
// back to the login page.
// GET /dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	renderPage(w, http.StatusOK, "dashboard.html", userPageData{User: user})
}

// HandleProfilePage renders the profile form. Stale sessions get the same
// self-healing treatment as the dashboard.
// GET /dashboard/profile
func (h *DashboardHandler) HandleProfilePage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.loadUser(w, r)
	if !ok {
		return
	}
	renderPage(w, http.StatusOK, "profile.html", userPageData{User: user})
}

// loadUser resolves the session's user. On a stale session it destroys the
// session, clears the cookie and redirects to login; on store failure it
// renders the error page. Returns ok=false when a response was written.
func (h *DashboardHandler) loadUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	sess := SessionFromContext(r.Context())

	user, err := h.profiles.Get(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.auth.LogOut(r.Context(), sess.ID)
			clearSessionCookie(w, h.cookieSecure)
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return nil, false
		}
		slog.Error("load user for page", "error", err, "user_id", sess.UserID)
		renderError(w, http.StatusInternalServerError, "Error loading page")
		return nil, false
	}
	return user, true
}

type updateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HandleUpdateProfile overwrites the student's academic fields and responds
// with JSON; the page script consumes the result rather than a re-render.
// POST /dashboard/update
func (h *DashboardHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, updateResult{Message: "Invalid form submission"})
		return
	}

	err := h.profiles.Update(r.Context(), sess.UserID,
		r.PostFormValue("enrollmentNo"),
		r.PostFormValue("department"),
		r.PostFormValue("semester"),
		r.PostFormValue("cgpa"),
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, updateResult{Message: "Required fields are missing"})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusBadRequest, updateResult{Message: "Account no longer exists"})
		default:
			slog.Error("update profile", "error", err, "user_id", sess.UserID)
			writeJSON(w, http.StatusInternalServerError, updateResult{Message: "Error updating profile"})
		}
		return
	}

	writeJSON(w, http.StatusOK, updateResult{Success: true, Message: "Profile updated successfully"})
}
