package handler

import (
	"net/http"

	"github.com/msomdec/student-portal/internal/domain"
)

// HomeHandler handles the landing page and the catch-all 404.
type HomeHandler struct {
	sessions domain.SessionStore
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(sessions domain.SessionStore) *HomeHandler {
	return &HomeHandler{sessions: sessions}
}

// HandleHome renders the landing page, or sends logged-in students straight
// to their dashboard. Being the "GET /" catch-all, it also serves the 404
// page for unknown paths.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderError(w, http.StatusNotFound, "Page not found")
		return
	}

	if sess, err := sessionFromRequest(r, h.sessions); err == nil && sess != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	renderPage(w, http.StatusOK, "index.html", nil)
}
