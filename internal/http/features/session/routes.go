package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers session routes. authMiddleware guards the
// session introspection endpoint.
func (h *Handler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/auth/logout", h.Logout)
	r.With(authMiddleware).Get("/auth/session", h.Session)
}
