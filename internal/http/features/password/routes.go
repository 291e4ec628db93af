package password

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers registration and login routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/auth/login", h.Login)
}
