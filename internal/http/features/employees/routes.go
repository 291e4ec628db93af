package employees

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the employee CRUD routes. The caller is expected
// to have applied authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employees", h.List)
	r.Post("/employees", h.Create)
	r.Get("/employees/{id}", h.Get)
	r.Put("/employees/{id}", h.Update)
	r.Delete("/employees/{id}", h.Delete)
}

// RegisterUploadRoutes registers the image upload route. It is kept apart so
// the caller can give it a larger body limit than the JSON routes.
func (h *Handler) RegisterUploadRoutes(r chi.Router) {
	r.Post("/employees/addImage", h.AddImage)
}
