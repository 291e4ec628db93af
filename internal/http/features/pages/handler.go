// Package pages renders the minimal server-side page shell. The pages only
// load the browser scripts that call the JSON API.
package pages

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

//go:embed templates/*.html static
var embedded embed.FS

// DefaultTemplates returns the built-in templates.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Handler handles page rendering.
type Handler struct {
	templates    *template.Template
	passwordHint string
}

// NewHandler parses every *.html template in fsys. Pages are executed by file
// name and share the "header" and "footer" blocks. passwordHint is shown on
// the registration page.
func NewHandler(fsys fs.FS, passwordHint string) (*Handler, error) {
	tmpl, err := template.ParseFS(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	return &Handler{
		templates:    tmpl,
		passwordHint: passwordHint,
	}, nil
}

// PageData holds data for template rendering.
type PageData struct {
	Title        string
	User         *domain.Principal
	Activities   []domain.Activity
	PasswordHint string
}

func (h *Handler) page(tmpl, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: title}
		data.User, _ = middleware.GetPrincipal(r.Context())
		switch tmpl {
		case "activities.html":
			data.Activities = domain.ActivityCatalog()
		case "register.html":
			data.PasswordHint = h.passwordHint
		}
		h.render(w, tmpl, data)
	}
}

func (h *Handler) render(w http.ResponseWriter, tmpl string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, tmpl, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// StaticHandler serves the embedded browser assets.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// RegisterRoutes registers the page routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.page("home.html", "InsightGuardian"))
	r.Get("/login", h.page("login.html", "Sign In"))
	r.Get("/register", h.page("register.html", "Register"))
	r.Get("/dashboard", h.page("dashboard.html", "Dashboard"))
	r.Get("/setup/activities", h.page("activities.html", "Choose Activities"))
	r.Get("/setup/employees", h.page("employees.html", "Employees"))
}
