package pages

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

func TestPages_Render(t *testing.T) {
	h, err := NewHandler(DefaultTemplates(), "")
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	tests := []struct {
		path string
		want string
	}{
		{"/", "<title>InsightGuardian</title>"},
		{"/login", `data-api="/api/auth/login"`},
		{"/register", `data-api="/api/register"`},
		{"/dashboard", "<h1>Dashboard</h1>"},
		{"/setup/activities", `value="weapons"`},
		{"/setup/employees", "data-employee-form"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q", ct)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
		})
	}
}

func TestPages_ShowsSignedInUser(t *testing.T) {
	h, err := NewHandler(DefaultTemplates(), "")
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &domain.Principal{
		ID: uuid.New(), Email: "ada@acme.com", Role: domain.RoleAdmin, OrganizationID: uuid.New(),
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "ada@acme.com") {
		t.Error("signed-in email not rendered")
	}
}

func TestPages_RegisterShowsPasswordHint(t *testing.T) {
	h, err := NewHandler(DefaultTemplates(), "Password must contain at least 12 characters")
	if err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/register", nil))
	if !strings.Contains(rec.Body.String(), `<p class="hint">Password must contain at least 12 characters</p>`) {
		t.Error("password hint not rendered on /register")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if strings.Contains(rec.Body.String(), "at least 12 characters") {
		t.Error("password hint rendered outside /register")
	}
}

func TestNewHandler_CustomTemplates(t *testing.T) {
	fsys := fstest.MapFS{
		"home.html": {Data: []byte(`<p>{{.Title}}</p>`)},
	}
	h, err := NewHandler(fsys, "")
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.render(rec, "home.html", PageData{Title: "<x>"})
	if got := rec.Body.String(); got != "<p>&lt;x&gt;</p>" {
		t.Errorf("body = %q", got)
	}
}

func TestNewHandler_NoTemplates(t *testing.T) {
	if _, err := NewHandler(fstest.MapFS{}, ""); err == nil {
		t.Error("expected error for empty template dir")
	}
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	http.StripPrefix("/static", StaticHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/subscriptions") {
		t.Error("unexpected app.js content")
	}
}
