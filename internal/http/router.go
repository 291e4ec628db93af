package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/internal/http/features/employees"
	"github.com/insightguardian/insightguardian/internal/http/features/pages"
	"github.com/insightguardian/insightguardian/internal/http/features/password"
	"github.com/insightguardian/insightguardian/internal/http/features/session"
	"github.com/insightguardian/insightguardian/internal/http/features/subscriptions"
	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/domain"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

// multipartOverhead is added to the upload limit to leave room for the
// multipart framing around the file.
const multipartOverhead = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger           *slog.Logger
	PasswordService  *auth.PasswordService
	SessionService   *auth.SessionService
	WorkspaceService *workspace.Service
	Uploader         employees.Uploader
	// UploadsHandler serves locally stored images under /uploads; nil when
	// images live in a bucket.
	UploadsHandler  http.Handler
	Store           Pinger
	ServeUI         bool
	Templates       fs.FS
	RateLimitConfig config.RateLimitConfig
	SecurityHeaders config.SecurityHeadersConfig
	Validation      config.ValidationConfig
	CookieSecure    bool
	// TrustProxy rewrites RemoteAddr from forwarding headers.
	TrustProxy bool
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))

	r.Get("/health", healthHandler(cfg.Store, cfg.Logger))

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)
	requireAuth := middleware.Auth(cfg.SessionService)

	passwordHandler := password.NewHandler(cfg.Logger, cfg.PasswordService, cfg.SessionService, cfg.CookieSecure)
	sessionHandler := session.NewHandler(cfg.CookieSecure)
	employeesHandler := employees.NewHandler(cfg.Logger, cfg.WorkspaceService, cfg.Uploader, cfg.Validation.MaxUploadSize)
	subscriptionsHandler := subscriptions.NewHandler(cfg.Logger, cfg.WorkspaceService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxRequestBodySize))

			r.Group(func(r chi.Router) {
				r.Use(rateLimiters.Auth)
				passwordHandler.RegisterRoutes(r)
			})
			sessionHandler.RegisterRoutes(r, requireAuth)
			r.Get("/activities", subscriptionsHandler.Activities)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				employeesHandler.RegisterRoutes(r)
				subscriptionsHandler.RegisterRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.Use(rateLimiters.Upload)
			r.Use(middleware.RequestSizeLimit(cfg.Validation.MaxUploadSize + multipartOverhead))
			employeesHandler.RegisterUploadRoutes(r)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.Error(w, http.StatusNotFound, "not found")
		})
	})

	if cfg.UploadsHandler != nil {
		r.Mount("/uploads", http.StripPrefix("/uploads", cfg.UploadsHandler))
	}

	// Page shell (if UI is enabled)
	if cfg.ServeUI {
		templates := cfg.Templates
		if templates == nil {
			templates = pages.DefaultTemplates()
		}
		pagesHandler, err := pages.NewHandler(templates, cfg.PasswordService.PasswordRequirements())
		if err != nil {
			cfg.Logger.Error("failed to load page templates", "error", err)
		} else {
			r.Mount("/static", http.StripPrefix("/static", pages.StaticHandler()))
			gate := middleware.Gate(cfg.SessionService)
			r.Group(func(r chi.Router) {
				r.Use(gate)
				pagesHandler.RegisterRoutes(r)
			})
			// Unknown page paths still pass the gate before the 404.
			r.NotFound(gate(http.NotFoundHandler()).ServeHTTP)
		}
	}

	return r
}

func healthHandler(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
