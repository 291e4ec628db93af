// Package guardian embeds the InsightGuardian control plane API in another
// Go program.
//
// Basic usage:
//
//	db, _ := sql.Open("postgres", "postgres://localhost/myapp?sslmode=disable")
//
//	g, err := guardian.New(guardian.Config{
//	    DB:        db,
//	    JWTSecret: "your-secret-key-at-least-32-chars",
//	    Uploader:  bucket,
//	})
//	if err != nil {
//	    log.Fatal(err) // Will fail if migrations haven't been run
//	}
//
//	r := chi.NewRouter()
//	r.Mount("/", g.Handler())
//	http.ListenAndServe(":8080", r)
//
// Without a DB the accounts and workspace data live in memory.
package guardian

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/internal/datastore"
	httpserver "github.com/insightguardian/insightguardian/internal/http"
	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/domain"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

// Uploader stores an uploaded image and returns its public URL.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config holds the configuration for an embedded control plane.
type Config struct {
	// DB is a migrated Postgres connection. Nil keeps data in memory.
	DB *sql.DB

	// JWTSecret signs session tokens (required, min 32 chars).
	JWTSecret string

	// JWTIssuer is the issuer claim in session tokens (default: "insightguardian").
	JWTIssuer string

	// SessionTTL is the lifetime of a session (default: 24 hours).
	SessionTTL time.Duration

	// Uploader receives employee images (required).
	Uploader Uploader

	// MaxUploadSize caps an image upload in bytes (default: 10 MiB).
	MaxUploadSize int64

	// ServeUI mounts the page shell alongside the API.
	ServeUI bool

	// CookieSecure marks the session cookie Secure.
	CookieSecure bool

	// Logger is the structured logger (default: JSON to stdout).
	Logger *slog.Logger
}

// Guardian is an assembled control plane.
type Guardian struct {
	config    Config
	backend   *datastore.Backend
	sessions  *auth.SessionService
	passwords *auth.PasswordService
	workspace *workspace.Service
	handler   http.Handler
}

// New validates cfg and wires the services. With a DB it checks that the
// schema has been migrated.
func New(cfg Config) (*Guardian, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	backend := datastore.Memory()
	if cfg.DB != nil {
		if err := validateSchema(cfg.DB); err != nil {
			return nil, err
		}
		backend = datastore.Postgres(cfg.DB)
	}

	policy := auth.NewPasswordPolicy(config.PasswordPolicyConfig{MinLength: 8})
	g := &Guardian{
		config:    cfg,
		backend:   backend,
		passwords: auth.NewPasswordService(backend.Accounts, policy, true, false),
		sessions: auth.NewSessionService(auth.SessionConfig{
			AccessTokenTTL: cfg.SessionTTL,
			JWTSecret:      []byte(cfg.JWTSecret),
			Issuer:         cfg.JWTIssuer,
		}),
		workspace: workspace.NewService(backend.Employees, backend.Subscriptions),
	}

	g.handler = httpserver.NewRouter(httpserver.RouterConfig{
		Logger:           cfg.Logger,
		PasswordService:  g.passwords,
		SessionService:   g.sessions,
		WorkspaceService: g.workspace,
		Uploader:         cfg.Uploader,
		Store:            backend,
		ServeUI:          cfg.ServeUI,
		Validation: config.ValidationConfig{
			MaxRequestBodySize:    1 << 20,
			MaxUploadSize:         cfg.MaxUploadSize,
			StrictEmailValidation: true,
		},
		CookieSecure: cfg.CookieSecure,
	})

	return g, nil
}

// Handler returns the API (and the page shell when enabled) with /health.
func (g *Guardian) Handler() http.Handler {
	return g.handler
}

// AuthMiddleware returns middleware that validates session tokens.
// Use this to protect your own routes:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(g.AuthMiddleware())
//	    r.Get("/protected", handler)
//	})
func (g *Guardian) AuthMiddleware() func(http.Handler) http.Handler {
	return middleware.Auth(g.sessions)
}

// Workspace returns the tenant-scoped employee and subscription service.
func (g *Guardian) Workspace() *workspace.Service {
	return g.workspace
}

// Principal extracts the signed-in user from a request.
// Use after AuthMiddleware:
//
//	p, ok := guardian.Principal(r)
func Principal(r *http.Request) (*domain.Principal, bool) {
	return middleware.GetPrincipal(r.Context())
}

func validateConfig(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("guardian: JWTSecret is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("guardian: JWTSecret must be at least 32 characters")
	}
	if cfg.Uploader == nil {
		return errors.New("guardian: Uploader is required")
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "insightguardian"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = auth.DefaultAccessTokenTTL
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 10 << 20
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
}

// validateSchema checks that required database tables exist.
func validateSchema(db *sql.DB) error {
	requiredTables := []string{"organizations", "users", "employees", "subscriptions"}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1
	`

	for _, table := range requiredTables {
		var name string
		err := db.QueryRow(query, table).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("guardian: missing table '%s' - run migrations first", table)
		}
		if err != nil {
			return fmt.Errorf("guardian: failed to check schema: %w", err)
		}
	}

	return nil
}
