package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/internal/datastore"
	httpserver "github.com/insightguardian/insightguardian/internal/http"
	"github.com/insightguardian/insightguardian/internal/http/features/employees"
	"github.com/insightguardian/insightguardian/internal/telemetry"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/objectstore"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, logger)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	backend, err := datastore.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("store ready", "driver", backend.Driver)

	// Initialize services
	passwordPolicy := auth.NewPasswordPolicy(cfg.PasswordPolicy)
	passwordService := auth.NewPasswordService(
		backend.Accounts,
		passwordPolicy,
		cfg.Validation.StrictEmailValidation,
		cfg.Validation.BlockDisposableEmail,
	)
	sessionService := auth.NewSessionService(auth.SessionConfig{
		AccessTokenTTL:     cfg.AccessTokenTTL,
		JWTSecret:          []byte(cfg.JWTSecret),
		Issuer:             cfg.JWTIssuer,
		FingerprintEnabled: cfg.SessionSecurity.FingerprintEnabled,
	})
	workspaceService := workspace.NewService(backend.Employees, backend.Subscriptions)

	// Image storage
	var (
		uploader       employees.Uploader
		uploadsHandler http.Handler
	)
	if cfg.HasS3() {
		s3Store, err := objectstore.NewS3(ctx, objectstore.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		})
		if err != nil {
			logger.Error("failed to configure s3 storage", "error", err)
			os.Exit(1)
		}
		uploader = s3Store
		logger.Info("image storage: s3", "bucket", cfg.Storage.Bucket)
	} else {
		disk, err := objectstore.NewDisk(cfg.Storage.LocalDir, cfg.AppBaseURL+"/uploads")
		if err != nil {
			logger.Error("failed to configure local storage", "error", err)
			os.Exit(1)
		}
		uploader = disk
		uploadsHandler = disk.Handler()
		logger.Info("image storage: local", "dir", cfg.Storage.LocalDir)
	}

	var templates fs.FS
	if cfg.TemplatesDir != "" {
		templates = os.DirFS(cfg.TemplatesDir)
	}

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:           logger,
		PasswordService:  passwordService,
		SessionService:   sessionService,
		WorkspaceService: workspaceService,
		Uploader:         uploader,
		UploadsHandler:   uploadsHandler,
		Store:            backend,
		ServeUI:          cfg.ServeUI,
		Templates:        templates,
		RateLimitConfig:  cfg.RateLimit,
		SecurityHeaders:  cfg.SecurityHeaders,
		Validation:       cfg.Validation,
		CookieSecure:     cfg.CookieSecure,
		TrustProxy:       cfg.TrustProxy,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, "insightguardian"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := backend.Close(shutdownCtx); err != nil {
		logger.Error("store close error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
