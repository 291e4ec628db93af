package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// RateLimiters holds the limiter for each endpoint group.
type RateLimiters struct {
	// Auth guards login and registration.
	Auth func(http.Handler) http.Handler
	// Upload guards image uploads.
	Upload func(http.Handler) http.Handler
}

// CreateRateLimiters creates rate limiting middleware based on configuration.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) RateLimiters {
	if !cfg.Enabled {
		return RateLimiters{Auth: NoRateLimit(), Upload: NoRateLimit()}
	}

	return RateLimiters{
		Auth: RateLimit(RateLimitConfig{
			Requests: cfg.AuthRequests,
			Window:   cfg.AuthWindow,
			Logger:   logger,
		}),
		Upload: RateLimit(RateLimitConfig{
			Requests: cfg.UploadRequests,
			Window:   cfg.UploadWindow,
			Logger:   logger,
		}),
	}
}
