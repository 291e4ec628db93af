package middleware

import (
	"fmt"
	"net/http"

	"github.com/insightguardian/insightguardian/internal/config"
)

type headerValue struct {
	name, value string
}

// SecurityHeaders creates middleware that applies OWASP-recommended security
// headers. Empty settings are skipped.
func SecurityHeaders(cfg config.SecurityHeadersConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge)
	}

	var headers []headerValue
	for _, h := range []headerValue{
		{"Content-Security-Policy", cfg.CSP},
		{"Strict-Transport-Security", hsts},
		{"X-Frame-Options", cfg.FrameOptions},
		{"X-Content-Type-Options", cfg.ContentTypeOptions},
		{"X-XSS-Protection", cfg.XSSProtection},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
	} {
		if h.value != "" {
			headers = append(headers, h)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, h := range headers {
				w.Header().Set(h.name, h.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
