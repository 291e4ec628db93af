package middleware

import (
	"net/http"

	"github.com/insightguardian/insightguardian/internal/httputil"
)

// RequireRole creates middleware that requires the principal to hold role.
// Must be used after Auth middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if p.Role != role {
				httputil.Error(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
