package middleware

import (
	"net/http"
	"strings"

	"github.com/insightguardian/insightguardian/pkg/auth"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

var publicPaths = []string{"/", "/login", "/register"}

// IsPublicPath reports whether path is reachable without a session. The root
// path only matches exactly; the others also match their sub-paths.
func IsPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
		if p != "/" && strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// GateRedirect decides where a page request should go. Signed-in users are
// sent from public pages to the dashboard; anonymous users are sent from
// private pages to the login page.
func GateRedirect(path string, authenticated bool) (string, bool) {
	public := IsPublicPath(path)
	switch {
	case authenticated && public:
		return dashboardPath, true
	case !authenticated && !public:
		return loginPath, true
	default:
		return "", false
	}
}

// Gate redirects page requests according to GateRedirect. A request counts as
// authenticated only when its token validates.
func Gate(sessionService *auth.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := false
			if token, ok := TokenFromRequest(r); ok {
				if p, _, err := sessionService.Authorize(token, r); err == nil {
					authenticated = true
					r = r.WithContext(WithPrincipal(r.Context(), p))
				}
			}

			if target, redirect := GateRedirect(r.URL.Path, authenticated); redirect {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
