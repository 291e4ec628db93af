package session

import (
	"net/http"
	"time"

	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

// Handler handles session endpoints. Sessions are stateless tokens, so
// logout only clears the client's cookie.
type Handler struct {
	cookieConfig httputil.CookieConfig
}

// NewHandler creates a new session handler.
func NewHandler(cookieSecure bool) *Handler {
	return &Handler{
		cookieConfig: httputil.DefaultCookieConfig(cookieSecure),
	}
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User    *domain.Principal `json:"user"`
	Expires time.Time         `json:"expires"`
}

// Logout clears the session cookie.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !httputil.IsMobileClient(r) {
		httputil.ClearSessionCookie(w, h.cookieConfig)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the principal of the current session.
// GET /api/auth/session
// Requires authentication
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	resp := SessionResponse{User: principal}
	if claims, ok := middleware.GetClaims(r.Context()); ok && claims.ExpiresAt != nil {
		resp.Expires = claims.ExpiresAt.Time.UTC()
	}

	httputil.JSON(w, http.StatusOK, resp)
}
