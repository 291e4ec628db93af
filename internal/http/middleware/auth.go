package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey contextKey = "principal"
	// ClaimsKey is the context key for the token claims.
	ClaimsKey contextKey = "claims"
)

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the access token cookie for web clients.
func TokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], true
		}
	}
	return httputil.GetAccessTokenFromCookie(r)
}

// Auth creates middleware that validates session tokens and stores the
// principal in the request context.
func Auth(sessionService *auth.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := TokenFromRequest(r)
			if !ok {
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			principal, claims, err := sessionService.Authorize(tokenString, r)
			if err != nil {
				httputil.Error(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the request context.
func GetPrincipal(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*domain.Principal)
	return p, ok
}

// GetClaims extracts the token claims from the request context.
func GetClaims(ctx context.Context) (*auth.AccessTokenClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.AccessTokenClaims)
	return claims, ok
}

// GetOrganizationID extracts the caller's organization from the request context.
func GetOrganizationID(ctx context.Context) (uuid.UUID, bool) {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.OrganizationID, true
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
