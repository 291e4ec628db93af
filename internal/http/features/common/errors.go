// Package common holds helpers shared by the feature handlers.
package common

import (
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

// WriteError maps a service error to its HTTP response. Errors outside the
// domain taxonomy are logged and answered with a 500 carrying fallback; their
// cause is never sent to the client.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrValidation):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		httputil.Error(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, domain.ErrEmployeeNotFound):
		httputil.Error(w, http.StatusNotFound, "employee not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrInvalidToken):
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
	default:
		logger.ErrorContext(r.Context(), fallback,
			"error", err,
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		httputil.Error(w, http.StatusInternalServerError, fallback)
	}
}

// OrganizationID returns the caller's organization from the authenticated
// principal, writing a 401 when there is none.
func OrganizationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	orgID, ok := middleware.GetOrganizationID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return orgID, true
}
