package subscriptions

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/insightguardian/insightguardian/internal/http/features/common"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/domain"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

// Handler handles the activity catalog and subscription endpoints.
type Handler struct {
	logger    *slog.Logger
	workspace *workspace.Service
}

// NewHandler creates a new subscriptions handler.
func NewHandler(logger *slog.Logger, ws *workspace.Service) *Handler {
	return &Handler{logger: logger, workspace: ws}
}

// ActivitiesResponse lists the catalog.
type ActivitiesResponse struct {
	Activities []domain.Activity `json:"activities"`
}

// SubscriptionResponse is the organization's current activity set.
type SubscriptionResponse struct {
	Activities []string   `json:"activities"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// ReplaceRequest is the body of a subscription update. Activities is kept
// raw so a non-array value can be told apart from a missing one.
type ReplaceRequest struct {
	Activities json.RawMessage `json:"activities"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// Activities returns the activity catalog.
// GET /api/activities
func (h *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, ActivitiesResponse{Activities: h.workspace.Activities()})
}

// Get returns the caller's subscription.
// GET /api/subscriptions
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}

	sub, err := h.workspace.GetSubscription(r.Context(), orgID)
	if err != nil {
		common.WriteError(w, r, h.logger, err, "failed to fetch subscriptions")
		return
	}

	httputil.JSON(w, http.StatusOK, SubscriptionResponse{
		Activities: sub.Activities,
		UpdatedAt:  sub.UpdatedAt,
	})
}

// Replace overwrites the caller's activity set.
// POST /api/subscriptions
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}

	var req ReplaceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	var activities []string
	if len(req.Activities) == 0 || req.Activities[0] != '[' {
		httputil.Error(w, http.StatusBadRequest, "Invalid activities data")
		return
	}
	if err := json.Unmarshal(req.Activities, &activities); err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid activities data")
		return
	}

	if _, err := h.workspace.ReplaceSubscription(r.Context(), orgID, activities); err != nil {
		common.WriteError(w, r, h.logger, err, "failed to update subscriptions")
		return
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "Subscriptions updated successfully"})
}

// RegisterRoutes registers the subscription routes. The caller is expected
// to have applied authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/subscriptions", h.Get)
	r.Post("/subscriptions", h.Replace)
}
