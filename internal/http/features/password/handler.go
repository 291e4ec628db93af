package password

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/insightguardian/insightguardian/internal/http/features/common"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

// Handler handles registration and password login.
type Handler struct {
	logger          *slog.Logger
	passwordService *auth.PasswordService
	sessionService  *auth.SessionService
	cookieConfig    httputil.CookieConfig
}

// NewHandler creates a new password handler.
func NewHandler(
	logger *slog.Logger,
	passwordService *auth.PasswordService,
	sessionService *auth.SessionService,
	cookieSecure bool,
) *Handler {
	return &Handler{
		logger:          logger,
		passwordService: passwordService,
		sessionService:  sessionService,
		cookieConfig:    httputil.DefaultCookieConfig(cookieSecure),
	}
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Company  string `json:"company"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message        string `json:"message"`
	OrganizationID string `json:"organizationId"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	User    *domain.Principal `json:"user"`
	Expires time.Time         `json:"expires"`
}

// TokenResponse is returned to mobile clients, which keep the token themselves.
type TokenResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresIn   int               `json:"expires_in"`
	User        *domain.Principal `json:"user"`
}

// Register creates an organization with its admin user.
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
		req.Password == "" || strings.TrimSpace(req.Company) == "" {
		httputil.Error(w, http.StatusBadRequest, "missing required fields")
		return
	}

	user, org, err := h.passwordService.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Company:  req.Company,
	})
	if err != nil {
		common.WriteError(w, r, h.logger, err, "registration failed")
		return
	}

	h.logger.Info("organization registered", "organization_id", org.ID, "user_id", user.ID)

	httputil.JSON(w, http.StatusCreated, RegisterResponse{
		Message:        "User registered successfully",
		OrganizationID: org.ID.String(),
	})
}

// Login verifies credentials and starts a session.
// POST /api/auth/login
//
// For web clients: sets the HttpOnly access_token cookie.
// For mobile clients (X-Client-Type: mobile): returns the token in the body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	principal, err := h.passwordService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		common.WriteError(w, r, h.logger, err, "authentication failed")
		return
	}

	tokens, err := h.sessionService.IssueSession(principal, r)
	if err != nil {
		common.WriteError(w, r, h.logger, err, "failed to issue session")
		return
	}

	if httputil.IsMobileClient(r) {
		httputil.JSON(w, http.StatusOK, TokenResponse{
			AccessToken: tokens.AccessToken,
			TokenType:   tokens.TokenType,
			ExpiresIn:   tokens.ExpiresIn,
			User:        principal,
		})
		return
	}

	httputil.SetSessionCookie(w, tokens.AccessToken, h.sessionService.AccessTokenTTL(), h.cookieConfig)
	httputil.JSON(w, http.StatusOK, SessionResponse{
		User:    principal,
		Expires: tokens.ExpiresAt.UTC(),
	})
}
