package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/internal/http/middleware"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

func TestLogout(t *testing.T) {
	tests := []struct {
		name        string
		mobile      bool
		wantCleared bool
	}{
		{name: "web client clears cookie", mobile: false, wantCleared: true},
		{name: "mobile client", mobile: true, wantCleared: false},
	}

	handler := NewHandler(false)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
			if tt.mobile {
				req.Header.Set("X-Client-Type", "mobile")
			}
			rec := httptest.NewRecorder()

			handler.Logout(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("Status code = %d, want %d", rec.Code, http.StatusNoContent)
			}

			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == "access_token" && c.MaxAge < 0 {
					cleared = true
				}
			}
			if cleared != tt.wantCleared {
				t.Errorf("cookie cleared = %v, want %v", cleared, tt.wantCleared)
			}
		})
	}
}

func TestSession(t *testing.T) {
	sessions := auth.NewSessionService(auth.SessionConfig{
		JWTSecret: []byte("test-secret-that-is-at-least-32-bytes!"),
	})
	principal := &domain.Principal{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@acme.com",
		Role:           domain.RoleAdmin,
		OrganizationID: uuid.New(),
	}
	tokens, err := sessions.IssueSession(principal, nil)
	if err != nil {
		t.Fatal(err)
	}

	handler := middleware.Auth(sessions)(http.HandlerFunc(NewHandler(false).Session))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status code = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		User struct {
			ID             string `json:"id"`
			Email          string `json:"email"`
			Role           string `json:"role"`
			OrganizationID string `json:"organizationId"`
		} `json:"user"`
		Expires string `json:"expires"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.User.OrganizationID != principal.OrganizationID.String() {
		t.Errorf("organizationId = %q, want %q", resp.User.OrganizationID, principal.OrganizationID)
	}
	if resp.User.Role != domain.RoleAdmin || resp.User.Email != "ada@acme.com" {
		t.Errorf("unexpected user %+v", resp.User)
	}
	if resp.Expires == "" {
		t.Error("expires missing")
	}
}

func TestSession_Unauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(false).Session(rec, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Status code = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
