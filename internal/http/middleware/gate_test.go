package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

func TestGateRedirect(t *testing.T) {
	tests := []struct {
		path          string
		authenticated bool
		wantTarget    string
		wantRedirect  bool
	}{
		{"/", false, "", false},
		{"/", true, "/dashboard", true},
		{"/login", false, "", false},
		{"/login", true, "/dashboard", true},
		{"/login/help", false, "", false},
		{"/register", true, "/dashboard", true},
		{"/register/", false, "", false},
		{"/dashboard", false, "/login", true},
		{"/dashboard", true, "", false},
		{"/setup/employees", false, "/login", true},
		{"/setup/employees", true, "", false},
		{"/loginx", false, "/login", true},
		{"/registering", false, "/login", true},
		{"/other", false, "/login", true},
	}

	for _, tt := range tests {
		target, redirect := GateRedirect(tt.path, tt.authenticated)
		if target != tt.wantTarget || redirect != tt.wantRedirect {
			t.Errorf("GateRedirect(%q, %v) = (%q, %v), want (%q, %v)",
				tt.path, tt.authenticated, target, redirect, tt.wantTarget, tt.wantRedirect)
		}
	}
}

func newTestSessions() *auth.SessionService {
	return auth.NewSessionService(auth.SessionConfig{
		JWTSecret: []byte("test-secret-that-is-at-least-32-bytes!"),
		Issuer:    "test",
	})
}

func testPrincipal() *domain.Principal {
	return &domain.Principal{
		ID:             uuid.New(),
		Email:          "ada@acme.com",
		Role:           domain.RoleAdmin,
		OrganizationID: uuid.New(),
	}
}

func TestGate(t *testing.T) {
	sessions := newTestSessions()
	tokens, err := sessions.IssueSession(testPrincipal(), nil)
	if err != nil {
		t.Fatal(err)
	}

	handler := Gate(sessions)(okHandler())

	tests := []struct {
		name         string
		path         string
		token        string
		wantStatus   int
		wantLocation string
	}{
		{"anonymous private", "/dashboard", "", http.StatusSeeOther, "/login"},
		{"anonymous public", "/login", "", http.StatusOK, ""},
		{"signed in public", "/login", tokens.AccessToken, http.StatusSeeOther, "/dashboard"},
		{"signed in private", "/setup/activities", tokens.AccessToken, http.StatusOK, ""},
		{"invalid token counts as anonymous", "/dashboard", "garbage", http.StatusSeeOther, "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.token})
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Location"); got != tt.wantLocation {
				t.Errorf("Location = %q, want %q", got, tt.wantLocation)
			}
		})
	}
}
