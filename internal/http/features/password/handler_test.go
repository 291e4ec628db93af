package password

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/auth"
	"github.com/insightguardian/insightguardian/pkg/repository/memstore"
)

func newTestHandler() (*Handler, *auth.SessionService) {
	sessions := auth.NewSessionService(auth.SessionConfig{
		JWTSecret:      []byte("password-handler-secret-32-bytes!!"),
		Issuer:         "test",
		AccessTokenTTL: time.Hour,
	})
	passwords := auth.NewPasswordService(memstore.New(), auth.NewPasswordPolicy(config.PasswordPolicyConfig{MinLength: 8}), true, false)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, passwords, sessions, false), sessions
}

func post(h http.HandlerFunc, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestRegister(t *testing.T) {
	h, _ := newTestHandler()

	valid := `{"name":"Ada","email":"ada@acme.com","password":"long-enough","company":"Acme"}`

	rec := post(h.Register, valid)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created RegisterResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "User registered successfully", created.Message)
	assert.NotEmpty(t, created.OrganizationID)

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"duplicate email", valid, "user already exists"},
		{"missing company", `{"name":"Bo","email":"bo@acme.com","password":"long-enough"}`, "missing required fields"},
		{"blank name", `{"name":"  ","email":"bo@acme.com","password":"long-enough","company":"B"}`, "missing required fields"},
		{"malformed json", `{"name":`, "invalid request body"},
		{"weak password", `{"name":"Bo","email":"bo@acme.com","password":"short","company":"B"}`, ""},
		{"bad email", `{"name":"Bo","email":"not-an-email","password":"long-enough","company":"B"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h.Register, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			msg := errorBody(t, rec)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, msg)
			} else {
				assert.NotEmpty(t, msg)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	h, sessions := newTestHandler()
	require.Equal(t, http.StatusCreated,
		post(h.Register, `{"name":"Ada","email":"ada@acme.com","password":"long-enough","company":"Acme"}`).Code)

	t.Run("web client gets cookie", func(t *testing.T) {
		rec := post(h.Login, `{"email":"ADA@acme.com","password":"long-enough"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == httputil.AccessTokenCookie {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)

		claims, err := sessions.ValidateAccessToken(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "ada@acme.com", claims.Email)
		assert.Equal(t, "admin", claims.Role)

		var body SessionResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ada@acme.com", body.User.Email)
		assert.WithinDuration(t, time.Now().Add(time.Hour), body.Expires, time.Minute)
	})

	t.Run("mobile client gets token", func(t *testing.T) {
		rec := post(h.Login, `{"email":"ada@acme.com","password":"long-enough"}`, "X-Client-Type", "mobile")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())

		var body TokenResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.NotEmpty(t, body.AccessToken)
		assert.Equal(t, 3600, body.ExpiresIn)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		wrong := post(h.Login, `{"email":"ada@acme.com","password":"wrong-password"}`)
		unknown := post(h.Login, `{"email":"ghost@acme.com","password":"wrong-password"}`)
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := post(h.Login, `{"email":"ada@acme.com"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email and password are required", errorBody(t, rec))
	})
}
