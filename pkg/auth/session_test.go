package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

var testJWTSecret = []byte("0123456789abcdef0123456789abcdef")

func testPrincipal() *domain.Principal {
	return &domain.Principal{
		ID:             uuid.New(),
		Name:           "Ada Admin",
		Email:          "ada@acme.com",
		Role:           domain.RoleAdmin,
		OrganizationID: uuid.New(),
	}
}

func TestSessionService_IssueAndValidate(t *testing.T) {
	svc := NewSessionService(SessionConfig{JWTSecret: testJWTSecret, Issuer: "insightguardian"})
	p := testPrincipal()

	pair, err := svc.IssueSession(p, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int(DefaultAccessTokenTTL.Seconds()), pair.ExpiresIn)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p.ID.String(), claims.Subject)
	assert.Equal(t, p.OrganizationID.String(), claims.OrganizationID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "insightguardian", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Empty(t, claims.Fingerprint)

	got, err := claims.Principal()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSessionService_ValidateAccessToken_Rejects(t *testing.T) {
	svc := NewSessionService(SessionConfig{JWTSecret: testJWTSecret, Issuer: "insightguardian"})
	p := testPrincipal()

	pair, err := svc.IssueSession(p, nil)
	require.NoError(t, err)

	other := NewSessionService(SessionConfig{JWTSecret: []byte("another-secret-another-secret-xx"), Issuer: "insightguardian"})
	otherIssuer := NewSessionService(SessionConfig{JWTSecret: testJWTSecret, Issuer: "someone-else"})

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		OrganizationID: p.OrganizationID.String(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		svc   *SessionService
		token string
	}{
		{name: "empty", svc: svc, token: ""},
		{name: "garbage", svc: svc, token: "not.a.jwt"},
		{name: "wrong secret", svc: other, token: pair.AccessToken},
		{name: "wrong issuer", svc: otherIssuer, token: pair.AccessToken},
		{name: "alg none", svc: svc, token: noneToken},
		{name: "tampered", svc: svc, token: pair.AccessToken + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestSessionService_Expiry(t *testing.T) {
	svc := NewSessionService(SessionConfig{JWTSecret: testJWTSecret, AccessTokenTTL: time.Minute})
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	pair, err := svc.IssueSession(testPrincipal(), nil)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestSessionService_Fingerprint(t *testing.T) {
	svc := NewSessionService(SessionConfig{JWTSecret: testJWTSecret, FingerprintEnabled: true})

	issueReq := httptest.NewRequest("POST", "/api/auth/login", nil)
	issueReq.RemoteAddr = "198.51.100.7:4000"
	issueReq.Header.Set("User-Agent", "Mozilla/5.0")

	pair, err := svc.IssueSession(testPrincipal(), issueReq)
	require.NoError(t, err)

	sameClient := httptest.NewRequest("GET", "/api/employees", nil)
	sameClient.RemoteAddr = "198.51.100.7:4999"
	sameClient.Header.Set("User-Agent", "Mozilla/5.0")
	_, claims, err := svc.Authorize(pair.AccessToken, sameClient)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.Fingerprint)

	stolen := httptest.NewRequest("GET", "/api/employees", nil)
	stolen.RemoteAddr = "203.0.113.9:4000"
	stolen.Header.Set("User-Agent", "Mozilla/5.0")
	_, _, err = svc.Authorize(pair.AccessToken, stolen)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAccessTokenClaims_Principal_BadIDs(t *testing.T) {
	c := &AccessTokenClaims{OrganizationID: uuid.NewString()}
	c.Subject = "not-a-uuid"
	_, err := c.Principal()
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	c = &AccessTokenClaims{OrganizationID: "nope"}
	c.Subject = uuid.NewString()
	_, err = c.Principal()
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
