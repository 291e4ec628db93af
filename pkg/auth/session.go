package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

// DefaultAccessTokenTTL is used when SessionConfig leaves the TTL unset.
const DefaultAccessTokenTTL = 24 * time.Hour

// SessionConfig holds session configuration.
type SessionConfig struct {
	AccessTokenTTL     time.Duration
	JWTSecret          []byte
	Issuer             string
	FingerprintEnabled bool
}

// SessionService issues and verifies stateless signed session tokens.
// Nothing is stored server side; a token is valid until it expires.
type SessionService struct {
	config SessionConfig
	now    func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(config SessionConfig) *SessionService {
	if config.AccessTokenTTL == 0 {
		config.AccessTokenTTL = DefaultAccessTokenTTL
	}
	return &SessionService{
		config: config,
		now:    time.Now,
	}
}

// AccessTokenTTL returns the access token TTL.
func (s *SessionService) AccessTokenTTL() time.Duration {
	return s.config.AccessTokenTTL
}

// FingerprintEnabled reports whether tokens are bound to the client fingerprint.
func (s *SessionService) FingerprintEnabled() bool {
	return s.config.FingerprintEnabled
}

// AccessTokenClaims represents the claims in an access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
	Email          string `json:"email,omitempty"`
	Name           string `json:"name,omitempty"`
	Role           string `json:"role"`
	OrganizationID string `json:"org_id"`
	Fingerprint    string `json:"fph,omitempty"`
}

// Principal rebuilds the identity carried by the token.
func (c *AccessTokenClaims) Principal() (*domain.Principal, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	orgID, err := uuid.Parse(c.OrganizationID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Principal{
		ID:             userID,
		Name:           c.Name,
		Email:          c.Email,
		Role:           c.Role,
		OrganizationID: orgID,
	}, nil
}

// IssueSession signs an access token for the principal. When fingerprinting
// is enabled and r is non-nil, the token is bound to the client's IP and
// user agent.
func (s *SessionService) IssueSession(p *domain.Principal, r *http.Request) (*domain.TokenPair, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
		},
		Email:          p.Email,
		Name:           p.Name,
		Role:           p.Role,
		OrganizationID: p.OrganizationID.String(),
	}
	if s.config.FingerprintEnabled && r != nil {
		claims.Fingerprint = GenerateFingerprint(r).Hash
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(s.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.config.AccessTokenTTL.Seconds()),
		ExpiresAt:   expiresAt,
	}, nil
}

// ValidateAccessToken validates an access token and returns the claims.
func (s *SessionService) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.config.JWTSecret, nil
	}, opts...)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessTokenClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// Authorize validates the token, checks the fingerprint binding against r when
// enabled, and returns the principal.
func (s *SessionService) Authorize(tokenString string, r *http.Request) (*domain.Principal, *AccessTokenClaims, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	if s.config.FingerprintEnabled && claims.Fingerprint != "" && r != nil {
		if !MatchesFingerprint(r, claims.Fingerprint) {
			return nil, nil, domain.ErrInvalidToken
		}
	}

	p, err := claims.Principal()
	if err != nil {
		return nil, nil, err
	}
	return p, claims, nil
}
