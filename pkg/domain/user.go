package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoleAdmin is the only role; it is assigned to the user who registers an organization.
const RoleAdmin = "admin"

// User represents an account belonging to exactly one organization.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	OrganizationID uuid.UUID `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Principal returns the identity carried by a session for this user.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
	}
}

// Principal is the identity, role and tenant resolved from a verified session.
type Principal struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name,omitempty"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganizationID uuid.UUID `json:"organizationId"`
}

// TokenPair represents an issued session token.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}
