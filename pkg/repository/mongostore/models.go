package mongostore

import (
	"time"

	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

// Documents keep ids as canonical UUID strings and use the same camelCase
// field names as the collections written by the original web app.

type organizationDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
}

type userDoc struct {
	ID             string    `bson:"_id"`
	Name           string    `bson:"name"`
	Email          string    `bson:"email"`
	Password       string    `bson:"password"`
	Role           string    `bson:"role"`
	OrganizationID string    `bson:"organizationId"`
	CreatedAt      time.Time `bson:"createdAt"`
}

type employeeDoc struct {
	ID             string     `bson:"_id"`
	Name           string     `bson:"name"`
	Role           string     `bson:"role"`
	ImageURLs      []string   `bson:"imageUrls"`
	OrganizationID string     `bson:"organizationId"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      *time.Time `bson:"updatedAt,omitempty"`
}

type subscriptionDoc struct {
	OrganizationID string     `bson:"organizationId"`
	Activities     []string   `bson:"activities"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      *time.Time `bson:"updatedAt,omitempty"`
}

func (d userDoc) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	orgID, err := uuid.Parse(d.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:             id,
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.Password,
		Role:           d.Role,
		OrganizationID: orgID,
		CreatedAt:      d.CreatedAt.UTC(),
	}, nil
}

func (d employeeDoc) toDomain() (*domain.Employee, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	orgID, err := uuid.Parse(d.OrganizationID)
	if err != nil {
		return nil, err
	}
	e := &domain.Employee{
		ID:             id,
		Name:           d.Name,
		Role:           d.Role,
		ImageURLs:      d.ImageURLs,
		OrganizationID: orgID,
		CreatedAt:      d.CreatedAt.UTC(),
	}
	if e.ImageURLs == nil {
		e.ImageURLs = []string{}
	}
	if d.UpdatedAt != nil {
		t := d.UpdatedAt.UTC()
		e.UpdatedAt = &t
	}
	return e, nil
}

func (d subscriptionDoc) toDomain(orgID uuid.UUID) *domain.Subscription {
	sub := &domain.Subscription{
		OrganizationID: orgID,
		Activities:     d.Activities,
		CreatedAt:      d.CreatedAt.UTC(),
	}
	if sub.Activities == nil {
		sub.Activities = []string{}
	}
	if d.UpdatedAt != nil {
		t := d.UpdatedAt.UTC()
		sub.UpdatedAt = &t
	}
	return sub
}
