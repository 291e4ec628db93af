package domain

import (
	"time"

	"github.com/google/uuid"
)

// MinEmployeeImages is the number of reference images required to enroll an employee.
const MinEmployeeImages = 5

// Employee is a person enrolled for recognition, owned by one organization.
type Employee struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Role           string     `json:"role"`
	ImageURLs      []string   `json:"imageUrls"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// EmployeeUpdate holds a partial update. Nil or empty fields are left unchanged.
type EmployeeUpdate struct {
	Name      *string
	Role      *string
	ImageURLs []string
}
