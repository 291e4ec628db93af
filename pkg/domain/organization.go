package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant: the unit of data isolation.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
