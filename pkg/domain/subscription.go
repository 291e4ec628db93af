package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is the set of monitoring activities an organization has enabled.
// There is at most one per organization.
type Subscription struct {
	OrganizationID uuid.UUID  `json:"organizationId"`
	Activities     []string   `json:"activities"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Activity is one monitoring capability from the fixed catalog.
type Activity struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var activityCatalog = []Activity{
	{ID: "mobile", Title: "Mobile Phone Usage Detection", Description: "Identify unauthorized mobile phone usage in restricted areas."},
	{ID: "presence", Title: "Presence Detection", Description: "Monitor workspace occupancy and attendance automatically."},
	{ID: "sleepiness", Title: "Sleepiness Detection", Description: "Ensure alertness in critical safety environments."},
	{ID: "smoking", Title: "Smoking Detection", Description: "Enforce no-smoking policies in designated areas."},
	{ID: "weapons", Title: "Weapons Detection", Description: "Enhanced security with immediate threat alerts."},
	{ID: "eating", Title: "Eating Detection", Description: "Ensure compliance with food safety regulations."},
	{ID: "loitering", Title: "Loitering Detection", Description: "Identify unusual lingering in secure areas."},
	{ID: "altercations", Title: "Physical Altercations Detection", Description: "Improve workplace safety with conflict alerts."},
}

// ActivityCatalog returns a copy of the fixed activity catalog.
func ActivityCatalog() []Activity {
	out := make([]Activity, len(activityCatalog))
	copy(out, activityCatalog)
	return out
}

// IsKnownActivity reports whether id belongs to the catalog.
func IsKnownActivity(id string) bool {
	for _, a := range activityCatalog {
		if a.ID == id {
			return true
		}
	}
	return false
}
