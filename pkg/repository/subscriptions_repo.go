package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

// SubscriptionsRepository stores one activity set per organization.
type SubscriptionsRepository struct {
	db *sql.DB
}

// NewSubscriptionsRepository creates a new subscriptions repository.
func NewSubscriptionsRepository(db *sql.DB) *SubscriptionsRepository {
	return &SubscriptionsRepository{db: db}
}

// GetSubscription retrieves the organization's subscription.
func (r *SubscriptionsRepository) GetSubscription(ctx context.Context, orgID uuid.UUID) (*domain.Subscription, error) {
	query := `
		SELECT organization_id, activities, created_at, updated_at
		FROM subscriptions
		WHERE organization_id = $1
	`
	var (
		sub       domain.Subscription
		updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&sub.OrganizationID, pq.Array(&sub.Activities), &sub.CreatedAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t := updatedAt.Time
		sub.UpdatedAt = &t
	}
	return &sub, nil
}

// UpsertSubscription creates the subscription or replaces its activities.
func (r *SubscriptionsRepository) UpsertSubscription(ctx context.Context, orgID uuid.UUID, activities []string, now time.Time) error {
	query := `
		INSERT INTO subscriptions (organization_id, activities, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (organization_id)
		DO UPDATE SET activities = EXCLUDED.activities, updated_at = EXCLUDED.updated_at
	`
	if activities == nil {
		activities = []string{}
	}
	_, err := r.db.ExecContext(ctx, query, orgID, pq.Array(activities), now)
	return err
}
