package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

// AccountsRepository handles organizations and their users.
type AccountsRepository struct {
	db *sql.DB
}

// NewAccountsRepository creates a new accounts repository.
func NewAccountsRepository(db *sql.DB) *AccountsRepository {
	return &AccountsRepository{db: db}
}

// CreateAccount inserts the organization, its admin user and its empty
// subscription in one transaction.
func (r *AccountsRepository) CreateAccount(ctx context.Context, org *domain.Organization, user *domain.User, sub *domain.Subscription) error {
	err := Tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := createOrganization(ctx, tx, org); err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		if err := createUser(ctx, tx, user); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if err := createSubscription(ctx, tx, sub); err != nil {
			return fmt.Errorf("insert subscription: %w", err)
		}
		return nil
	})
	if isDuplicateKeyError(err) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

func createOrganization(ctx context.Context, q Querier, org *domain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := q.ExecContext(ctx, query, org.ID, org.Name, org.CreatedAt)
	return err
}

func createUser(ctx context.Context, q Querier, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, organization_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.OrganizationID, user.CreatedAt,
	)
	return err
}

func createSubscription(ctx context.Context, q Querier, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (organization_id, activities, created_at)
		VALUES ($1, $2, $3)
	`
	activities := sub.Activities
	if activities == nil {
		activities = []string{}
	}
	_, err := q.ExecContext(ctx, query, sub.OrganizationID, pq.Array(activities), sub.CreatedAt)
	return err
}

// GetUserByEmail retrieves a user by normalized email.
func (r *AccountsRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, name, email, password_hash, role, organization_id, created_at
		FROM users
		WHERE email = $1
	`
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role,
		&user.OrganizationID, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ExistsByEmail checks if a user with the given email exists.
func (r *AccountsRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}
