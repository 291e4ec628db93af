// Package memstore is an in-process store used for development and tests.
// Data lives only as long as the process.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

// Store keeps organizations, users, employees and subscriptions in maps
// guarded by a single lock.
type Store struct {
	mu            sync.RWMutex
	orgs          map[uuid.UUID]domain.Organization
	usersByEmail  map[string]domain.User
	employees     map[uuid.UUID]domain.Employee
	subscriptions map[uuid.UUID]domain.Subscription
}

// New creates an empty store.
func New() *Store {
	return &Store{
		orgs:          make(map[uuid.UUID]domain.Organization),
		usersByEmail:  make(map[string]domain.User),
		employees:     make(map[uuid.UUID]domain.Employee),
		subscriptions: make(map[uuid.UUID]domain.Subscription),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }

// CreateAccount stores the organization, user and subscription under one lock.
func (s *Store) CreateAccount(_ context.Context, org *domain.Organization, user *domain.User, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[user.Email]; ok {
		return domain.ErrUserAlreadyExists
	}

	s.orgs[org.ID] = *org
	s.usersByEmail[user.Email] = *user
	stored := *sub
	stored.Activities = cloneStrings(sub.Activities)
	s.subscriptions[sub.OrganizationID] = stored
	return nil
}

// GetUserByEmail returns the user with the given normalized email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// ExistsByEmail reports whether a user with the email exists.
func (s *Store) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.usersByEmail[email]
	return ok, nil
}

// ListEmployees returns the organization's employees oldest first.
func (s *Store) ListEmployees(_ context.Context, orgID uuid.UUID) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Employee{}
	for _, e := range s.employees {
		if e.OrganizationID == orgID {
			out = append(out, cloneEmployee(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetEmployee returns an employee owned by orgID.
func (s *Store) GetEmployee(_ context.Context, orgID, id uuid.UUID) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[id]
	if !ok || e.OrganizationID != orgID {
		return nil, domain.ErrEmployeeNotFound
	}
	c := cloneEmployee(e)
	return &c, nil
}

// CreateEmployee inserts an employee.
func (s *Store) CreateEmployee(_ context.Context, e *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.employees[e.ID] = cloneEmployee(*e)
	return nil
}

// UpdateEmployee applies the non-empty fields of upd to an employee owned by orgID.
func (s *Store) UpdateEmployee(_ context.Context, orgID, id uuid.UUID, upd domain.EmployeeUpdate, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok || e.OrganizationID != orgID {
		return domain.ErrEmployeeNotFound
	}
	if upd.Name != nil && *upd.Name != "" {
		e.Name = *upd.Name
	}
	if upd.Role != nil && *upd.Role != "" {
		e.Role = *upd.Role
	}
	if len(upd.ImageURLs) > 0 {
		e.ImageURLs = cloneStrings(upd.ImageURLs)
	}
	t := updatedAt
	e.UpdatedAt = &t
	s.employees[id] = e
	return nil
}

// DeleteEmployee removes an employee owned by orgID.
func (s *Store) DeleteEmployee(_ context.Context, orgID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[id]
	if !ok || e.OrganizationID != orgID {
		return domain.ErrEmployeeNotFound
	}
	delete(s.employees, id)
	return nil
}

// GetSubscription returns the organization's subscription.
func (s *Store) GetSubscription(_ context.Context, orgID uuid.UUID) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[orgID]
	if !ok {
		return nil, domain.ErrSubscriptionNotFound
	}
	sub.Activities = cloneStrings(sub.Activities)
	return &sub, nil
}

// UpsertSubscription creates or replaces the organization's activity list.
func (s *Store) UpsertSubscription(_ context.Context, orgID uuid.UUID, activities []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[orgID]
	if !ok {
		sub = domain.Subscription{OrganizationID: orgID, CreatedAt: now}
	}
	sub.Activities = cloneStrings(activities)
	t := now
	sub.UpdatedAt = &t
	s.subscriptions[orgID] = sub
	return nil
}

func cloneEmployee(e domain.Employee) domain.Employee {
	e.ImageURLs = cloneStrings(e.ImageURLs)
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		e.UpdatedAt = &t
	}
	return e
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
