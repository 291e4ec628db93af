// Package workspace implements tenant-scoped access to employees and
// subscriptions. Every operation takes the caller's organization id, resolved
// from the session, and never reads or writes another organization's rows.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

// EmployeeStore persists employees. Every method filters on orgID together
// with the employee id; a row owned by another organization is reported as
// domain.ErrEmployeeNotFound.
type EmployeeStore interface {
	ListEmployees(ctx context.Context, orgID uuid.UUID) ([]domain.Employee, error)
	GetEmployee(ctx context.Context, orgID, id uuid.UUID) (*domain.Employee, error)
	CreateEmployee(ctx context.Context, e *domain.Employee) error
	UpdateEmployee(ctx context.Context, orgID, id uuid.UUID, upd domain.EmployeeUpdate, updatedAt time.Time) error
	DeleteEmployee(ctx context.Context, orgID, id uuid.UUID) error
}

// SubscriptionStore persists one subscription per organization.
type SubscriptionStore interface {
	// GetSubscription returns domain.ErrSubscriptionNotFound when none exists.
	GetSubscription(ctx context.Context, orgID uuid.UUID) (*domain.Subscription, error)
	// UpsertSubscription creates the subscription or replaces its activities.
	UpsertSubscription(ctx context.Context, orgID uuid.UUID, activities []string, now time.Time) error
}

// CreateEmployeeInput is the payload for enrolling an employee.
type CreateEmployeeInput struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Role      string   `json:"role" validate:"required,max=200"`
	ImageURLs []string `json:"imageUrls" validate:"min=5,max=50,dive,required,max=2048"`
}

// Service is the tenant-scoped repository.
type Service struct {
	employees     EmployeeStore
	subscriptions SubscriptionStore
	validate      *validator.Validate
	now           func() time.Time
}

// NewService creates a workspace service over the given stores.
func NewService(employees EmployeeStore, subscriptions SubscriptionStore) *Service {
	return &Service{
		employees:     employees,
		subscriptions: subscriptions,
		validate:      validator.New(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Activities returns the catalog of monitoring activities.
func (s *Service) Activities() []domain.Activity {
	return domain.ActivityCatalog()
}

// ListEmployees returns the organization's employees ordered by creation time.
func (s *Service) ListEmployees(ctx context.Context, orgID uuid.UUID) ([]domain.Employee, error) {
	list, err := s.employees.ListEmployees(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if list == nil {
		list = []domain.Employee{}
	}
	return list, nil
}

// GetEmployee returns one employee of the organization.
func (s *Service) GetEmployee(ctx context.Context, orgID, id uuid.UUID) (*domain.Employee, error) {
	e, err := s.employees.GetEmployee(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// CreateEmployee enrolls an employee with at least domain.MinEmployeeImages
// reference images.
func (s *Service) CreateEmployee(ctx context.Context, orgID uuid.UUID, in CreateEmployeeInput) (*domain.Employee, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Role = strings.TrimSpace(in.Role)
	in.ImageURLs = trimAll(in.ImageURLs)

	if err := s.validate.Struct(in); err != nil {
		return nil, employeeValidationError(err)
	}

	now := s.now()
	e := &domain.Employee{
		ID:             uuid.New(),
		Name:           in.Name,
		Role:           in.Role,
		ImageURLs:      in.ImageURLs,
		OrganizationID: orgID,
		CreatedAt:      now,
	}

	if err := s.employees.CreateEmployee(ctx, e); err != nil {
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

// UpdateEmployee applies the non-empty fields of upd and refreshes updatedAt.
// A supplied image list must still hold at least domain.MinEmployeeImages URLs.
func (s *Service) UpdateEmployee(ctx context.Context, orgID, id uuid.UUID, upd domain.EmployeeUpdate) error {
	upd.Name = trimmedOrNil(upd.Name)
	upd.Role = trimmedOrNil(upd.Role)

	if upd.ImageURLs != nil {
		upd.ImageURLs = trimAll(upd.ImageURLs)
		if len(upd.ImageURLs) == 0 {
			upd.ImageURLs = nil
		} else if err := validateImageURLs(upd.ImageURLs); err != nil {
			return err
		}
	}

	if err := s.employees.UpdateEmployee(ctx, orgID, id, upd, s.now()); err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// DeleteEmployee removes an employee of the organization.
func (s *Service) DeleteEmployee(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.employees.DeleteEmployee(ctx, orgID, id); err != nil {
		if errors.Is(err, domain.ErrEmployeeNotFound) {
			return err
		}
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

// GetSubscription returns the organization's subscription, or an empty one
// when none has been stored yet.
func (s *Service) GetSubscription(ctx context.Context, orgID uuid.UUID) (*domain.Subscription, error) {
	sub, err := s.subscriptions.GetSubscription(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriptionNotFound) {
			return &domain.Subscription{OrganizationID: orgID, Activities: []string{}}, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if sub.Activities == nil {
		sub.Activities = []string{}
	}
	return sub, nil
}

// ReplaceSubscription replaces the organization's activity set. Unknown ids
// are rejected and duplicates are dropped, keeping first occurrence order.
func (s *Service) ReplaceSubscription(ctx context.Context, orgID uuid.UUID, activities []string) ([]string, error) {
	seen := make(map[string]struct{}, len(activities))
	cleaned := make([]string, 0, len(activities))
	for _, a := range activities {
		a = strings.TrimSpace(a)
		if !domain.IsKnownActivity(a) {
			return nil, &domain.ValidationError{
				Field:   "activities",
				Message: fmt.Sprintf("%s: %q", domain.ErrUnknownActivity, a),
			}
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		cleaned = append(cleaned, a)
	}

	if err := s.subscriptions.UpsertSubscription(ctx, orgID, cleaned, s.now()); err != nil {
		return nil, fmt.Errorf("replace subscription: %w", err)
	}
	return cleaned, nil
}

func validateImageURLs(urls []string) error {
	if len(urls) < domain.MinEmployeeImages {
		return domain.NewValidationError("imageUrls",
			fmt.Sprintf("at least %d images are required", domain.MinEmployeeImages))
	}
	for _, u := range urls {
		if u == "" {
			return domain.NewValidationError("imageUrls", "image URLs must not be blank")
		}
	}
	return nil
}

func employeeValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	switch {
	case fe.StructField() == "ImageURLs" && fe.Tag() == "min":
		return domain.NewValidationError("imageUrls",
			fmt.Sprintf("at least %d images are required", domain.MinEmployeeImages))
	case strings.HasPrefix(fe.StructField(), "ImageURLs["):
		return domain.NewValidationError("imageUrls", "image URLs must not be blank")
	case fe.Tag() == "required":
		return domain.NewValidationError(strings.ToLower(fe.Field()), "is required")
	case fe.Tag() == "max":
		return domain.NewValidationError(strings.ToLower(fe.Field()), "is too long")
	default:
		return domain.NewValidationError(strings.ToLower(fe.Field()), "is invalid")
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
