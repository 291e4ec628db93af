package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/insightguardian/insightguardian/pkg/domain"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2 parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// AccountStore persists organizations and their users.
type AccountStore interface {
	// CreateAccount stores the organization, its admin user and an empty
	// subscription as one unit. Returns domain.ErrUserAlreadyExists when the
	// email is taken.
	CreateAccount(ctx context.Context, org *domain.Organization, user *domain.User, sub *domain.Subscription) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RegisterInput is the payload for creating an organization and its admin.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
	Company  string `json:"company" validate:"required,max=200"`
}

// PasswordService handles registration and password authentication.
type PasswordService struct {
	accounts              AccountStore
	policy                *PasswordPolicy
	validate              *validator.Validate
	strictEmailValidation bool
	blockDisposableEmail  bool
	dummyHash             string
}

// NewPasswordService creates a new password service.
func NewPasswordService(accounts AccountStore, policy *PasswordPolicy, strictEmailValidation, blockDisposableEmail bool) *PasswordService {
	dummy, err := HashPassword(uuid.NewString())
	if err != nil {
		// crypto/rand failure; VerifyPassword rejects the empty hash.
		dummy = ""
	}
	return &PasswordService{
		accounts:              accounts,
		policy:                policy,
		validate:              validator.New(validator.WithRequiredStructEnabled()),
		strictEmailValidation: strictEmailValidation,
		blockDisposableEmail:  blockDisposableEmail,
		dummyHash:             dummy,
	}
}

// PasswordRequirements describes the password policy for the registration
// page. It is empty when no policy is set.
func (s *PasswordService) PasswordRequirements() string {
	if s == nil || s.policy == nil {
		return ""
	}
	return s.policy.Requirements()
}

// Register creates an organization, its admin user and an empty subscription.
func (s *PasswordService) Register(ctx context.Context, in RegisterInput) (*domain.User, *domain.Organization, error) {
	in.Name = SanitizeName(in.Name)
	in.Company = SanitizeName(in.Company)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return nil, nil, toValidationError(err)
	}

	if err := ValidateEmail(in.Email, s.strictEmailValidation, s.blockDisposableEmail); err != nil {
		return nil, nil, err
	}
	email := NormalizeEmail(in.Email)

	if s.policy != nil {
		if err := s.policy.ValidatePassword(in.Password); err != nil {
			return nil, nil, err
		}
	}

	exists, err := s.accounts.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, nil, domain.ErrUserAlreadyExists
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:        uuid.New(),
		Name:      in.Company,
		CreatedAt: now,
	}
	user := &domain.User{
		ID:             uuid.New(),
		Name:           in.Name,
		Email:          email,
		PasswordHash:   hash,
		Role:           domain.RoleAdmin,
		OrganizationID: org.ID,
		CreatedAt:      now,
	}
	sub := &domain.Subscription{
		OrganizationID: org.ID,
		Activities:     []string{},
		CreatedAt:      now,
	}

	if err := s.accounts.CreateAccount(ctx, org, user, sub); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	return user, org, nil
}

// Authenticate verifies email and password and returns the session principal.
// Unknown email and wrong password both return domain.ErrInvalidCredentials.
func (s *PasswordService) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	user, err := s.accounts.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			VerifyPassword(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return user.Principal(), nil
}

// HashPassword hashes a password using Argon2id.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := randomBytes(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return encodeArgon2Hash(hash, salt, argon2Time, argon2Memory, argon2Threads), nil
}

// VerifyPassword verifies a password against an Argon2id hash, or a bcrypt
// hash carried over from accounts created before Argon2id.
func VerifyPassword(password, encodedHash string) bool {
	if isBcryptHash(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	hash, salt, time, memory, threads, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))
	return constantTimeCompare(hash, computed)
}

func isBcryptHash(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

// toValidationError converts the first validator failure into a domain error.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "is required")
	case "max":
		return domain.NewValidationError(field, "must be at most "+fe.Param()+" characters")
	default:
		return domain.NewValidationError(field, "is invalid")
	}
}
