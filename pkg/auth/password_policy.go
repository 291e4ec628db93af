package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/insightguardian/insightguardian/internal/config"
	"github.com/insightguardian/insightguardian/pkg/domain"
)

// PasswordPolicy defines password complexity requirements.
type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// NewPasswordPolicy creates a PasswordPolicy from config.
func NewPasswordPolicy(cfg config.PasswordPolicyConfig) *PasswordPolicy {
	return &PasswordPolicy{
		MinLength:        cfg.MinLength,
		RequireUppercase: cfg.RequireUppercase,
		RequireLowercase: cfg.RequireLowercase,
		RequireNumber:    cfg.RequireNumber,
		RequireSpecial:   cfg.RequireSpecial,
	}
}

// ValidatePassword checks the password against the policy. Failures wrap
// domain.ErrWeakPassword.
func (p *PasswordPolicy) ValidatePassword(password string) error {
	if p.MinLength > 0 && len([]rune(password)) < p.MinLength {
		return fmt.Errorf("%w: must be at least %d characters long", domain.ErrWeakPassword, p.MinLength)
	}
	if p.RequireUppercase && !containsRune(password, unicode.IsUpper) {
		return fmt.Errorf("%w: must contain an uppercase letter", domain.ErrWeakPassword)
	}
	if p.RequireLowercase && !containsRune(password, unicode.IsLower) {
		return fmt.Errorf("%w: must contain a lowercase letter", domain.ErrWeakPassword)
	}
	if p.RequireNumber && !containsRune(password, unicode.IsDigit) {
		return fmt.Errorf("%w: must contain a number", domain.ErrWeakPassword)
	}
	if p.RequireSpecial && !containsRune(password, isSpecial) {
		return fmt.Errorf("%w: must contain a special character", domain.ErrWeakPassword)
	}
	return nil
}

// Requirements returns a human-readable description of the policy, shown on
// the registration page.
func (p *PasswordPolicy) Requirements() string {
	var reqs []string
	if p.MinLength > 0 {
		reqs = append(reqs, fmt.Sprintf("at least %d characters", p.MinLength))
	}
	if p.RequireUppercase {
		reqs = append(reqs, "one uppercase letter")
	}
	if p.RequireLowercase {
		reqs = append(reqs, "one lowercase letter")
	}
	if p.RequireNumber {
		reqs = append(reqs, "one number")
	}
	if p.RequireSpecial {
		reqs = append(reqs, "one special character")
	}
	if len(reqs) == 0 {
		return ""
	}
	return "Password must contain " + strings.Join(reqs, ", ")
}

func containsRune(s string, pred func(rune) bool) bool {
	return strings.IndexFunc(s, pred) >= 0
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
