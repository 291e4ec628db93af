package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/insightguardian/insightguardian/pkg/domain"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name            string
		email           string
		strict          bool
		blockDisposable bool
		wantErr         bool
	}{
		{name: "valid email", email: "test@example.com"},
		{name: "valid email with subdomain", email: "test@mail.example.com"},
		{name: "valid email with plus", email: "test+tag@example.com"},
		{name: "mixed case and spaces", email: "  Admin@Acme.COM "},
		{name: "empty email", email: "", wantErr: true},
		{name: "whitespace only", email: "   ", wantErr: true},
		{name: "invalid - no @", email: "invalid.com", wantErr: true},
		{name: "invalid - no domain", email: "test@", wantErr: true},
		{name: "invalid - no local part", email: "@example.com", wantErr: true},
		{name: "display name form", email: "Bob <bob@example.com>", wantErr: true},
		{name: "too long", email: strings.Repeat("a", 300) + "@example.com", wantErr: true},
		{name: "disposable email - blocked", email: "test@tempmail.com", blockDisposable: true, wantErr: true},
		{name: "disposable email - allowed", email: "test@tempmail.com"},
		{name: "strict mode - valid", email: "test@example.com", strict: true},
		{name: "strict mode - dotless domain", email: "test@localhost", strict: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email, tt.strict, tt.blockDisposable)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEmail() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidEmail) {
				t.Errorf("error %v should wrap ErrInvalidEmail", err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"test@example.com", "test@example.com"},
		{"TEST@EXAMPLE.COM", "test@example.com"},
		{"  Test@Example.com  ", "test@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
