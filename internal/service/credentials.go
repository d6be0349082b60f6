package service

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/student-portal/internal/domain"
)

// emailPattern accepts a local part, "@", and a domain containing at least
// one dot. No DNS or mailbox verification is attempted.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s is a plausibly formed email address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword checks the portal's password policy. The checks run in a
// fixed order and stop at the first failure: length, then uppercase, then
// digit. The returned error wraps domain.ErrInvalidInput and carries the
// specific reason.
func ValidatePassword(s string) error {
	if len(s) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters long", domain.ErrInvalidInput)
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return fmt.Errorf("%w: password must contain at least one uppercase letter", domain.ErrInvalidInput)
	}
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return fmt.Errorf("%w: password must contain at least one number", domain.ErrInvalidInput)
	}
	return nil
}

// HashPassword derives a salted bcrypt hash of the plaintext at the given
// cost. The plaintext is never stored or logged anywhere.
func HashPassword(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// It returns false for any mismatch and never panics on bad input.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
