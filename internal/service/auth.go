package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/student-portal/internal/domain"
)

// AuthService handles signup, login, and session teardown.
type AuthService struct {
	users      domain.UserRepository
	sessions   domain.SessionStore
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, sessions domain.SessionStore, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
	}
}

// SignUp creates a new student account after validating inputs. It does not
// log the user in; a fresh login is required afterwards.
//
// Validation order: field presence, email format, confirmation match,
// password strength, email availability.
func (s *AuthService) SignUp(ctx context.Context, firstName, lastName, email, password, confirmPassword string) (*domain.User, error) {
	if firstName == "" || lastName == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrInvalidInput)
	}
	if !ValidateEmail(email) {
		return nil, fmt.Errorf("%w: please enter a valid email address", domain.ErrInvalidInput)
	}
	if password != confirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}

	// The pre-check above can lose a race against a concurrent signup; the
	// store reports the unique violation as the same ErrDuplicateEmail.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// LogIn verifies credentials and establishes a new session. A wrong
// password and an unknown email both return the bare ErrUnauthorized, so
// callers cannot tell which field was wrong.
func (s *AuthService) LogIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if !ValidateEmail(email) {
		return nil, fmt.Errorf("%w: please enter a valid email address", domain.ErrInvalidInput)
	}

	cred, err := s.users.GetCredential(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	if !VerifyPassword(password, cred.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}

	sess, err := s.sessions.Create(ctx, cred.UserID, email)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// LogOut destroys the session unconditionally. Destruction failures are
// logged and swallowed; the caller always proceeds as logged out.
func (s *AuthService) LogOut(ctx context.Context, sessionID string) {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		slog.Error("destroy session", "error", err)
	}
}
