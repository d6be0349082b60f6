package domain

import (
	"context"
	"time"
)

// User represents a registered student account. The credential fields are
// mandatory and set at signup; the academic profile stays unset until the
// student fills it in.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Profile      StudentProfile
	CreatedAt    time.Time
}

// StudentProfile groups the nullable academic fields. It is written as a
// unit by profile updates and never touches the credential columns.
type StudentProfile struct {
	EnrollmentNo *string
	Department   *string
	Semester     *string
	CGPA         *float64
}

// Credential is the minimal record needed to verify a login attempt.
type Credential struct {
	UserID       int64
	PasswordHash string
}

// UserRepository defines persistence operations for users.
//
// GetByID omits the password hash; GetCredential is the only read that
// exposes it and exists solely for login verification.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetCredential(ctx context.Context, email string) (*Credential, error)
	UpdateProfile(ctx context.Context, id int64, profile StudentProfile) error
}
