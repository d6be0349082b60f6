package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/msomdec/student-portal/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (firstname, lastname, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, firstname, lastname, email, password_hash, enrollment_no, department, semester, cgpa, created_at
		 FROM users WHERE email = ?`, email,
	)

	user := &domain.User{}
	var enrollmentNo, department, semester sql.NullString
	var cgpa sql.NullFloat64
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&enrollmentNo, &department, &semester, &cgpa, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}

	user.Profile = toProfile(enrollmentNo, department, semester, cgpa)
	return user, nil
}

// GetByID returns the user without the password hash; the hash column is
// not part of the query.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, firstname, lastname, email, enrollment_no, department, semester, cgpa, created_at
		 FROM users WHERE id = ?`, id,
	)

	user := &domain.User{}
	var enrollmentNo, department, semester sql.NullString
	var cgpa sql.NullFloat64
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&enrollmentNo, &department, &semester, &cgpa, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}

	user.Profile = toProfile(enrollmentNo, department, semester, cgpa)
	return user, nil
}

// GetCredential is the only read that exposes the password hash. It exists
// solely so login can verify a password.
func (r *UserRepository) GetCredential(ctx context.Context, email string) (*domain.Credential, error) {
	cred := &domain.Credential{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM users WHERE email = ?`, email,
	).Scan(&cred.UserID, &cred.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}
	return cred, nil
}

// UpdateProfile overwrites the four academic columns. Credential columns
// are never part of this statement.
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, profile domain.StudentProfile) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET enrollment_no = ?, department = ?, semester = ?, cgpa = ? WHERE id = ?`,
		profile.EnrollmentNo, profile.Department, profile.Semester, profile.CGPA, id,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toProfile(enrollmentNo, department, semester sql.NullString, cgpa sql.NullFloat64) domain.StudentProfile {
	var p domain.StudentProfile
	if enrollmentNo.Valid {
		p.EnrollmentNo = &enrollmentNo.String
	}
	if department.Valid {
		p.Department = &department.String
	}
	if semester.Valid {
		p.Semester = &semester.String
	}
	if cgpa.Valid {
		p.CGPA = &cgpa.Float64
	}
	return p
}

// isUniqueViolation matches the driver's structured result code rather than
// the error text, so a signup losing the race against a concurrent insert
// still maps to ErrDuplicateEmail.
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
