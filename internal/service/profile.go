package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/msomdec/student-portal/internal/domain"
)

// ProfileService handles reads and updates of a student's academic profile.
type ProfileService struct {
	users domain.UserRepository
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users domain.UserRepository) *ProfileService {
	return &ProfileService{users: users}
}

// Get returns the user's record without the password hash.
func (s *ProfileService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update overwrites the academic profile fields. Enrollment number,
// department and semester are required; CGPA is optional and cleared when
// absent. Returns domain.ErrNotFound if the user row no longer exists.
func (s *ProfileService) Update(ctx context.Context, userID int64, enrollmentNo, department, semester, cgpa string) error {
	if enrollmentNo == "" || department == "" || semester == "" {
		return fmt.Errorf("%w: required fields are missing", domain.ErrInvalidInput)
	}

	profile := domain.StudentProfile{
		EnrollmentNo: &enrollmentNo,
		Department:   &department,
		Semester:     &semester,
	}
	if cgpa != "" {
		v, err := strconv.ParseFloat(cgpa, 64)
		if err != nil {
			return fmt.Errorf("%w: CGPA must be a number", domain.ErrInvalidInput)
		}
		profile.CGPA = &v
	}

	if err := s.users.UpdateProfile(ctx, userID, profile); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
