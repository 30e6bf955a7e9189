package student

import (
	"context"
	"errors"
	"fmt"
	"time"

	courseRepo "institute/database/repository/course"
	studentRepo "institute/database/repository/student"
	"institute/models"
	"institute/services/fees"
	"institute/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a login attempt fails.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthResponse contains only the student's ID and the JWT token.
type AuthResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

// StudentService defines business logic for student operations.
type StudentService interface {
	// Enroll admits a student into a course and opens their fee account
	// with the course fee as the amount owed.
	Enroll(ctx context.Context, s models.Student) (*models.Student, error)
	// Authenticate verifies credentials and returns ID and token.
	Authenticate(email, password string) (*AuthResponse, error)
	// GetByID retrieves a student by its unique ID.
	GetByID(id string) (*models.Student, error)
	// GetAll retrieves all students.
	GetAll() ([]models.Student, error)
	// Update modifies a student's profile.
	Update(s models.Student) (*models.Student, error)
	// Delete removes a student record.
	Delete(id string) error
	// RegisterFCMToken stores a push token on the student record.
	RegisterFCMToken(id, token string) error
}

// DefaultStudentService is the production implementation.
type DefaultStudentService struct {
	Repo    studentRepo.StudentRepository
	Courses courseRepo.CourseRepository
	Fees    fees.FeeService
}

// Enroll validates the admission, persists the student and opens their
// fee account. Account creation is part of enrollment: a student without
// a ledger entry cannot be billed.
func (s *DefaultStudentService) Enroll(ctx context.Context, st models.Student) (*models.Student, error) {
	if st.Email == "" || st.Name == "" {
		return nil, fmt.Errorf("student name and email are required")
	}
	if st.Password == "" {
		return nil, fmt.Errorf("student password is required")
	}

	if _, err := s.Repo.GetByEmail(st.Email); err == nil {
		return nil, fmt.Errorf("student with email %s already exists", st.Email)
	} else if !errors.Is(err, studentRepo.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing student: %w", err)
	}

	var courseFee int64
	if st.CourseID != "" {
		course, err := s.Courses.GetByID(st.CourseID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve course %s: %w", st.CourseID, err)
		}
		courseFee = course.Fee
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(st.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	st.PasswordHash = string(hashedPassword)
	st.Password = ""

	st.ID = uuid.New().String()

	if err := s.Repo.Create(&st); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	if err := s.Fees.CreateAccount(ctx, st.ID, courseFee); err != nil {
		return nil, fmt.Errorf("failed to open fee account for student %s: %w", st.ID, err)
	}

	return &st, nil
}

// Authenticate verifies the student's credentials and issues a JWT token.
func (s *DefaultStudentService) Authenticate(email, password string) (*AuthResponse, error) {
	st, err := s.Repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, studentRepo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(st.ID, "student", 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}
	if err := utils.CacheAuthToken(utils.GetAuthCacheClient(), st.ID, utils.HashToken(token), 24*time.Hour); err != nil {
		return nil, fmt.Errorf("failed to cache auth token: %w", err)
	}

	return &AuthResponse{ID: st.ID, Token: token}, nil
}

// GetByID retrieves a student by its unique ID.
func (s *DefaultStudentService) GetByID(id string) (*models.Student, error) {
	return s.Repo.GetByID(id)
}

// GetAll retrieves all students.
func (s *DefaultStudentService) GetAll() ([]models.Student, error) {
	return s.Repo.GetAll()
}

// Update modifies a student's profile. Fee state is untouched; the
// ledger is mutated only through the reconciliation path.
func (s *DefaultStudentService) Update(st models.Student) (*models.Student, error) {
	existing, err := s.Repo.GetByID(st.ID)
	if err != nil {
		return nil, err
	}

	if st.Name != "" {
		existing.Name = st.Name
	}
	if st.Phone != "" {
		existing.Phone = st.Phone
	}
	if st.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(st.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		existing.PasswordHash = string(hashed)
	}

	if err := s.Repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes a student record.
func (s *DefaultStudentService) Delete(id string) error {
	return s.Repo.Delete(id)
}

// RegisterFCMToken stores a push token on the student record.
func (s *DefaultStudentService) RegisterFCMToken(id, token string) error {
	st, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	st.FCMToken = token
	return s.Repo.Update(st)
}
