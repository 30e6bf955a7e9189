package studentRepo

import (
	"errors"

	"institute/models"
)

// ErrNotFound is returned when no student matches the query.
var ErrNotFound = errors.New("student not found")

// StudentRepository defines methods for student data access.
type StudentRepository interface {
	// GetByID retrieves a student by its unique ID.
	GetByID(id string) (*models.Student, error)
	// GetByEmail retrieves a student by its email address.
	GetByEmail(email string) (*models.Student, error)
	// GetAll retrieves all students.
	GetAll() ([]models.Student, error)
	// Create inserts a new student record.
	Create(student *models.Student) error
	// Update modifies an existing student record.
	Update(student *models.Student) error
	// Delete removes a student record by its ID.
	Delete(id string) error
}
