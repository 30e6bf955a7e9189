package handlers

import (
	"errors"
	"net/http"

	courseRepo "institute/database/repository/course"
	"institute/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CourseHandler exposes the course catalog.
type CourseHandler struct {
	repo courseRepo.CourseRepository
}

// NewCourseHandler builds the course endpoints handler.
func NewCourseHandler(repo courseRepo.CourseRepository) *CourseHandler {
	return &CourseHandler{repo: repo}
}

// GetCoursesHandler lists the catalog.
func (h *CourseHandler) GetCoursesHandler(c *gin.Context) {
	courses, err := h.repo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourseByIDHandler returns one course.
func (h *CourseHandler) GetCourseByIDHandler(c *gin.Context) {
	course, err := h.repo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, courseRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourseHandler adds a course to the catalog.
func (h *CourseHandler) CreateCourseHandler(c *gin.Context) {
	var input models.Course
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Name == "" || input.Fee < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course name is required and fee must be non-negative"})
		return
	}

	input.ID = uuid.New().String()
	if err := h.repo.Create(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, input)
}
