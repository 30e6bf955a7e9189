package handlers

import (
	"errors"
	"net/http"

	studentRepo "institute/database/repository/student"
	"institute/models"
	"institute/services/student"

	"github.com/gin-gonic/gin"
)

// StudentHandler exposes student admission and profile endpoints.
type StudentHandler struct {
	service student.StudentService
}

// NewStudentHandler builds the student endpoints handler.
func NewStudentHandler(service student.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

// EnrollStudentHandler admits a new student and opens their fee account.
func (h *StudentHandler) EnrollStudentHandler(c *gin.Context) {
	var input models.Student
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	st, err := h.service.Enroll(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, st)
}

// AuthenticateStudentHandler verifies credentials and issues a token.
func (h *StudentHandler) AuthenticateStudentHandler(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	resp, err := h.service.Authenticate(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, student.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetStudentByIDHandler returns one student record.
func (h *StudentHandler) GetStudentByIDHandler(c *gin.Context) {
	st, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, studentRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// GetStudentsHandler returns all student records.
func (h *StudentHandler) GetStudentsHandler(c *gin.Context) {
	students, err := h.service.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

// UpdateStudentHandler modifies a student's profile.
func (h *StudentHandler) UpdateStudentHandler(c *gin.Context) {
	var input models.Student
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	input.ID = c.Param("id")

	st, err := h.service.Update(input)
	if err != nil {
		if errors.Is(err, studentRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

// DeleteStudentHandler removes a student record.
func (h *StudentHandler) DeleteStudentHandler(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		if errors.Is(err, studentRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// RegisterFCMTokenHandler stores the push token for the caller.
func (h *StudentHandler) RegisterFCMTokenHandler(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.service.RegisterFCMToken(c.GetString("subjectID"), input.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}
