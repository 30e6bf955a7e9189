package handlers

import (
	"net/http"
	"time"

	attendanceRepo "institute/database/repository/attendance"
	"institute/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AttendanceHandler exposes attendance marking and history.
type AttendanceHandler struct {
	repo attendanceRepo.AttendanceRepository
}

// NewAttendanceHandler builds the attendance endpoints handler.
func NewAttendanceHandler(repo attendanceRepo.AttendanceRepository) *AttendanceHandler {
	return &AttendanceHandler{repo: repo}
}

// MarkAttendanceHandler records presence for a student on a date.
func (h *AttendanceHandler) MarkAttendanceHandler(c *gin.Context) {
	var input struct {
		StudentID string `json:"studentId" binding:"required"`
		Date      string `json:"date"`
		Present   bool   `json:"present"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Date == "" {
		input.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	entry := &models.AttendanceEntry{
		ID:        uuid.New().String(),
		StudentID: input.StudentID,
		Date:      input.Date,
		Present:   input.Present,
		MarkedBy:  c.GetString("subjectID"),
	}
	if err := h.repo.Mark(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetAttendanceHandler lists attendance history for one student.
func (h *AttendanceHandler) GetAttendanceHandler(c *gin.Context) {
	entries, err := h.repo.ListByStudent(c.Param("studentId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []models.AttendanceEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
