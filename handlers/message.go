package handlers

import (
	"net/http"

	messageRepo "institute/database/repository/message"
	"institute/models"
	"institute/services/notification"

	"github.com/gin-gonic/gin"
)

// MessageHandler exposes the student notification feed and staff announcements.
type MessageHandler struct {
	repo     messageRepo.MessageRepository
	notifier notification.Notifier
}

// NewMessageHandler builds the message endpoints handler.
func NewMessageHandler(repo messageRepo.MessageRepository, notifier notification.Notifier) *MessageHandler {
	return &MessageHandler{repo: repo, notifier: notifier}
}

// AnnounceHandler lets staff push a message to one student.
func (h *MessageHandler) AnnounceHandler(c *gin.Context) {
	var input struct {
		StudentID string `json:"studentId" binding:"required"`
		Title     string `json:"title" binding:"required"`
		Body      string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.notifier.Announce(c.Request.Context(), input.StudentID, input.Title, input.Body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

// GetMessagesHandler lists a student's notification feed.
func (h *MessageHandler) GetMessagesHandler(c *gin.Context) {
	messages, err := h.repo.ListByStudent(c.Param("studentId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

// MarkMessageReadHandler flags a message as read.
func (h *MessageHandler) MarkMessageReadHandler(c *gin.Context) {
	if err := h.repo.MarkRead(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
