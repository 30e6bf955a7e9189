package handlers

import (
	"errors"
	"net/http"
	"time"

	staffRepo "institute/database/repository/staff"
	"institute/models"
	"institute/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// StaffHandler exposes staff records and staff login.
type StaffHandler struct {
	repo staffRepo.StaffRepository
}

// NewStaffHandler builds the staff endpoints handler.
func NewStaffHandler(repo staffRepo.StaffRepository) *StaffHandler {
	return &StaffHandler{repo: repo}
}

// AuthenticateStaffHandler verifies staff credentials and issues a token
// carrying the staff role claim.
func (h *StaffHandler) AuthenticateStaffHandler(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	staff, err := h.repo.GetByEmail(input.Email)
	if err != nil {
		if errors.Is(err, staffRepo.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := utils.GenerateToken(staff.ID, staff.Role, 12*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate auth token"})
		return
	}
	if err := utils.CacheAuthToken(utils.GetAuthCacheClient(), staff.ID, utils.HashToken(token), 12*time.Hour); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cache auth token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": staff.ID, "role": staff.Role, "token": token})
}

// CreateStaffHandler registers a new faculty or admin member.
func (h *StaffHandler) CreateStaffHandler(c *gin.Context) {
	var input models.Staff
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "staff email and password are required"})
		return
	}
	if input.Role != "admin" && input.Role != "faculty" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be admin or faculty"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}
	input.PasswordHash = string(hashed)
	input.Password = ""
	input.ID = uuid.New().String()

	if err := h.repo.Create(&input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, input)
}

// GetStaffHandler returns all staff records.
func (h *StaffHandler) GetStaffHandler(c *gin.Context) {
	staff, err := h.repo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, staff)
}
