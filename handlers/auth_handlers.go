package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"dwellmetrics/api/middleware"
	"dwellmetrics/api/models"
	"dwellmetrics/api/store"
	"dwellmetrics/api/utils"
)

// UserRepository is the user persistence AuthHandlers needs.
type UserRepository interface {
	CreateUser(ctx context.Context, email string, hashedPassword []byte, role string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthHandlers struct {
	users  UserRepository
	tokens *utils.TokenIssuer
	logger logrus.FieldLogger
}

func NewAuthHandlers(users UserRepository, tokens *utils.TokenIssuer, logger logrus.FieldLogger) *AuthHandlers {
	return &AuthHandlers{users: users, tokens: tokens, logger: logger}
}

func (h *AuthHandlers) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	_, err := h.users.GetUserByEmail(ctx, req.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		h.logger.WithError(err).Error("Database error during signup email check")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check user existence"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	user, err := h.users.CreateUser(ctx, req.Email, hashedPassword, models.RoleUser)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		h.logger.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user_email": user.Email})
}

// Login checks credentials and issues the session JWT as an HttpOnly cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			h.logger.WithError(err).Error("Database error during login")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := h.tokens.GenerateJWT(user)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to generate JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetCookie(middleware.TokenCookie, tokenString, int(h.tokens.TTL()/time.Second), "/", "", false, true)

	h.logger.WithField("user_id", user.ID).Info("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"user_email": user.Email,
		"role":       user.Role,
	})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Profile echoes the authenticated principal.
func (h *AuthHandlers) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id":    c.GetInt(middleware.ContextUserID),
		"user_email": c.GetString(middleware.ContextUserEmail),
		"role":       c.GetString(middleware.ContextUserRole),
	})
}
