package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groundtruth/internal/middleware"
	"groundtruth/internal/service"
)

// AuthHandler serves the authenticate endpoints.
type AuthHandler interface {
	Login(c *gin.Context)
	Status(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, logger: logger}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a session token.
// POST /api/authenticate
func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, expiresAt, profile, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.logger.Error("Failed to login user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   profile.Username,
		"tenants":    profile.Tenants,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Status reports the authenticated user, establishing the client session.
// GET /api/authenticate
func (h *authHandler) Status(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username": user.Username,
		"tenants":  user.Tenants,
	})
}

// Logout ends the session. Tokens are stateless, so this is an audit point;
// the client discards its copy regardless of the outcome.
// POST /api/authenticate/logout
func (h *authHandler) Logout(c *gin.Context) {
	if user := middleware.CurrentUser(c); user != nil {
		h.authService.Logout(user.Username)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
