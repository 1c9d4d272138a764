package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adrijadey5/Smart-Home-Inventory/models"
	"github.com/adrijadey5/Smart-Home-Inventory/repository"
	"github.com/adrijadey5/Smart-Home-Inventory/services"
)

// AuthController handles sign-up and sign-in.
type AuthController struct {
	auth   *services.AuthService
	logger *zap.Logger
}

// NewAuthController creates a new AuthController.
func NewAuthController(auth *services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Anonymous creates a throwaway account and returns its token.
// POST /auth/anonymous
func (ac *AuthController) Anonymous(c *gin.Context) {
	resp, err := ac.auth.SignInAnonymously(c.Request.Context())
	if err != nil {
		ac.logger.Error("anonymous sign-in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Register creates an email/password account.
// POST /auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, err := ac.auth.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		ac.logger.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register"})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a token.
// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	resp, err := ac.auth.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		ac.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
