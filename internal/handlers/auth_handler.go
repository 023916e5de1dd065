package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/services"
)

// AuthHandler exposes registration, login and account endpoints
type AuthHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.authService.Register(req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	token, user, err := h.authService.Login(req.Email, req.Password, c.GetHeader("User-Agent"))
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Account handles GET /auth/account
func (h *AuthHandler) Account(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	user, err := h.authService.GetAccount(userCtx.UserID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type editUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EditUser handles PUT /auth/account. Users can only edit themselves.
func (h *AuthHandler) EditUser(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req editUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	user, err := h.authService.EditUser(userCtx.UserID, req.Username, req.Email, req.Password)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Account updated",
		"user":    user,
	})
}
