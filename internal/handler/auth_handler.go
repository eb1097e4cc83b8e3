package handler

import (
	"net/http"

	"cashflow_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"token":   token,
	})
}

// Me returns the caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RegisterAuthRoutes registers auth routes. loginMW guards the credential
// endpoints; authMW guards the profile.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, loginMW, authMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth", loginMW)
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
	rg.GET("/me", authMW, h.Me)
}
