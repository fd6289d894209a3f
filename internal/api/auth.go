package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/service"
	"github.com/foodbridge/backend/internal/types"
)

type AuthHandler struct {
	auth *service.AuthService
	log  *logrus.Logger
}

func NewAuthHandler(auth *service.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", middleware.Auth(h.auth), h.Logout)
		auth.GET("/me", middleware.Auth(h.auth), h.Me)
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req types.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role, req.Location)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful! Awaiting verification.",
		"user_id": user.ID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, identity, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, req.Role,
		c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"role":    identity.Role,
		"name":    identity.Name,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.SessionID(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity, _ := middleware.Identity(c)
	if identity.IsAdmin() {
		c.JSON(http.StatusOK, gin.H{"name": identity.Name, "role": models.RoleAdmin})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
