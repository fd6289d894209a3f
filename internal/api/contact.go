package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/service"
	"github.com/foodbridge/backend/internal/types"
)

type ContactHandler struct {
	contact *service.ContactService
	auth    *service.AuthService
	limiter *middleware.RateLimiter
	log     *logrus.Logger
}

func NewContactHandler(contact *service.ContactService, auth *service.AuthService, limiter *middleware.RateLimiter, log *logrus.Logger) *ContactHandler {
	return &ContactHandler{contact: contact, auth: auth, limiter: limiter, log: log}
}

func (h *ContactHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/contact", h.limiter.PerIPMiddleware(), h.Submit)

	admin := router.Group("/contact/messages",
		middleware.Auth(h.auth),
		middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("", h.Messages)
		admin.PUT("/:id/read", h.MarkRead)
		admin.PUT("/:id/replied", h.MarkReplied)
		admin.DELETE("/:id", h.Delete)
	}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req types.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all fields are required"})
		return
	}

	if _, err := h.contact.Submit(c.Request.Context(), req, clientInfo(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you for your message! We will get back to you soon.",
	})
}

func (h *ContactHandler) Messages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	messages, total, err := h.contact.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	unread, err := h.contact.UnreadCount(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":     messages,
		"pagination":   types.NewPagination(page, limit, total),
		"unread_count": unread,
	})
}

func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.contact.MarkRead(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as read"})
}

func (h *ContactHandler) MarkReplied(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.contact.MarkReplied(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message marked as replied"})
}

func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.contact.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
