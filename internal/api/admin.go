package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/service"
	"github.com/foodbridge/backend/internal/types"
)

type AdminHandler struct {
	admin    *service.AdminService
	activity *service.ActivityService
	auth     *service.AuthService
	log      *logrus.Logger
}

func NewAdminHandler(admin *service.AdminService, activity *service.ActivityService, auth *service.AuthService, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, activity: activity, auth: auth, log: log}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin",
		middleware.Auth(h.auth),
		middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", h.Users)
		admin.PUT("/users/:id/verify", h.VerifyUser)
		admin.DELETE("/users/:id", h.RejectUser)
		admin.GET("/users/:id/activities", h.UserActivities)
		admin.GET("/food", h.Food)
		admin.GET("/requests", h.Requests)
		admin.GET("/activities", h.Activities)
		admin.GET("/statistics", h.Statistics)
		admin.GET("/dashboard", h.Dashboard)
	}
}

func (h *AdminHandler) Users(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	filter := service.UserFilter{
		Role:  c.Query("role"),
		Page:  page,
		Limit: limit,
	}
	if v := c.Query("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "verified must be true or false"})
			return
		}
		filter.Verified = &verified
	}

	users, total, err := h.admin.Users(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": types.NewPagination(page, limit, total),
	})
}

func (h *AdminHandler) VerifyUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.admin.VerifyUser(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User verified successfully"})
}

func (h *AdminHandler) RejectUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.admin.RejectUser(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User rejected and removed"})
}

func (h *AdminHandler) UserActivities(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activities, err := h.activity.ForUser(c.Request.Context(), id, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *AdminHandler) Food(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	foods, total, err := h.admin.AllFood(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"food":       foods,
		"pagination": types.NewPagination(page, limit, total),
	})
}

func (h *AdminHandler) Requests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	requests, total, err := h.admin.AllRequests(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests":   requests,
		"pagination": types.NewPagination(page, limit, total),
	})
}

func (h *AdminHandler) Activities(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := service.ActivityFilter{
		Role:  c.Query("role"),
		Type:  c.Query("type"),
		Page:  page,
		Limit: limit,
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		filter.UserID = &userID
	}

	activities, total, err := h.activity.Recent(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"pagination": types.NewPagination(page, limit, total),
	})
}

func (h *AdminHandler) Statistics(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	stats, err := h.admin.Report(c.Request.Context(), days)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.admin.DashboardData(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
