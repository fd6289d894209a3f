package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/service"
)

type ReceiverHandler struct {
	food *service.FoodService
	auth *service.AuthService
	log  *logrus.Logger
}

func NewReceiverHandler(food *service.FoodService, auth *service.AuthService, log *logrus.Logger) *ReceiverHandler {
	return &ReceiverHandler{food: food, auth: auth, log: log}
}

func (h *ReceiverHandler) RegisterRoutes(router *gin.RouterGroup) {
	receiver := router.Group("/receiver",
		middleware.Auth(h.auth),
		middleware.RequireRole(models.RoleReceiver))
	{
		receiver.GET("/food", h.AvailableFood)
		receiver.POST("/food/:id/request", h.RequestFood)
		receiver.GET("/requests", h.MyRequests)
		receiver.GET("/me", h.Info)
	}
}

func (h *ReceiverHandler) AvailableFood(c *gin.Context) {
	foods, err := h.food.AvailableFood(c.Request.Context(), c.Query("location"), c.Query("search"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *ReceiverHandler) RequestFood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	identity, _ := middleware.Identity(c)
	request, err := h.food.RequestFood(c.Request.Context(), identity, id, clientInfo(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully", "request": request})
}

func (h *ReceiverHandler) MyRequests(c *gin.Context) {
	identity, _ := middleware.Identity(c)
	requests, err := h.food.ReceiverRequests(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *ReceiverHandler) Info(c *gin.Context) {
	identity, _ := middleware.Identity(c)
	user, err := h.auth.CurrentUser(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
