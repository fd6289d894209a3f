package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/foodbridge/backend/internal/middleware"
	"github.com/foodbridge/backend/internal/models"
	"github.com/foodbridge/backend/internal/service"
	"github.com/foodbridge/backend/internal/types"
)

// maxPhotoBytes caps food photo uploads at 5 MiB.
const maxPhotoBytes = 5 << 20

type DonorHandler struct {
	food   *service.FoodService
	photos *service.PhotoService
	auth   *service.AuthService
	log    *logrus.Logger
}

func NewDonorHandler(food *service.FoodService, photos *service.PhotoService, auth *service.AuthService, log *logrus.Logger) *DonorHandler {
	return &DonorHandler{food: food, photos: photos, auth: auth, log: log}
}

func (h *DonorHandler) RegisterRoutes(router *gin.RouterGroup) {
	donor := router.Group("/donor",
		middleware.Auth(h.auth),
		middleware.RequireRole(models.RoleDonor))
	{
		donor.POST("/food", h.PostFood)
		donor.GET("/food", h.MyPosts)
		donor.PUT("/food/:id", h.UpdateFood)
		donor.DELETE("/food/:id", h.DeleteFood)
		donor.POST("/food/:id/photo", h.UploadPhoto)
		donor.POST("/food/:id/delivered", h.MarkDelivered)
		donor.GET("/requests", h.Requests)
		donor.POST("/requests/:id/accept", h.AcceptRequest)
		donor.POST("/requests/:id/reject", h.RejectRequest)
		donor.GET("/stats", h.Stats)
	}
}

func clientInfo(c *gin.Context) service.Client {
	return service.Client{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *DonorHandler) PostFood(c *gin.Context) {
	var req types.PostFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := middleware.Identity(c)
	food, err := h.food.PostFood(c.Request.Context(), identity, req, clientInfo(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Food posted successfully", "food": food})
}

func (h *DonorHandler) MyPosts(c *gin.Context) {
	identity, _ := middleware.Identity(c)
	foods, err := h.food.DonorPosts(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, foods)
}

func (h *DonorHandler) UpdateFood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req types.UpdateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := middleware.Identity(c)
	food, err := h.food.UpdateFood(c.Request.Context(), identity, id, req, clientInfo(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food updated", "food": food})
}

func (h *DonorHandler) DeleteFood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	identity, _ := middleware.Identity(c)
	if err := h.food.DeleteFood(c.Request.Context(), identity, id, clientInfo(c)); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Food deleted"})
}

func (h *DonorHandler) UploadPhoto(c *gin.Context) {
	if !h.photos.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage not configured"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read photo"})
		return
	}
	if len(data) > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds 5MB limit"})
		return
	}

	identity, _ := middleware.Identity(c)
	// ownership check before spending an S3 round trip
	if err := h.food.CheckOwnership(c.Request.Context(), identity, id); err != nil {
		writeError(c, h.log, err)
		return
	}

	url, err := h.photos.UploadFoodPhoto(c.Request.Context(), id, data, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	food, err := h.food.SetPhoto(c.Request.Context(), identity, id, url)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo uploaded", "food": food})
}

func (h *DonorHandler) Requests(c *gin.Context) {
	identity, _ := middleware.Identity(c)
	requests, err := h.food.DonorRequests(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *DonorHandler) AcceptRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	identity, _ := middleware.Identity(c)
	request, err := h.food.AcceptRequest(c.Request.Context(), identity, id, clientInfo(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request accepted", "request": request})
}

func (h *DonorHandler) RejectRequest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	identity, _ := middleware.Identity(c)
	request, err := h.food.RejectRequest(c.Request.Context(), identity, id, clientInfo(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request rejected", "request": request})
}

func (h *DonorHandler) MarkDelivered(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	identity, _ := middleware.Identity(c)
	food, err := h.food.MarkDelivered(c.Request.Context(), identity, id, clientInfo(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Marked as delivered! +10 points",
		"food":    food,
	})
}

func (h *DonorHandler) Stats(c *gin.Context) {
	identity, _ := middleware.Identity(c)
	stats, err := h.food.DonorStats(c.Request.Context(), identity)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
