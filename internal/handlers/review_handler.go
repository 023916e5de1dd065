package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/internal/services"
)

// ReviewHandler exposes resident-facing review writing and host-facing
// review reading.
type ReviewHandler struct {
	reviewService *services.ReviewService
	logger        *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

type ratingRequest struct {
	Food       int `json:"food" binding:"required,min=1,max=5"`
	Facilities int `json:"facilities" binding:"required,min=1,max=5"`
	Hygienic   int `json:"hygienic" binding:"required,min=1,max=5"`
	Safety     int `json:"safety" binding:"required,min=1,max=5"`
}

type reviewRequest struct {
	Body   string        `json:"review" binding:"required"`
	Rating ratingRequest `json:"rating" binding:"required"`
}

func (r reviewRequest) rating() models.Rating {
	return models.Rating{
		Food:       r.Rating.Food,
		Facilities: r.Rating.Facilities,
		Hygienic:   r.Rating.Hygienic,
		Safety:     r.Rating.Safety,
	}
}

// Add handles POST /listings/:id/reviews (pg_resident)
func (h *ReviewHandler) Add(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	review, err := h.reviewService.Add(userCtx.UserID, listingID, req.Body, req.rating())
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Review added",
		"review":  review,
	})
}

// Update handles PUT /reviews/:reviewId (pg_resident)
func (h *ReviewHandler) Update(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	reviewID, ok := parseUUIDParam(c, "reviewId")
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	review, err := h.reviewService.Update(userCtx.UserID, reviewID, req.Body, req.rating())
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Review updated",
		"review":  review,
	})
}

// Delete handles DELETE /reviews/:reviewId (pg_resident)
func (h *ReviewHandler) Delete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	reviewID, ok := parseUUIDParam(c, "reviewId")
	if !ok {
		return
	}

	if err := h.reviewService.Delete(userCtx.UserID, reviewID); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

// ListForHost handles GET /listings/:id/reviews/all (pg_admin)
func (h *ReviewHandler) ListForHost(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListForHost(userCtx.UserID, listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// AverageRating handles GET /listings/:id/reviews/average (pg_admin)
func (h *ReviewHandler) AverageRating(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.reviewService.AverageRating(userCtx.UserID, listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rating": summary})
}
