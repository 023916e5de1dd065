package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/models"
	"github.com/stayease/pg-management-backend/internal/services"
)

// ListingHandler exposes host CRUD and public browsing for PG listings
type ListingHandler struct {
	listingService *services.ListingService
	reviewService  *services.ReviewService
	logger         *logrus.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(
	listingService *services.ListingService,
	reviewService *services.ReviewService,
	logger *logrus.Logger,
) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		reviewService:  reviewService,
		logger:         logger,
	}
}

type pricingTierRequest struct {
	Share  int `json:"share" binding:"required,min=1"`
	Amount int `json:"amount" binding:"required,min=1"`
}

type nearbyPlaceRequest struct {
	Name     string `json:"name" binding:"required"`
	Distance string `json:"distance" binding:"required"`
}

type listingRequest struct {
	Name         string               `json:"name" binding:"required"`
	Address      string               `json:"address" binding:"required"`
	Contact      string               `json:"contact" binding:"required"`
	TotalRooms   int                  `json:"total_rooms" binding:"required,min=1"`
	PgType       string               `json:"pg_type" binding:"required"`
	FoodType     string               `json:"food_type" binding:"required"`
	Facilities   []string             `json:"facilities"`
	Images       []string             `json:"images"`
	Pricing      []pricingTierRequest `json:"pricing"`
	NearbyPlaces []nearbyPlaceRequest `json:"nearby_places"`
}

func (r listingRequest) toInput() services.ListingInput {
	input := services.ListingInput{
		Name:       r.Name,
		Address:    r.Address,
		Contact:    r.Contact,
		TotalRooms: r.TotalRooms,
		PgType:     r.PgType,
		FoodType:   r.FoodType,
		Facilities: r.Facilities,
		Images:     r.Images,
	}
	for _, tier := range r.Pricing {
		input.Pricing = append(input.Pricing, models.PricingTier{Share: tier.Share, Amount: tier.Amount})
	}
	for _, place := range r.NearbyPlaces {
		input.NearbyPlaces = append(input.NearbyPlaces, models.NearbyPlace{Name: place.Name, Distance: place.Distance})
	}
	return input
}

// Create handles POST /listings (pg_admin)
func (h *ListingHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	listing, err := h.listingService.Create(userCtx.UserID, req.toInput())
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Listing created",
		"listing": listing,
	})
}

// Update handles PUT /listings/:id (pg_admin)
func (h *ListingHandler) Update(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	listing, err := h.listingService.Update(userCtx.UserID, listingID, req.toInput())
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing updated",
		"listing": listing,
	})
}

// Delete handles DELETE /listings/:id (pg_admin)
func (h *ListingHandler) Delete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.listingService.Delete(userCtx.UserID, listingID); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}

// ListAll handles GET /listings (public)
func (h *ListingHandler) ListAll(c *gin.Context) {
	listings, err := h.listingService.ListAll()
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// Get handles GET /listings/:id (public, reviews embedded)
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingService.Get(listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// MyListings handles GET /my-listings (pg_admin)
func (h *ListingHandler) MyListings(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listings, err := h.listingService.ListByHost(userCtx.UserID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// PublicReviews handles GET /listings/:id/reviews (public)
func (h *ListingHandler) PublicReviews(c *gin.Context) {
	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListPublic(listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// parseUUIDParam reads a UUID path parameter, replying 400 on garbage
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
