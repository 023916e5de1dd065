package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/services"
)

// ResidentHandler exposes the resident lifecycle endpoints
type ResidentHandler struct {
	residentService *services.ResidentService
	logger          *logrus.Logger
}

// NewResidentHandler creates a new resident handler
func NewResidentHandler(residentService *services.ResidentService, logger *logrus.Logger) *ResidentHandler {
	return &ResidentHandler{residentService: residentService, logger: logger}
}

type createResidentRequest struct {
	RoomID          uuid.UUID `json:"room_id" binding:"required"`
	Name            string    `json:"name" binding:"required"`
	Email           string    `json:"email" binding:"required,email"`
	PhoneNumber     string    `json:"phone_number" binding:"required"`
	Address         string    `json:"address"`
	GuardianName    string    `json:"guardian_name"`
	GuardianNumber  string    `json:"guardian_number"`
	ProfileImageURL string    `json:"profile_image_url" binding:"required"`
	AadharCardURL   string    `json:"aadhar_card_url" binding:"required"`
}

// Create handles POST /listings/:id/residents (pg_admin)
func (h *ResidentHandler) Create(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req createResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resident, err := h.residentService.Create(userCtx.UserID, listingID, services.CreateResidentInput{
		RoomID:          req.RoomID,
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		GuardianName:    req.GuardianName,
		GuardianNumber:  req.GuardianNumber,
		ProfileImageURL: req.ProfileImageURL,
		AadharCardURL:   req.AadharCardURL,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Resident added",
		"resident": resident,
	})
}

// List handles GET /listings/:id/residents (pg_admin)
func (h *ResidentHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	residents, err := h.residentService.List(userCtx.UserID, listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"residents": residents})
}

// ListDeleted handles GET /listings/:id/residents/deleted (pg_admin)
func (h *ResidentHandler) ListDeleted(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	residents, err := h.residentService.ListDeleted(userCtx.UserID, listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"residents": residents})
}

// Get handles GET /listings/:id/residents/:residentId (pg_admin)
func (h *ResidentHandler) Get(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	residentID, ok := parseUUIDParam(c, "residentId")
	if !ok {
		return
	}

	resident, err := h.residentService.Get(userCtx.UserID, listingID, residentID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resident": resident})
}

type updateResidentRequest struct {
	RoomID          uuid.UUID `json:"room_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phone_number"`
	Address         string    `json:"address"`
	GuardianName    string    `json:"guardian_name"`
	GuardianNumber  string    `json:"guardian_number"`
	ProfileImageURL string    `json:"profile_image_url"`
	AadharCardURL   string    `json:"aadhar_card_url"`
}

// Update handles PUT /listings/:id/residents/:residentId (pg_admin)
func (h *ResidentHandler) Update(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	residentID, ok := parseUUIDParam(c, "residentId")
	if !ok {
		return
	}

	var req updateResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resident, err := h.residentService.Update(userCtx.UserID, listingID, residentID, services.UpdateResidentInput{
		RoomID:          req.RoomID,
		Name:            req.Name,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		GuardianName:    req.GuardianName,
		GuardianNumber:  req.GuardianNumber,
		ProfileImageURL: req.ProfileImageURL,
		AadharCardURL:   req.AadharCardURL,
	})
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Resident updated",
		"resident": resident,
	})
}

// Delete handles DELETE /listings/:id/residents/:residentId (pg_admin).
// The record is deactivated, never removed.
func (h *ResidentHandler) Delete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	residentID, ok := parseUUIDParam(c, "residentId")
	if !ok {
		return
	}

	if err := h.residentService.SoftDelete(userCtx.UserID, listingID, residentID); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resident deactivated"})
}

type confirmationLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SendConfirmationLink handles POST /listings/:id/residents/:residentId/confirmation-link (pg_admin)
func (h *ResidentHandler) SendConfirmationLink(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	residentID, ok := parseUUIDParam(c, "residentId")
	if !ok {
		return
	}

	var req confirmationLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.residentService.SendConfirmationLink(userCtx.UserID, listingID, residentID, req.Email); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Confirmation link sent"})
}

type confirmResidentRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Confirm handles PUT /residents/:residentId/confirm (public, reached from
// the emailed link).
func (h *ResidentHandler) Confirm(c *gin.Context) {
	residentID, ok := parseUUIDParam(c, "residentId")
	if !ok {
		return
	}

	var req confirmResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.residentService.ConfirmResident(residentID, req.UserID); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resident account confirmed"})
}

// GetStay handles GET /residents/by-user/:userId (public, resident-facing)
func (h *ResidentHandler) GetStay(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return
	}

	resident, listing, err := h.residentService.GetStayByUserID(userID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resident": resident,
		"listing":  listing,
	})
}
