package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/middleware"
	"github.com/stayease/pg-management-backend/internal/services"
)

// RoomHandler exposes host CRUD over rooms plus the public available-rooms
// view.
type RoomHandler struct {
	roomService *services.RoomService
	logger      *logrus.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomService *services.RoomService, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{roomService: roomService, logger: logger}
}

type roomEntryRequest struct {
	RoomNumber int `json:"room_number" binding:"required,min=1"`
	Floor      int `json:"floor"`
}

type createRoomsRequest struct {
	Sharing int                `json:"sharing" binding:"required,min=1"`
	Rooms   []roomEntryRequest `json:"rooms" binding:"required,min=1,dive"`
}

// CreateBatch handles POST /listings/:id/rooms (pg_admin)
func (h *RoomHandler) CreateBatch(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req createRoomsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	entries := make([]services.RoomInput, 0, len(req.Rooms))
	for _, room := range req.Rooms {
		entries = append(entries, services.RoomInput{RoomNumber: room.RoomNumber, Floor: room.Floor})
	}

	rooms, err := h.roomService.CreateBatch(userCtx.UserID, listingID, req.Sharing, entries)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Rooms created",
		"rooms":   rooms,
	})
}

// List handles GET /listings/:id/rooms (pg_admin)
func (h *RoomHandler) List(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	rooms, err := h.roomService.List(userCtx.UserID, listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// ListAvailable handles GET /listings/:id/rooms/available (pg_admin)
func (h *RoomHandler) ListAvailable(c *gin.Context) {
	h.listByAvailability(c, true)
}

// ListUnavailable handles GET /listings/:id/rooms/unavailable (pg_admin)
func (h *RoomHandler) ListUnavailable(c *gin.Context) {
	h.listByAvailability(c, false)
}

func (h *RoomHandler) listByAvailability(c *gin.Context, available bool) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	rooms, err := h.roomService.ListByAvailability(userCtx.UserID, listingID, available)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// ListAvailablePublic handles GET /listings/:id/available-rooms (public)
func (h *RoomHandler) ListAvailablePublic(c *gin.Context) {
	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	rooms, err := h.roomService.ListAvailablePublic(listingID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// Get handles GET /listings/:id/rooms/:roomId (pg_admin)
func (h *RoomHandler) Get(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	roomID, ok := parseUUIDParam(c, "roomId")
	if !ok {
		return
	}

	room, err := h.roomService.Get(userCtx.UserID, listingID, roomID)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

type updateRoomRequest struct {
	Sharing    int `json:"sharing" binding:"required,min=1"`
	RoomNumber int `json:"room_number" binding:"required,min=1"`
	Floor      int `json:"floor"`
}

// Update handles PUT /listings/:id/rooms/:roomId (pg_admin)
func (h *RoomHandler) Update(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	roomID, ok := parseUUIDParam(c, "roomId")
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	room, err := h.roomService.Update(userCtx.UserID, listingID, roomID, req.Sharing, req.RoomNumber, req.Floor)
	if err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Room updated",
		"room":    room,
	})
}

// Delete handles DELETE /listings/:id/rooms/:roomId (pg_admin)
func (h *RoomHandler) Delete(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	listingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	roomID, ok := parseUUIDParam(c, "roomId")
	if !ok {
		return
	}

	if err := h.roomService.Delete(userCtx.UserID, listingID, roomID); err != nil {
		serviceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}
