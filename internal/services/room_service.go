package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/database"
	"github.com/stayease/pg-management-backend/internal/models"
)

// RoomInput carries one room definition within a batch create
type RoomInput struct {
	RoomNumber int
	Floor      int
}

// RoomService implements host CRUD over rooms. Rooms are created in batches
// sharing one occupancy value; a room occupied by any active resident cannot
// be deleted.
type RoomService struct {
	roomRepo     *database.RoomRepository
	residentRepo *database.ResidentRepository
	listingRepo  *database.ListingRepository
	occupancy    *OccupancyService
	logger       *logrus.Logger
}

// NewRoomService creates a new room service
func NewRoomService(
	roomRepo *database.RoomRepository,
	residentRepo *database.ResidentRepository,
	listingRepo *database.ListingRepository,
	occupancy *OccupancyService,
	logger *logrus.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:     roomRepo,
		residentRepo: residentRepo,
		listingRepo:  listingRepo,
		occupancy:    occupancy,
		logger:       logger,
	}
}

// CreateBatch creates one room per entry, all with the same sharing value.
// New rooms start available.
func (s *RoomService) CreateBatch(hostID, listingID uuid.UUID, sharing int, rooms []RoomInput) ([]*models.Room, error) {
	if sharing < 1 {
		return nil, fmt.Errorf("%w: sharing must be at least 1", ErrValidation)
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("%w: at least one room is required", ErrValidation)
	}

	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}

	created := make([]*models.Room, 0, len(rooms))
	for _, input := range rooms {
		room := &models.Room{
			ListingID:  listingID,
			HostID:     hostID,
			Sharing:    sharing,
			RoomNumber: input.RoomNumber,
			Floor:      input.Floor,
		}
		if err := s.roomRepo.Create(room); err != nil {
			return nil, err
		}
		created = append(created, room)
	}

	s.logger.WithFields(logrus.Fields{
		"listing_id": listingID,
		"count":      len(created),
		"sharing":    sharing,
	}).Info("Rooms created")

	return created, nil
}

// Get retrieves one room scoped to the host's listing
func (s *RoomService) Get(hostID, listingID, roomID uuid.UUID) (*models.Room, error) {
	room, err := s.roomRepo.GetByIDForHost(roomID, listingID, hostID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room", ErrNotFound)
	}
	return room, nil
}

// List retrieves all rooms of a host's listing
func (s *RoomService) List(hostID, listingID uuid.UUID) ([]*models.Room, error) {
	if err := s.requireListing(hostID, listingID); err != nil {
		return nil, err
	}
	return s.roomRepo.ListByListing(listingID, hostID)
}

// ListByAvailability retrieves a host's rooms filtered on the vacancy flag
func (s *RoomService) ListByAvailability(hostID, listingID uuid.UUID, available bool) ([]*models.Room, error) {
	if err := s.requireListing(hostID, listingID); err != nil {
		return nil, err
	}
	return s.roomRepo.ListByAvailability(listingID, hostID, available)
}

// ListAvailablePublic retrieves the rooms with vacancy for the public
// listing detail page.
func (s *RoomService) ListAvailablePublic(listingID uuid.UUID) ([]*models.Room, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("%w: listing", ErrNotFound)
	}
	return s.roomRepo.ListAvailableForListing(listingID)
}

// Update rewrites the descriptive room fields. A sharing change can alter
// whether the room has vacancy, so the room is reconciled afterwards.
func (s *RoomService) Update(hostID, listingID, roomID uuid.UUID, sharing, roomNumber, floor int) (*models.Room, error) {
	if sharing < 1 {
		return nil, fmt.Errorf("%w: sharing must be at least 1", ErrValidation)
	}

	room, err := s.roomRepo.GetByIDForHost(roomID, listingID, hostID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room", ErrNotFound)
	}

	room.Sharing = sharing
	room.RoomNumber = roomNumber
	room.Floor = floor

	ok, err := s.roomRepo.Update(room)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: room", ErrNotFound)
	}

	s.occupancy.reconcileQuietly(room.ID)

	return room, nil
}

// Delete removes a room. Blocked while any active resident occupies it.
func (s *RoomService) Delete(hostID, listingID, roomID uuid.UUID) error {
	room, err := s.roomRepo.GetByIDForHost(roomID, listingID, hostID)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("%w: room", ErrNotFound)
	}

	occupied, err := s.residentRepo.ExistsActiveInRoom(roomID)
	if err != nil {
		return err
	}
	if occupied {
		return fmt.Errorf("%w: room still has active residents", ErrValidation)
	}

	ok, err := s.roomRepo.Delete(roomID, listingID, hostID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: room", ErrNotFound)
	}

	return nil
}

func (s *RoomService) requireListing(hostID, listingID uuid.UUID) error {
	ok, err := s.listingRepo.ExistsForHost(listingID, hostID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: listing", ErrNotFound)
	}
	return nil
}
