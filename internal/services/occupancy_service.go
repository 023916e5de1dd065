package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stayease/pg-management-backend/internal/database"
)

// OccupancyService keeps each room's availability flag in line with the
// number of active residents assigned to it. The flag means "has a vacant
// slot": it is true exactly while the active resident count is below the
// room's sharing.
//
// Reconcile is called after every write that can change occupancy (resident
// create, room move, soft-delete). It is idempotent, so callers may invoke
// it defensively.
type OccupancyService struct {
	roomRepo     *database.RoomRepository
	residentRepo *database.ResidentRepository
	logger       *logrus.Logger
}

// NewOccupancyService creates a new occupancy service
func NewOccupancyService(
	roomRepo *database.RoomRepository,
	residentRepo *database.ResidentRepository,
	logger *logrus.Logger,
) *OccupancyService {
	return &OccupancyService{
		roomRepo:     roomRepo,
		residentRepo: residentRepo,
		logger:       logger,
	}
}

// Reconcile recomputes and writes the availability flag for one room.
// A missing room is logged and swallowed: callers fire this after their own
// write succeeded and a stale room reference must not fail that operation.
func (s *OccupancyService) Reconcile(roomID uuid.UUID) error {
	room, err := s.roomRepo.GetByID(roomID)
	if err != nil {
		return err
	}
	if room == nil {
		s.logger.WithField("room_id", roomID).Warn("Occupancy reconcile skipped: room not found")
		return nil
	}

	count, err := s.residentRepo.CountActiveInRoom(roomID)
	if err != nil {
		return err
	}

	available := count < room.Sharing
	if err := s.roomRepo.SetAvailability(roomID, available); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":      roomID,
		"occupants":    count,
		"sharing":      room.Sharing,
		"is_available": available,
	}).Debug("Room occupancy reconciled")

	return nil
}

// reconcileQuietly runs Reconcile and only logs failures. Used where the
// caller's own write already succeeded and must not be reported as failed.
func (s *OccupancyService) reconcileQuietly(roomID uuid.UUID) {
	if err := s.Reconcile(roomID); err != nil {
		s.logger.WithError(err).WithField("room_id", roomID).Error("Occupancy reconcile failed")
	}
}
