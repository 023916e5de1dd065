package models

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a single room within a PG listing.
// IsAvailable means the room still has a vacant slot; it is derived from the
// active resident count by the occupancy service and is never accepted as
// client input.
type Room struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ListingID   uuid.UUID `db:"listing_id" json:"listing_id"`
	HostID      uuid.UUID `db:"host_id" json:"host_id"`
	Sharing     int       `db:"sharing" json:"sharing"` // max occupants, >= 1
	RoomNumber  int       `db:"room_number" json:"room_number"`
	Floor       int       `db:"floor" json:"floor"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
