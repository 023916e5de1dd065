package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayease/pg-management-backend/internal/models"
)

// RoomRepository handles room database operations
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts a new room. New rooms start with a vacant slot.
func (r *RoomRepository) Create(room *models.Room) error {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	room.IsAvailable = true

	query := `
		INSERT INTO rooms (
			id, listing_id, host_id, sharing, room_number, floor,
			is_available, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		room.ID, room.ListingID, room.HostID, room.Sharing,
		room.RoomNumber, room.Floor, room.IsAvailable,
		room.CreatedAt, room.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// GetByID retrieves a room by id, nil if not found
func (r *RoomRepository) GetByID(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.Get(&room, `SELECT * FROM rooms WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// GetByIDForHost retrieves a room scoped to a listing and host, nil if not found
func (r *RoomRepository) GetByIDForHost(id, listingID, hostID uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.Get(&room,
		`SELECT * FROM rooms WHERE id = $1 AND listing_id = $2 AND host_id = $3`,
		id, listingID, hostID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room for host: %w", err)
	}
	return &room, nil
}

// ListByListing retrieves all rooms of a listing for a host
func (r *RoomRepository) ListByListing(listingID, hostID uuid.UUID) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.Select(&rooms,
		`SELECT * FROM rooms WHERE listing_id = $1 AND host_id = $2 ORDER BY floor, room_number`,
		listingID, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListByAvailability retrieves a host's rooms filtered by the availability flag
func (r *RoomRepository) ListByAvailability(listingID, hostID uuid.UUID, available bool) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.Select(&rooms,
		`SELECT * FROM rooms
		 WHERE listing_id = $1 AND host_id = $2 AND is_available = $3
		 ORDER BY floor, room_number`,
		listingID, hostID, available)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms by availability: %w", err)
	}
	return rooms, nil
}

// ListAvailableForListing retrieves rooms with vacancy for a listing,
// without host scoping. Used by the resident-facing listing view.
func (r *RoomRepository) ListAvailableForListing(listingID uuid.UUID) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.Select(&rooms,
		`SELECT * FROM rooms WHERE listing_id = $1 AND is_available = TRUE ORDER BY floor, room_number`,
		listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available rooms: %w", err)
	}
	return rooms, nil
}

// Update updates the descriptive room fields. Availability is owned by the
// occupancy service and is not written here.
func (r *RoomRepository) Update(room *models.Room) (bool, error) {
	room.UpdatedAt = time.Now()

	query := `
		UPDATE rooms
		SET sharing = $1, room_number = $2, floor = $3, updated_at = $4
		WHERE id = $5 AND listing_id = $6 AND host_id = $7`

	result, err := r.db.Exec(query,
		room.Sharing, room.RoomNumber, room.Floor, room.UpdatedAt,
		room.ID, room.ListingID, room.HostID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// SetAvailability writes the availability flag for a room
func (r *RoomRepository) SetAvailability(id uuid.UUID, available bool) error {
	_, err := r.db.Exec(
		`UPDATE rooms SET is_available = $1, updated_at = $2 WHERE id = $3`,
		available, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set room availability: %w", err)
	}
	return nil
}

// Delete removes a room scoped to a listing and host. Returns false if no
// row matched.
func (r *RoomRepository) Delete(id, listingID, hostID uuid.UUID) (bool, error) {
	result, err := r.db.Exec(
		`DELETE FROM rooms WHERE id = $1 AND listing_id = $2 AND host_id = $3`,
		id, listingID, hostID)
	if err != nil {
		return false, fmt.Errorf("failed to delete room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}
